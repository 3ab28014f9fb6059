package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/ssehub/errors"
)

// Validator collects field errors; every check returns the receiver so
// calls can be chained.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all recorded field errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns nil when every check passed, otherwise an AppError whose
// message joins all field errors and whose details carry them individually.
//
// The concrete return type means callers must compare with nil before
// returning the value as an error.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", v.errors)
}

// Err is Validate as a plain error, nil when valid.
func (v *Validator) Err() error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Required checks that a string is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength checks that a string is at most maxLen bytes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// Min checks that a number is at least minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// Range checks that a number lies within [minVal, maxVal].
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("must be between %d and %d", minVal, maxVal))
	}
	return v
}

// PositiveDuration checks that d is greater than zero.
func (v *Validator) PositiveDuration(field string, d time.Duration) *Validator {
	if d <= 0 {
		v.AddError(field, fmt.Sprintf("must be positive (got: %s)", d))
	}
	return v
}

// PathPrefix checks that value is a non-empty absolute URL path.
func (v *Validator) PathPrefix(field, value string) *Validator {
	if !strings.HasPrefix(value, "/") {
		v.AddError(field, fmt.Sprintf("must start with / (got: %q)", value))
	}
	return v
}

// OneOf checks that a non-empty value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" || slices.Contains(allowed, value) {
		return v
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom records message for field when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required validates a single required field.
func Required(field, value string) error {
	return New().Required(field, value).Err()
}
