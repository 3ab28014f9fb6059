// Package validation checks request bodies and configuration values and
// reports failures as INVALID_INPUT application errors.
//
// Struct tag validation is used for request bodies:
//
//	type PublishRequest struct {
//	    Message string `json:"message" validate:"required,max=65536"`
//	}
//	err := validation.Validate(req)
//
// The chainable Validator is used for configuration:
//
//	v := validation.New()
//	v.Min("sse.queue_capacity", c.QueueCapacity, 1)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
