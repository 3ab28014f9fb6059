package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

const defaultMaxBodySize = 1024 * 1024 // 1MB

// BodySizeLimit restricts request bodies to maxSize ("64KB", "1MB", "1GB").
// Reads past the limit fail, which the JSON binder reports as invalid input.
func BodySizeLimit(maxSize string) Middleware {
	size := ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParseSize parses a size string such as "10MB", "512KB" or "2GB" into bytes.
// It returns defaultBytes if s is empty or malformed.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		s = s[:len(s)-1]
	}

	var val int64
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil || val <= 0 {
		return defaultBytes
	}
	return val * multiplier
}
