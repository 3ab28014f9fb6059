package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/ssehub/logger"
)

// HeaderRequestID is the header carrying the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

// RequestID ensures every request has an ID. An incoming X-Request-Id is
// kept, otherwise a UUID is generated. The ID is echoed on the response and
// stored in the request context for logger.WithContext.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(HeaderRequestID, id)
			}
			w.Header().Set(HeaderRequestID, id)
			ctx := logger.ContextWithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
