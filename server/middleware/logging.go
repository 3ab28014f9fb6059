package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/kbukum/ssehub/logger"
)

var probePaths = []string{"/health", "/alive", "/ready", "/metrics"}

// RequestLogger logs every finished request with method, path, status and
// duration. Probe endpoints are skipped. Event streams are logged when the
// client disconnects, so their duration is the connection lifetime.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := map[string]interface{}{
				"method":               r.Method,
				"path":                 r.URL.Path,
				"status":               sw.status,
				"bytes":                sw.bytes,
				logger.FieldDuration:   time.Since(start).Milliseconds(),
				logger.FieldRemoteAddr: r.RemoteAddr,
			}
			logByStatus(log.WithContext(r.Context()), fields, sw.status)
		})
	}
}

func isProbe(path string) bool {
	return slices.Contains(probePaths, path)
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
