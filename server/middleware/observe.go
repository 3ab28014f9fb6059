package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kbukum/ssehub/observability"
)

// Observe wraps each request in an observability.Operation: a server span
// plus request metrics, named "METHOD /route". metrics may be nil.
func Observe(serviceName string, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			op := observability.StartOperation(r.Context(), serviceName,
				r.Method+" "+routeName(r.URL.Path), r.Header.Get(HeaderRequestID), metrics)
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(op.Context()))

			observability.SetSpanAttribute(op.Context(), "http.status_code", sw.status)
			var err error
			if sw.status >= 500 {
				err = fmt.Errorf("http status %d", sw.status)
			}
			op.End(strconv.Itoa(sw.status), err)
		})
	}
}

// routeName keeps the first path segment and collapses the rest, so
// /broadcast/<payload> does not create one metric series per payload.
func routeName(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	first, rest, found := strings.Cut(trimmed, "/")
	if !found || rest == "" {
		return path
	}
	return "/" + first + "/*"
}
