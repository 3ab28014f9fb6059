// Package server provides the HTTP server: a Gin engine on a ServeMux,
// wrapped by a net/http middleware chain and h2c so event streams can be
// multiplexed over HTTP/2 without TLS.
//
// Middleware (server/middleware) is applied at handler level: Recovery,
// RequestID, Observe, CORS, BodySizeLimit and RequestLogger. RateLimit is
// applied per route group through GinWrap.
//
// Standard endpoints (server/endpoint): /health, /ready, /alive, /info,
// /version and /metrics.
package server
