package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/ssehub/logger"
	"github.com/kbukum/ssehub/observability"
	"github.com/kbukum/ssehub/server/endpoint"
	"github.com/kbukum/ssehub/server/middleware"
)

// Server is an HTTP server backed by Gin, with additional http.Handler
// mounts (e.g. the WebSocket transport) on the same port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	middleware []middleware.Middleware
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server. Routes and middleware are added before Start.
func New(cfg Config, log *logger.Logger) *Server {
	if log.Zerolog().GetLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(NotFound)

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	s := &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handle mounts an http.Handler at pattern on the root ServeMux, beside Gin.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// Use appends handler-level middleware. The first added is the outermost.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// Handler returns the full handler: middleware chain around the mux, wrapped
// for HTTP/2 cleartext unless the server terminates TLS.
func (s *Server) Handler() http.Handler {
	h := middleware.Chain(s.middleware...)(s.mux)
	if s.config.TLS.ServerEnabled() {
		return h
	}
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
	}
	return h2c.NewHandler(h, h2s)
}

// Start binds the port and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start(_ context.Context) error {
	tlsConfig, err := s.config.TLS.ServerConfig()
	if err != nil {
		return fmt.Errorf("server tls: %w", err)
	}
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.httpServer.Handler = s.Handler()
	s.httpServer.TLSConfig = tlsConfig

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		var err error
		if tlsConfig != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
		"tls":  tlsConfig != nil,
	})
	return nil
}

// Stop gracefully shuts down the server. Open event streams end when the
// hub closes; any still open at the deadline are cut.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		_ = s.httpServer.Close()
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// ApplyMiddleware installs the standard handler-level stack.
func (s *Server) ApplyMiddleware(serviceName string, metrics *observability.Metrics) {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.Observe(serviceName, metrics),
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
}

// RegisterDefaultEndpoints registers the probe, info and metrics endpoints.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker, stats ...endpoint.StatsSource) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/alive", endpoint.Liveness(serviceName))
	s.engine.GET("/info", endpoint.Info(serviceName))
	s.engine.GET("/version", endpoint.Version())
	s.engine.GET("/metrics", endpoint.Metrics(stats...))
}

// ApplyDefaults applies the standard middleware and registers default endpoints.
func (s *Server) ApplyDefaults(serviceName string, checker endpoint.HealthChecker, metrics *observability.Metrics, stats ...endpoint.StatsSource) {
	s.ApplyMiddleware(serviceName, metrics)
	s.RegisterDefaultEndpoints(serviceName, checker, stats...)
}

// RateLimiter returns the configured publish rate limiter as Gin middleware.
func (s *Server) RateLimiter() gin.HandlerFunc {
	return middleware.GinWrap(middleware.RateLimit(s.config.RateLimit))
}
