package server

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/ssehub/component"
	apperrors "github.com/kbukum/ssehub/errors"
	"github.com/kbukum/ssehub/logger"
	"github.com/kbukum/ssehub/security"
	"github.com/kbukum/ssehub/security/tlstest"
	"github.com/kbukum/ssehub/server/endpoint"
	"github.com/kbukum/ssehub/server/middleware"
)

func testServer(t *testing.T, cfg Config) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "test", &buf)
	cfg.ApplyDefaults()
	return New(cfg, log), &buf
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.MaxBodySize != "1MB" || cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}

	cfg.Port = 70000
	cfg.RateLimit.RequestsPerMinute = -1
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "requests_per_minute") {
		t.Errorf("expected both fields reported, got %v", err)
	}
}

func TestServer_DefaultEndpointsThroughMiddleware(t *testing.T) {
	srv, _ := testServer(t, Config{})
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "sse", Status: component.StatusHealthy}}
	}
	srv.ApplyDefaults("ssehub", checker, nil, endpoint.StatsSource{
		Name:     "sse",
		Snapshot: func() any { return map[string]int{"subscribers": 0} },
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/health", "/ready", "/alive", "/info", "/version", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
		if resp.Header.Get("X-Request-Id") == "" {
			t.Errorf("GET %s: expected request id header", path)
		}
	}
}

func TestServer_UnknownRouteIsAppError(t *testing.T) {
	srv, _ := testServer(t, Config{})
	srv.ApplyMiddleware("ssehub", nil)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body apperrors.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != apperrors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestServer_HandleMountsBesideGin(t *testing.T) {
	srv, _ := testServer(t, Config{})
	srv.Handle("/ws", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected mounted handler, got %d", resp.StatusCode)
	}
}

func TestServer_RateLimiterOnGroup(t *testing.T) {
	srv, _ := testServer(t, Config{RateLimit: middlewareLimit(1)})
	srv.GinEngine().GET("/broadcast/:msg", srv.RateLimiter(), func(c *gin.Context) {
		c.String(http.StatusOK, "msg sent")
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	codes := make([]int, 0, 2)
	for range 2 {
		resp, err := http.Get(ts.URL + "/broadcast/hi")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  apperrors.ErrorCode
	}{
		{"app error", apperrors.MissingField("msg"), http.StatusBadRequest, apperrors.ErrCodeMissingField},
		{"wrapped app error", errors.Join(errors.New("ctx"), apperrors.RateLimited()), http.StatusTooManyRequests, apperrors.ErrCodeRateLimited},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			c.Request = httptest.NewRequest("GET", "/", http.NoBody)
			RespondWithError(c, tc.err)

			if rr.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error.Code != tc.wantErr {
				t.Errorf("expected %s, got %s", tc.wantErr, body.Error.Code)
			}
		})
	}
}

func TestRespondOK(t *testing.T) {
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	RespondOK(c, map[string]string{"status": "sent"})

	if rr.Body.String() != `{"data":{"status":"sent"}}` {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	srv, _ := testServer(t, Config{Host: "127.0.0.1", Port: 0})
	srv.GinEngine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	sc := NewComponent(srv)

	if sc.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sc.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("expected healthy after start")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := sc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if sc.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy after stop")
	}
}

func TestServer_TLS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	srv, _ := testServer(t, Config{
		Host: "127.0.0.1",
		Port: 0,
		TLS:  security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile},
	})
	srv.GinEngine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.Request.Proto) })
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop(context.Background())

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{RootCAs: certs.CertPool},
		ForceAttemptHTTP2: true,
	}}
	resp, err := client.Get("https://" + srv.Addr() + "/ping")
	if err != nil {
		t.Fatalf("GET /ping over TLS: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "HTTP/2.0" {
		t.Errorf("expected HTTP/2 over TLS, got %d %q", resp.StatusCode, body)
	}

	d := NewComponent(srv).Describe()
	if !strings.HasSuffix(d.Details, "tls h2") {
		t.Errorf("expected TLS in description, got %q", d.Details)
	}
}

func TestComponent_DescribeAndRoutes(t *testing.T) {
	srv, _ := testServer(t, Config{Port: 9090})
	srv.RegisterDefaultEndpoints("ssehub", nil)
	srv.GinEngine().POST("/broadcast", func(c *gin.Context) {})
	sc := NewComponent(srv)

	if d := sc.Describe(); d.Port != 9090 || d.Details != "0.0.0.0:9090 h2c" {
		t.Errorf("unexpected description %+v", d)
	}

	routes := sc.Routes()
	if len(routes) == 0 || routes[0].Path != "/broadcast" {
		t.Fatalf("expected application route first, got %v", routes)
	}
	last := routes[len(routes)-1]
	if !strings.HasSuffix(last.Handler, "(system)") {
		t.Errorf("expected system routes last and labeled, got %v", last)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/kbukum/ssehub/sse.(*Handler).BroadcastJSON-fm": "Handler.BroadcastJSON",
		"github.com/kbukum/ssehub/server/endpoint.Health.func1":    "health",
		"main.main.func1": "main",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func middlewareLimit(n int) middleware.RateLimitConfig {
	return middleware.RateLimitConfig{RequestsPerMinute: n}
}
