package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/ssehub/errors"
	"github.com/kbukum/ssehub/security"
	"github.com/kbukum/ssehub/security/tlstest"
	"github.com/kbukum/ssehub/sse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func hubHandler(hub *sse.Hub) http.Handler {
	engine := gin.New()
	sse.RegisterRoutes(engine, hub, "")
	return engine
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.URL != "http://localhost:8080" || cfg.EventsPath != "/events" || cfg.Timeout != 10*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}

	for _, bad := range []string{"localhost:8080", "ftp://hub", "http://"} {
		c := cfg
		c.URL = bad
		if err := c.Validate(); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestClient_PublishAndSubscribe(t *testing.T) {
	hub := sse.NewHub()
	srv := httptest.NewServer(hubHandler(hub))
	defer srv.Close()
	defer hub.Close()

	c, err := New(Config{URL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := c.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stream.Close()

	ev, err := stream.Next()
	if err != nil || !ev.IsControl() || ev.Data != ControlConnected {
		t.Fatalf("expected connected control event, got %+v, %v", ev, err)
	}

	if err := c.Publish(ctx, "hello"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	ev, err = stream.Next()
	if err != nil || ev.Data != "hello" {
		t.Fatalf("expected hello, got %+v, %v", ev, err)
	}

	hub.Sweep()
	ev, err = stream.Next()
	if err != nil || ev.Data != ControlPing {
		t.Fatalf("expected ping, got %+v, %v", ev, err)
	}

	hub.Close()
	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("expected io.EOF once the hub closes, got %v", err)
	}
}

func TestClient_PublishErrorsAreAppErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"slow down","retryable":true}}`))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Publish(context.Background(), "hello")
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.ErrCodeRateLimited || !appErr.Retryable || appErr.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("unexpected error %+v", appErr)
	}
}

func TestClient_UnreachableHub(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{URL: url, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Publish(context.Background(), "hello")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeServiceUnavailable {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
}

func TestClient_SubscribeRejectsNonStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("not a stream"))
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Subscribe(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeUnsupported {
		t.Errorf("expected UNSUPPORTED, got %v", err)
	}
}

func TestClient_TLS(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	serverTLS, err := (&security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}).ServerConfig()
	if err != nil {
		t.Fatalf("server tls: %v", err)
	}

	hub := sse.NewHub()
	srv := httptest.NewUnstartedServer(hubHandler(hub))
	srv.TLS = serverTLS
	srv.StartTLS()
	defer srv.Close()
	defer hub.Close()

	c, err := New(Config{URL: srv.URL, TLS: security.TLSConfig{CAFile: certs.CAFile}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Publish(context.Background(), "over tls"); err != nil {
		t.Fatalf("Publish over TLS: %v", err)
	}
	if hub.Stats().Published != 1 {
		t.Errorf("expected hub to record the publish, got %+v", hub.Stats())
	}
}
