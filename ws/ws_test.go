package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/kbukum/ssehub/sse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer returns the server and its WebSocket URL. Callers close the
// server themselves so goleak runs after it is gone.
func newTestServer(hub *sse.Hub, cfg Config) (*httptest.Server, string) {
	engine := gin.New()
	RegisterRoutes(engine, hub, cfg)
	srv := httptest.NewServer(engine)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Fatalf("expected text frame, got %d", mt)
	}
	return string(data)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Path != "/ws" {
		t.Errorf("expected /ws, got %q", cfg.Path)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("expected ping period 54s, got %v", cfg.PingPeriod)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ping not shorter than pong", func(c *Config) { c.PingPeriod = c.PongWait }},
		{"relative path", func(c *Config) { c.Path = "ws" }},
		{"negative read limit", func(c *Config) { c.ReadLimit = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cfg
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestHandler_StreamsHubMessages(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := sse.NewHub()
	srv, url := newTestServer(hub, Config{})
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, url)
	if got := readText(t, conn); got != "connected" {
		t.Fatalf("expected connected, got %q", got)
	}

	hub.Publish("hello")
	hub.Publish("world")
	if got := readText(t, conn); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
	if got := readText(t, conn); got != "world" {
		t.Errorf("expected world, got %q", got)
	}

	_ = conn.Close()

	// The disconnected subscriber is pruned lazily by the next sweep.
	waitFor(t, func() bool {
		hub.Sweep()
		return hub.Len() == 0
	})
}

func TestHandler_HubCloseEndsConnection(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := sse.NewHub()
	srv, url := newTestServer(hub, Config{})
	defer srv.Close()

	conn := dial(t, url)
	defer conn.Close()
	readText(t, conn)

	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
}

func TestHandler_PingKeepsConnectionAlive(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := sse.NewHub()
	srv, url := newTestServer(hub, Config{
		PongWait:   150 * time.Millisecond,
		PingPeriod: 30 * time.Millisecond,
	})
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, url)
	defer conn.Close()

	received := make(chan string, 8)
	go func() {
		defer close(received)
		for {
			// Reading lets the default ping handler answer with pongs.
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(data)
		}
	}()

	if got := <-received; got != "connected" {
		t.Fatalf("expected connected, got %q", got)
	}

	time.Sleep(400 * time.Millisecond)
	hub.Publish("still here")

	select {
	case got := <-received:
		if got != "still here" {
			t.Errorf("expected publish after pong wait, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("connection did not survive past pong wait")
	}
	_ = conn.Close()
	for range received {
	}
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	hub := sse.NewHub()
	srv, url := newTestServer(hub, Config{})
	defer srv.Close()
	defer hub.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected dial to fail for a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}
	if hub.Len() != 0 {
		t.Error("rejected upgrade must not subscribe")
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "http://any.example", true},
		{"listed", []string{"https://App.Example"}, "https://app.example", true},
		{"listed with path", []string{"https://app.example/"}, "https://app.example", true},
		{"not listed", []string{"https://app.example"}, "https://other.example", false},
		{"missing origin", []string{"https://app.example"}, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := checkOrigin(tc.allowed)
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			if got := check(r); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}

	if checkOrigin(nil) != nil {
		t.Error("expected nil policy for same-origin default")
	}
}
