package ws

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kbukum/ssehub/logger"
	"github.com/kbukum/ssehub/sse"
)

// Handler upgrades requests to WebSocket connections fed by a hub.
type Handler struct {
	hub      *sse.Hub
	cfg      Config
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewHandler creates a WebSocket handler streaming hub.
func NewHandler(hub *sse.Hub, cfg Config) *Handler {
	cfg.ApplyDefaults()
	return &Handler{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowedOrigins),
		},
		log: logger.WithComponent("ws"),
	}
}

// RegisterRoutes mounts the WebSocket endpoint at cfg.Path.
func RegisterRoutes(r gin.IRouter, hub *sse.Hub, cfg Config) {
	h := NewHandler(hub, cfg)
	r.GET(h.cfg.Path, gin.WrapH(h))
}

// ServeHTTP upgrades the connection and streams one subscription until the
// peer goes away or the hub ends the stream.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.log.Debug("WebSocket upgrade failed", map[string]interface{}{
			logger.FieldRemoteAddr: r.RemoteAddr,
			logger.FieldError:      err.Error(),
		})
		return
	}

	sub := h.hub.Subscribe()
	fields := map[string]interface{}{
		logger.FieldSubscriberID: sub.ID(),
		logger.FieldRemoteAddr:   r.RemoteAddr,
		logger.FieldTransport:    "ws",
	}
	h.log.Debug("Client connected", fields)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	var wg sync.WaitGroup
	wg.Go(func() {
		defer cancel()
		h.readPump(conn, fields)
	})
	wg.Go(func() { h.pingLoop(ctx, conn) })

	evicted := h.writePump(ctx, conn, sub)

	cancel()
	sub.Close()
	if evicted {
		deadline := time.Now().Add(h.cfg.WriteWait)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream ended"), deadline)
	}
	_ = conn.Close()
	wg.Wait()

	h.log.Debug("Client disconnected", fields)
}

// writePump forwards the subscription as text frames. It reports true when
// the hub ended the stream and false when the connection went away first.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, sub *sse.Subscriber) bool {
	for {
		m, err := sub.Next(ctx)
		if err != nil {
			return ctx.Err() == nil
		}
		if err := conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait)); err != nil {
			return false
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(m.Payload())); err != nil {
			return false
		}
	}
}

// readPump discards inbound messages and keeps the read deadline moving on
// every pong. It returns once the peer is gone.
func (h *Handler) readPump(conn *websocket.Conn, fields map[string]interface{}) {
	conn.SetReadLimit(h.cfg.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if unexpectedClose(err) {
				h.log.WithFields(fields).Debug("WebSocket read error", map[string]interface{}{
					logger.FieldError: err.Error(),
				})
			}
			return
		}
	}
}

// pingLoop sends control pings until ctx is done. WriteControl may be used
// concurrently with the write pump.
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func unexpectedClose(err error) bool {
	if errors.Is(err, websocket.ErrReadLimit) {
		return true
	}
	return websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived)
}

// checkOrigin builds the upgrader's origin policy. A nil func makes the
// upgrader enforce same-origin.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if n, ok := normalizeOrigin(o); ok {
			set[n] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		n, ok := normalizeOrigin(r.Header.Get("Origin"))
		if !ok {
			return false
		}
		_, found := set[n]
		return found
	}
}

func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}
