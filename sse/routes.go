package sse

import (
	"context"
	_ "embed"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/ssehub/errors"
	"github.com/kbukum/ssehub/observability"
	"github.com/kbukum/ssehub/server"
	"github.com/kbukum/ssehub/validation"
)

//go:embed index.html
var indexPage []byte

// PublishRequest is the JSON body accepted by POST /broadcast.
type PublishRequest struct {
	Message string `json:"message" validate:"required,max=65536"`
}

// PublishResponse acknowledges a publish. It says nothing about how many
// subscribers actually received the message.
type PublishResponse struct {
	Status string `json:"status"`
}

// Handler exposes a Hub over HTTP.
type Handler struct {
	hub *Hub
}

// NewHandler creates HTTP handlers backed by hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes mounts the index page, the event stream and the publish
// endpoints on r. The publish handlers run behind the given middleware,
// typically a rate limiter.
func RegisterRoutes(r gin.IRouter, hub *Hub, eventsPath string, publish ...gin.HandlerFunc) {
	if eventsPath == "" {
		eventsPath = "/events"
	}
	h := NewHandler(hub)
	r.GET("/", h.Index)
	r.GET(eventsPath, h.Events)
	r.GET("/broadcast/:msg", slices.Concat(publish, []gin.HandlerFunc{h.BroadcastPath})...)
	r.POST("/broadcast", slices.Concat(publish, []gin.HandlerFunc{h.BroadcastJSON})...)
}

// Index serves a page that renders the event stream.
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// Events streams the hub to the client.
func (h *Handler) Events(c *gin.Context) {
	ServeSSE(h.hub, c.Writer, c.Request)
}

// BroadcastPath publishes the :msg path parameter.
func (h *Handler) BroadcastPath(c *gin.Context) {
	msg := c.Param("msg")
	if strings.TrimSpace(msg) == "" {
		server.RespondWithError(c, apperrors.MissingField("msg"))
		return
	}
	h.publish(c.Request.Context(), msg)
	c.String(http.StatusOK, "msg sent")
}

// BroadcastJSON publishes the message field of a JSON body.
func (h *Handler) BroadcastJSON(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.publish(c.Request.Context(), req.Message)
	server.RespondOK(c, PublishResponse{Status: "sent"})
}

// publish fans payload out inside a span recording the payload size and how
// many subscribers took it.
func (h *Handler) publish(ctx context.Context, payload string) {
	ctx, span := observability.StartSpan(ctx, observability.SpanPublish)
	defer span.End()

	t := h.hub.broadcast(Frame(payload))
	observability.SetSpanAttribute(ctx, observability.AttrPayloadBytes, len(payload))
	observability.SetSpanAttribute(ctx, observability.AttrSubscribers, t.delivered)
	if n := t.dropped(); n > 0 {
		observability.SetSpanAttribute(ctx, observability.AttrDropped, n)
	}
}
