package sse

import (
	"net/http"
	"time"

	"github.com/kbukum/ssehub/logger"
)

// ServeSSE subscribes to hub and streams the subscriber's messages to w until
// the client disconnects or the hub ends the stream.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("sse")

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Streaming not supported", map[string]interface{}{
			logger.FieldRemoteAddr: r.RemoteAddr,
		})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Event streams are long-lived; the server's WriteTimeout must not apply.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Warn("Could not disable write deadline", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := hub.Subscribe()
	defer sub.Close()

	log.Debug("Client connected", map[string]interface{}{
		logger.FieldSubscriberID: sub.ID(),
		logger.FieldRemoteAddr:   r.RemoteAddr,
	})

	for m := range sub.All(r.Context()) {
		if _, err := w.Write(m.Bytes()); err != nil {
			log.Debug("Write failed, closing stream", map[string]interface{}{
				logger.FieldSubscriberID: sub.ID(),
				logger.FieldError:        err.Error(),
			})
			return
		}
		flusher.Flush()
	}

	reason := "evicted"
	if err := r.Context().Err(); err != nil {
		reason = err.Error()
	}
	log.Debug("Client disconnected", map[string]interface{}{
		logger.FieldSubscriberID: sub.ID(),
		"reason":                 reason,
	})
}
