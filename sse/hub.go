package sse

import (
	"context"
	"sort"
	"sync"

	"github.com/kbukum/ssehub/logger"
)

// DefaultQueueCapacity bounds each subscriber's backlog before drops occur.
const DefaultQueueCapacity = 100

// Hub owns the subscriber registry and is the only code that mutates it.
// Subscribe, Publish and Sweep serialize on a single mutex; none of them
// blocks on a subscriber.
type Hub struct {
	mu       sync.Mutex
	subs     map[uint64]*Subscriber
	nextID   uint64
	capacity int
	closed   bool
	stats    Stats

	log     *logger.Logger
	metrics *Metrics
}

// Stats is a point-in-time view of hub activity since creation.
type Stats struct {
	Subscribers   int   `json:"subscribers"`
	Published     int64 `json:"published"`
	Delivered     int64 `json:"delivered"`
	DroppedFull   int64 `json:"dropped_full"`
	DroppedClosed int64 `json:"dropped_closed"`
	Sweeps        int64 `json:"sweeps"`
	Evicted       int64 `json:"evicted"`
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithQueueCapacity sets the per-subscriber queue capacity. Values below 1
// fall back to DefaultQueueCapacity.
func WithQueueCapacity(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// WithLogger sets the logger used by the hub.
func WithLogger(l *logger.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithMetrics attaches OpenTelemetry instruments to the hub.
func WithMetrics(m *Metrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:     make(map[uint64]*Subscriber),
		capacity: DefaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.WithComponent("sse")
	}
	return h
}

// Capacity returns the queue capacity given to new subscribers.
func (h *Hub) Capacity() int {
	return h.capacity
}

// tally counts delivery outcomes for one fan-out pass.
type tally struct {
	delivered     int
	droppedFull   int
	droppedClosed int
}

func (t *tally) add(d Delivery) {
	switch d {
	case Delivered:
		t.delivered++
	case DroppedFull:
		t.droppedFull++
	case DroppedClosed:
		t.droppedClosed++
	}
}

func (t tally) dropped() int {
	return t.droppedFull + t.droppedClosed
}

// Subscribe registers a new subscriber and enqueues the Connected message.
// It always succeeds. After Close the returned subscriber's stream has
// already ended.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := newSubscriber(h.nextID, h.capacity)
	if h.closed {
		sub.end()
		return sub
	}

	h.subs[sub.id] = sub
	sub.offer(Connected)
	h.stats.Subscribers = len(h.subs)
	h.metrics.subscribed(context.Background())

	h.log.Debug("Subscriber registered", map[string]interface{}{
		logger.FieldSubscriberID: sub.id,
		"total_subscribers":      len(h.subs),
	})
	return sub
}

// Publish frames payload and offers it to every registered subscriber.
// Subscribers whose queue is full or whose consumer is gone silently miss
// the message; nobody is removed here.
func (h *Hub) Publish(payload string) {
	h.broadcast(Frame(payload))
}

// broadcast offers an already framed message to every subscriber.
func (h *Hub) broadcast(m Message) tally {
	h.mu.Lock()
	defer h.mu.Unlock()

	var t tally
	if h.closed {
		return t
	}
	for _, sub := range h.subs {
		t.add(sub.offer(m))
	}

	h.stats.Published++
	h.stats.Delivered += int64(t.delivered)
	h.stats.DroppedFull += int64(t.droppedFull)
	h.stats.DroppedClosed += int64(t.droppedClosed)
	h.metrics.published(context.Background(), t)

	if t.dropped() > 0 {
		h.log.Debug("Publish dropped for some subscribers", map[string]interface{}{
			"delivered":      t.delivered,
			"dropped_full":   t.droppedFull,
			"dropped_closed": t.droppedClosed,
		})
	}
	return t
}

// Sweep pings every subscriber and rebuilds the registry from those that
// accepted the ping. Any failure, including a momentarily full queue, evicts
// the subscriber and ends its stream. It returns the number evicted.
func (h *Hub) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0
	}

	survivors := make(map[uint64]*Subscriber, len(h.subs))
	var t tally
	for id, sub := range h.subs {
		d := sub.offer(Ping)
		t.add(d)
		if d == Delivered {
			survivors[id] = sub
			continue
		}
		sub.end()
		h.log.Debug("Subscriber evicted", map[string]interface{}{
			logger.FieldSubscriberID: id,
			"reason":                 d.String(),
		})
	}
	h.subs = survivors

	evicted := t.dropped()
	h.stats.Sweeps++
	h.stats.Evicted += int64(evicted)
	h.stats.Subscribers = len(h.subs)
	h.metrics.swept(context.Background(), t)

	return evicted
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// IDs returns the registered subscriber identities in ascending order.
func (h *Hub) IDs() []uint64 {
	h.mu.Lock()
	ids := make([]uint64, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats returns a snapshot of hub counters.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stats
	s.Subscribers = len(h.subs)
	return s
}

// Close ends every subscriber stream and empties the registry. Subsequent
// Publish and Sweep calls are no-ops. Safe to call multiple times.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	n := len(h.subs)
	for id, sub := range h.subs {
		sub.end()
		delete(h.subs, id)
	}
	h.metrics.closed(context.Background(), n)

	h.log.Debug("All subscribers closed during shutdown", map[string]interface{}{
		"count": n,
	})
}
