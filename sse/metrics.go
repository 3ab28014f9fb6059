package sse

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys used on hub instruments.
const (
	AttrResult = "result"
	AttrPass   = "pass"
)

// Metrics holds OpenTelemetry instruments for hub activity. A nil *Metrics
// records nothing.
type Metrics struct {
	publishTotal  metric.Int64Counter
	deliveryTotal metric.Int64Counter
	sweepTotal    metric.Int64Counter
	evictedTotal  metric.Int64Counter
	subscribers   metric.Int64UpDownCounter
}

// NewMetrics creates hub instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	publishTotal, err := meter.Int64Counter("sse.publish.total",
		metric.WithDescription("Total number of published messages"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.publish.total counter: %w", err)
	}

	deliveryTotal, err := meter.Int64Counter("sse.delivery.total",
		metric.WithDescription("Enqueue attempts by result and pass"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.delivery.total counter: %w", err)
	}

	sweepTotal, err := meter.Int64Counter("sse.sweep.total",
		metric.WithDescription("Total number of liveness sweeps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.sweep.total counter: %w", err)
	}

	evictedTotal, err := meter.Int64Counter("sse.evicted.total",
		metric.WithDescription("Subscribers evicted by sweeps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.evicted.total counter: %w", err)
	}

	subscribers, err := meter.Int64UpDownCounter("sse.subscribers",
		metric.WithDescription("Number of registered subscribers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sse.subscribers gauge: %w", err)
	}

	return &Metrics{
		publishTotal:  publishTotal,
		deliveryTotal: deliveryTotal,
		sweepTotal:    sweepTotal,
		evictedTotal:  evictedTotal,
		subscribers:   subscribers,
	}, nil
}

func (m *Metrics) subscribed(ctx context.Context) {
	if m == nil {
		return
	}
	m.subscribers.Add(ctx, 1)
}

func (m *Metrics) published(ctx context.Context, t tally) {
	if m == nil {
		return
	}
	m.publishTotal.Add(ctx, 1)
	m.recordTally(ctx, "publish", t)
}

func (m *Metrics) swept(ctx context.Context, t tally) {
	if m == nil {
		return
	}
	m.sweepTotal.Add(ctx, 1)
	m.recordTally(ctx, "sweep", t)
	if n := int64(t.dropped()); n > 0 {
		m.evictedTotal.Add(ctx, n)
		m.subscribers.Add(ctx, -n)
	}
}

func (m *Metrics) closed(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.subscribers.Add(ctx, -int64(n))
}

func (m *Metrics) recordTally(ctx context.Context, pass string, t tally) {
	for _, r := range []struct {
		d Delivery
		n int
	}{
		{Delivered, t.delivered},
		{DroppedFull, t.droppedFull},
		{DroppedClosed, t.droppedClosed},
	} {
		if r.n == 0 {
			continue
		}
		m.deliveryTotal.Add(ctx, int64(r.n), metric.WithAttributes(
			attribute.String(AttrResult, r.d.String()),
			attribute.String(AttrPass, pass),
		))
	}
}
