package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation pairs a span with request metrics for one tracked unit of work.
type Operation struct {
	ServiceName   string
	OperationName string
	RequestID     string
	StartTime     time.Time

	ctx     context.Context
	span    trace.Span
	metrics *Metrics
}

// StartOperation starts a span named after the operation and records the
// request start. metrics may be nil.
func StartOperation(ctx context.Context, serviceName, operationName, requestID string, metrics *Metrics) *Operation {
	op := &Operation{
		ServiceName:   serviceName,
		OperationName: operationName,
		RequestID:     requestID,
		StartTime:     time.Now(),
		metrics:       metrics,
	}

	op.ctx, op.span = StartSpan(ctx, operationName, trace.WithSpanKind(trace.SpanKindServer))
	op.span.SetAttributes(
		attribute.String(AttrServiceName, serviceName),
		attribute.String(AttrOperationName, operationName),
	)
	if requestID != "" {
		op.span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
	if metrics != nil {
		metrics.RecordRequestStart(op.ctx)
	}
	op.ctx = context.WithValue(op.ctx, operationKey{}, op)
	return op
}

// Context returns the context carrying the operation's span.
func (op *Operation) Context() context.Context {
	return op.ctx
}

// Span returns the operation's span.
func (op *Operation) Span() trace.Span {
	return op.span
}

// End finishes the span and records the request metrics.
func (op *Operation) End(status string, err error) {
	duration := time.Since(op.StartTime)

	if err != nil {
		op.span.RecordError(err)
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	if op.metrics != nil {
		op.metrics.RecordRequestEnd(op.ctx, op.ServiceName, op.OperationName, status, duration)
		if err != nil {
			op.metrics.RecordError(op.ctx, op.ServiceName, op.OperationName)
		}
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}

type operationKey struct{}

// OperationFromContext returns the operation started for ctx, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}
