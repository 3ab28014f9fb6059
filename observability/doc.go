// Package observability wires OpenTelemetry tracing and metrics for the hub
// service.
//
// InitTracer and InitMeter install global providers exporting over OTLP/HTTP.
// Component wraps both behind the component lifecycle so they are flushed on
// shutdown. StartOperation pairs a span with request metrics for one HTTP
// request or hub operation:
//
//	op := observability.StartOperation(ctx, "ssehub", "POST /broadcast", requestID, metrics)
//	defer op.End("ok", nil)
package observability
