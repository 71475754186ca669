// Package tracer provides distributed tracing using OpenTelemetry.
//
// Every ingested message runs in an "ingest.message" span. When the producer
// attached W3C trace context to the message headers, the span continues that
// trace:
//
//	ctx = tracerClient.SetCarrierOnContext(ctx, msg.Headers)
//	ctx, span := tracerClient.StartSpan(ctx, "ingest.message")
//	defer span.End()
//
//	if err != nil {
//	    tracerClient.RecordErrorOnSpan(span, err)
//	}
//
// Spans are exported over OTLP/HTTP when Config.EnableExport is set.
package tracer
