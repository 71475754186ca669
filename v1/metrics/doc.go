// Package metrics exposes the ingestion metrics over a Prometheus endpoint.
//
// Instruments (names are prefixed with Config.Namespace when set):
//
//	messages_total{topic,status}        messages by outcome: ok, decode_error, flatten_error, not_bound, panic
//	points_total{topic,kind}            appended points, kind numeric or text
//	field_errors_total{topic,reason}    skipped fields: unsupported_kind, undefined_enum
//	series_conflicts_total{topic}       points dropped by a series kind conflict
//	process_duration_seconds{topic}     decode + flatten + append time per message
//	series_handles                      live series handles in the sink
//	schema_loads_total{status}          schema loads, ok or error
//
// Every metric carries a constant service label. A nil *Metrics is valid and
// records nothing, which keeps tests and tools free of metrics wiring.
package metrics
