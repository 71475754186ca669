// Package ingest coordinates schema-driven ingestion: it owns the binding of
// a message type, one decode+flatten pipeline per topic and the series sink.
//
//	session := ingest.NewSession(cfg, registry, series.NewSink(store), log, m, t)
//	if err := session.Bind("telemetry.proto", "Sample"); err != nil {
//		return err
//	}
//	report, err := session.OnMessage(ctx, "sensors/imu", payload, ts)
//
// Pipelines are created on the first message of a topic. Messages of one
// topic are processed strictly in order; different topics run in parallel
// under Run, which gives every topic its own worker.
//
// Ingestion never stops on bad input. A malformed payload is dropped with a
// warning and counted; skipped fields and series kind conflicts are counted
// and logged at debug level while the rest of the message is kept.
package ingest
