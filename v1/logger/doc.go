// Package logger provides structured logging for the ingestion service.
//
// It wraps Uber's zap with a small call shape used across the repository:
// a message, an optional error and any number of field maps.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Interface: the logging contract consumed by ingest, kafka and rabbit
//   - Logger struct: zap-backed implementation
//   - NewLoggerClient constructor: returns *Logger
//   - FXModule: provides *Logger and flushes it on shutdown
//
// # Direct Usage (Without FX)
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         "info",
//		EnableTracing: true,
//	})
//
//	log.Info("Schema loaded", nil, map[string]interface{}{
//		"unit": "telemetry.proto",
//	})
//
//	// Includes trace_id and span_id when the context carries a span
//	log.WarnWithContext(ctx, "Dropping undecodable payload", err, map[string]interface{}{
//		"topic": "sensors/a",
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func(cfg *config.Config) logger.Config { return cfg.Logger }),
//	)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true      # attach trace_id / span_id in ...WithContext
//	LOGGER_SERVICE_NAME=pbseries    # "service" field on every entry
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
