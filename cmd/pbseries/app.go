package main

import (
	"github.com/Aleph-Alpha/pbseries/v1/config"
	"github.com/Aleph-Alpha/pbseries/v1/ingest"
	"github.com/Aleph-Alpha/pbseries/v1/kafka"
	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"github.com/Aleph-Alpha/pbseries/v1/minio"
	"github.com/Aleph-Alpha/pbseries/v1/postgres"
	"github.com/Aleph-Alpha/pbseries/v1/rabbit"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/Aleph-Alpha/pbseries/v1/schema_registry"
	"github.com/Aleph-Alpha/pbseries/v1/series"
	"github.com/Aleph-Alpha/pbseries/v1/tracer"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// options assembles the application graph for cfg. Start hooks run in
// invoke order, so the schema loaders come before ingest binds its type.
func options(cfg *config.Config) []fx.Option {
	opts := []fx.Option{
		fx.Supply(
			cfg.Logger,
			cfg.Metrics,
			cfg.Tracer,
			cfg.Ingest,
			cfg.Schemas,
			cfg.SchemaRegistry,
			cfg.Minio,
		),
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Zap.Named("fx")}
		}),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		schema.FXModule,
		schema_registry.FXModule,
		minio.FXModule,
		series.FXModule,
	}

	switch cfg.Store {
	case config.StorePostgres:
		opts = append(opts,
			fx.Supply(cfg.Postgres),
			postgres.FXModule,
			fx.Provide(func(p *postgres.Postgres) series.Store { return p }),
		)
	default:
		opts = append(opts,
			fx.Provide(func() series.Store { return series.NewMemoryStore() }),
		)
	}

	switch cfg.Transport {
	case config.TransportRabbit:
		opts = append(opts,
			fx.Supply(cfg.Rabbit),
			rabbit.FXModule,
			fx.Provide(func(c *rabbit.Consumer) ingest.Source { return c }),
		)
	default:
		opts = append(opts,
			fx.Supply(cfg.Kafka),
			kafka.FXModule,
			fx.Provide(func(c *kafka.Consumer) ingest.Source { return c }),
		)
	}

	return append(opts, ingest.FXModule)
}
