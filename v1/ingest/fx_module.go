package ingest

import (
	"context"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/Aleph-Alpha/pbseries/v1/series"
	"github.com/Aleph-Alpha/pbseries/v1/tracer"
	"go.uber.org/fx"
)

// FXModule provides the *Session and runs it against the Source in the
// container. It expects a schema.Registry, a series.Sink, a logger, and
// optionally metrics and a tracer.
//
// The Source is supplied by the application, e.g. a Kafka or RabbitMQ consumer:
//
//	fx.Provide(func(c *kafka.Consumer) ingest.Source { return c })
var FXModule = fx.Module("ingest",
	fx.Provide(NewSessionWithDI),
	fx.Invoke(RegisterIngestLifecycle),
)

// SessionParams groups the dependencies of a Session.
type SessionParams struct {
	fx.In

	Config   Config
	Registry *schema.Registry
	Sink     *series.Sink
	Logger   *logger.Logger
	Metrics  *metrics.Metrics `optional:"true"`
	Tracer   *tracer.Tracer   `optional:"true"`
}

// NewSessionWithDI builds a Session from injected dependencies.
func NewSessionWithDI(p SessionParams) *Session {
	return NewSession(p.Config, p.Registry, p.Sink, p.Logger.Named("ingest"), p.Metrics, p.Tracer)
}

// LifecycleParams groups the dependencies of RegisterIngestLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	Session   *Session
	Source    Source
	Logger    *logger.Logger
}

// RegisterIngestLifecycle binds the configured type once the schema modules
// have loaded, then starts consuming. On stop it drains the workers and
// closes the session.
func RegisterIngestLifecycle(p LifecycleParams) {
	runner := NewRunner(p.Session, p.Source)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Config.Unit != "" {
				if err := p.Session.Bind(p.Config.Unit, p.Config.Type); err != nil {
					return err
				}
			} else {
				p.Logger.Warn("No message type configured, messages are dropped until one is bound", nil, nil)
			}
			runner.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := runner.Stop(ctx)
			_ = p.Session.Close()
			return err
		},
	})
}
