package schema

import (
	"context"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"go.uber.org/fx"
)

// FXModule provides the shared *Registry and loads the configured local
// schema files when the application starts.
var FXModule = fx.Module("schema",
	fx.Provide(
		NewRegistry,
	),
	fx.Invoke(RegisterSchemaLifecycle),
)

// SchemaParams groups the dependencies of the startup preload.
type SchemaParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Registry  *Registry
	Config    Config
	Logger    *logger.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

// RegisterSchemaLifecycle loads the configured schema files on start. A source
// that fails to compile aborts startup, since bindings may depend on it.
func RegisterSchemaLifecycle(p SchemaParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sources, err := ReadSources(p.Config)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return nil
			}
			if err := p.Registry.LoadSources(sources); err != nil {
				p.Metrics.IncrementSchemaLoads(metrics.StatusError)
				p.Logger.Error("Failed to load schema files", err, nil)
				return err
			}
			p.Metrics.IncrementSchemaLoads(metrics.StatusOK)
			p.Logger.Info("Schema files loaded", nil, map[string]interface{}{
				"units": p.Registry.Units(),
			})
			return nil
		},
	})
}
