package schema_registry

import (
	"context"
	"errors"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"go.uber.org/fx"
)

// FXModule is an fx.Module that loads the configured subjects from a
// Confluent Schema Registry into the shared *schema.Registry on start.
//
// The module is inert when Config.URL is empty.
//
// Usage:
//
//	app := fx.New(
//	    schema.FXModule,
//	    schema_registry.FXModule,
//	    fx.Provide(func() schema_registry.Config {
//	        return schema_registry.Config{
//	            URL:      "http://localhost:8081",
//	            Subjects: []string{"sensors-value"},
//	        }
//	    }),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryLifecycleParams groups the dependencies needed for the subject preload
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	Schemas   *schema.Registry
	Logger    *logger.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

// RegisterSchemaRegistryLifecycle fetches and compiles every configured subject
// when the application starts. Any failure aborts startup.
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	if params.Config.URL == "" || len(params.Config.Subjects) == 0 {
		return
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			client, err := NewClient(params.Config)
			if err != nil {
				return err
			}

			var errs []error
			for _, subject := range params.Config.Subjects {
				unit, err := LoadSubject(ctx, client, params.Schemas, subject)
				if err != nil {
					params.Metrics.IncrementSchemaLoads(metrics.StatusError)
					params.Logger.Error("Failed to load schema subject", err, map[string]interface{}{
						"subject": subject,
					})
					errs = append(errs, err)
					continue
				}
				params.Metrics.IncrementSchemaLoads(metrics.StatusOK)
				params.Logger.Info("Schema subject loaded", nil, map[string]interface{}{
					"subject": subject,
					"types":   unit.TypeNames(),
				})
			}
			return errors.Join(errs...)
		},
	})
}
