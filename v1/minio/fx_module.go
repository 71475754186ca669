package minio

import (
	"context"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"go.uber.org/fx"
)

// FXModule loads the schema sources kept in a bucket into the shared
// *schema.Registry on start. It is inert when no endpoint is configured.
var FXModule = fx.Module("minio",
	fx.Invoke(RegisterMinioLifecycle),
)

// MinioLifecycleParams groups the dependencies of the bucket preload.
type MinioLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	Schemas   *schema.Registry
	Logger    *logger.Logger
	Metrics   *metrics.Metrics `optional:"true"`
}

// RegisterMinioLifecycle connects and loads the bucket on start. Any failure
// aborts startup.
func RegisterMinioLifecycle(p MinioLifecycleParams) {
	if p.Config.Connection.Endpoint == "" {
		return
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			client, err := NewClient(p.Config)
			if err != nil {
				return err
			}

			units, err := LoadSchemas(ctx, client, p.Config.Prefix, p.Schemas)
			if err != nil {
				p.Metrics.IncrementSchemaLoads(metrics.StatusError)
				p.Logger.Error("Failed to load schemas from bucket", err, map[string]interface{}{
					"bucket": p.Config.Connection.BucketName,
					"prefix": p.Config.Prefix,
				})
				return err
			}
			p.Metrics.IncrementSchemaLoads(metrics.StatusOK)
			p.Logger.Info("Schemas loaded from bucket", nil, map[string]interface{}{
				"bucket": p.Config.Connection.BucketName,
				"units":  units,
			})
			return nil
		},
	})
}
