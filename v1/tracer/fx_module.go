package tracer

import (
	"context"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"go.uber.org/fx"
)

// FXModule provides the *Tracer and flushes pending spans on shutdown.
//
// Usage:
//
//	app := fx.New(
//	    tracer.FXModule,
//	    fx.Provide(func() tracer.Config { return tracer.Config{ServiceName: "pbseries"} }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle registers shutdown hooks for the tracer with the FX lifecycle,
// so spans still buffered by the batcher reach the exporter.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer == nil || tracer.tracer == nil {
				return nil
			}
			log.Info("Shutting down tracer", nil, nil)
			return tracer.tracer.Shutdown(ctx)
		},
	})
}
