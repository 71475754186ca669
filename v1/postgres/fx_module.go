package postgres

import (
	"context"
	"sync"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"go.uber.org/fx"
)

// FXModule provides the *Postgres series store, migrates it on start when
// configured and keeps the connection monitored until shutdown. The
// application exposes it as the series.Store.
var FXModule = fx.Module("postgres",
	fx.Provide(NewPostgresClientWithDI),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams groups the dependencies of the store.
type PostgresParams struct {
	fx.In

	Config Config
	Logger *logger.Logger
}

// NewPostgresClientWithDI connects using injected dependencies.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	return NewPostgres(params.Config, params.Logger.Named("postgres"))
}

// PostgresLifeCycleParams groups the dependencies of RegisterPostgresLifecycle.
type PostgresLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    Config
	Postgres  *Postgres
}

// RegisterPostgresLifecycle migrates on start (when AutoMigrate is set) and
// starts the monitor and reconnect loops. On stop the loops are drained and
// the pool is closed.
func RegisterPostgresLifecycle(params PostgresLifeCycleParams) {
	wg := &sync.WaitGroup{}
	ctx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if params.Config.AutoMigrate {
				if err := params.Postgres.Migrate(startCtx); err != nil {
					cancel()
					return err
				}
			}

			wg.Add(2)
			go func() {
				defer wg.Done()
				params.Postgres.MonitorConnection(ctx)
			}()
			go func() {
				defer wg.Done()
				params.Postgres.RetryConnection(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			wg.Wait()
			return params.Postgres.Close()
		},
	})
}
