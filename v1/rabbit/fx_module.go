package rabbit

import (
	"context"
	"sync"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"go.uber.org/fx"
)

// FXModule provides a *Consumer built from the Config in the container,
// keeps its connection alive while the application runs and closes it on
// shutdown. The application exposes it as the ingest.Source.
var FXModule = fx.Module("rabbit",
	fx.Provide(NewConsumerWithDI),
	fx.Invoke(RegisterRabbitLifecycle),
)

// ConsumerParams groups the dependencies of a Consumer.
type ConsumerParams struct {
	fx.In

	Config Config
	Logger *logger.Logger
}

// NewConsumerWithDI creates a Consumer from injected dependencies.
func NewConsumerWithDI(p ConsumerParams) (*Consumer, error) {
	return NewConsumer(p.Config, p.Logger.Named("rabbit"))
}

// RegisterRabbitLifecycle runs RetryConnection in the background on start.
// On stop it closes the consumer and waits for the monitor to exit.
func RegisterRabbitLifecycle(lc fx.Lifecycle, c *Consumer, log *logger.Logger) {
	wg := &sync.WaitGroup{}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.RetryConnection()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down RabbitMQ consumer", nil, nil)
			err := c.Close()
			wg.Wait()
			return err
		},
	})
}
