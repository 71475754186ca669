package kafka

import (
	"context"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"go.uber.org/fx"
)

// FXModule provides a *Consumer built from the Config in the container and
// closes it on shutdown. The application exposes it as the ingest.Source.
var FXModule = fx.Module("kafka",
	fx.Provide(NewConsumerWithDI),
	fx.Invoke(RegisterKafkaLifecycle),
)

// ConsumerParams groups the dependencies of a Consumer.
type ConsumerParams struct {
	fx.In

	Config Config
	Logger *logger.Logger
}

// NewConsumerWithDI creates a Consumer from injected dependencies.
func NewConsumerWithDI(p ConsumerParams) (*Consumer, error) {
	return NewConsumer(p.Config, p.Logger.Named("kafka"))
}

// RegisterKafkaLifecycle closes the reader after the ingest runner stopped.
func RegisterKafkaLifecycle(lc fx.Lifecycle, c *Consumer, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Closing Kafka consumer", nil, nil)
			return c.Close()
		},
	})
}
