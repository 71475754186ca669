package rabbit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Aleph-Alpha/pbseries/v1/ingest"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consume starts consuming the queue in a goroutine registered on wg. When
// the delivery stream ends, for instance because the connection dropped, it
// is reopened on the channel RetryConnection re-established. The returned
// channel is closed on ctx cancellation or Close.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan ingest.Message {
	out := make(chan ingest.Message)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.shutdownSignal:
				return
			default:
			}

			msgs, err := c.deliveries()
			if err != nil {
				c.logger.Warn("Failed to establish consumer", err, map[string]interface{}{
					"queue": c.cfg.Queue.Name,
				})
				select {
				case <-time.After(c.cfg.Connection.DelayToReconnect):
				case <-ctx.Done():
					return
				case <-c.shutdownSignal:
					return
				}
				continue
			}

			if !c.forward(ctx, msgs, out) {
				return
			}
		}
	}()

	return out
}

// forward copies deliveries to out until the stream closes (true) or the
// consumer is stopped (false).
func (c *Consumer) forward(ctx context.Context, msgs <-chan amqp.Delivery, out chan<- ingest.Message) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-c.shutdownSignal:
			return false
		case d, ok := <-msgs:
			if !ok {
				return true
			}
			select {
			case out <- c.toMessage(d):
			case <-ctx.Done():
				return false
			case <-c.shutdownSignal:
				return false
			}
		}
	}
}

// toMessage maps a delivery to an ingest message. The routing key is the
// topic; the publisher timestamp is used when set, otherwise the receive time.
func (c *Consumer) toMessage(d amqp.Delivery) ingest.Message {
	ts := d.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}

	return ingest.Message{
		Topic:     d.RoutingKey,
		Payload:   d.Body,
		Timestamp: ingest.Seconds(ts),
		Headers:   headerStrings(d.Headers),
		Commit: func(context.Context) error {
			return d.Ack(false)
		},
	}
}

// headerStrings keeps the string-like AMQP headers, which is where W3C trace
// context travels.
func headerStrings(table amqp.Table) map[string]string {
	if len(table) == 0 {
		return nil
	}
	headers := make(map[string]string, len(table))
	for k, v := range table {
		switch val := v.(type) {
		case string:
			headers[k] = val
		case []byte:
			headers[k] = string(val)
		case nil:
		default:
			headers[k] = fmt.Sprint(val)
		}
	}
	return headers
}

var _ ingest.Source = (*Consumer)(nil)
