package rabbit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Aleph-Alpha/pbseries/v1/ingest"
	"github.com/Aleph-Alpha/pbseries/v1/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAcknowledger struct {
	mu    sync.Mutex
	acked []uint64
}

func (f *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcknowledger) Nack(uint64, bool, bool) error { return nil }
func (f *fakeAcknowledger) Reject(uint64, bool) error     { return nil }

func testConsumer() (*Consumer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := Config{Queue: Queue{Name: "q"}, Connection: Connection{DelayToReconnect: time.Millisecond}}
	return newConsumer(cfg.withDefaults(), logger.NewFromZap(zap.New(core), false)), logs
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, "topic", cfg.Exchange.Type)
	assert.Equal(t, []string{"#"}, cfg.Queue.BindingKeys)
	assert.Equal(t, DefaultDelayToReconnect, cfg.Connection.DelayToReconnect)

	cfg = Config{Exchange: Exchange{Type: "direct"}, Queue: Queue{BindingKeys: []string{"a.b"}}}.withDefaults()
	assert.Equal(t, "direct", cfg.Exchange.Type)
	assert.Equal(t, []string{"a.b"}, cfg.Queue.BindingKeys)
}

func TestNewConsumer_Validation(t *testing.T) {
	log := logger.NewFromZap(zap.NewNop(), false)

	_, err := NewConsumer(Config{Exchange: Exchange{Name: "x"}}, log)
	assert.ErrorIs(t, err, ErrMissingQueue)

	_, err = NewConsumer(Config{Queue: Queue{Name: "q"}}, log)
	assert.ErrorIs(t, err, ErrMissingExchange)
}

func TestToMessage(t *testing.T) {
	c, _ := testConsumer()
	c.now = func() time.Time { return time.Unix(99, 0) }
	ack := &fakeAcknowledger{}

	msg := c.toMessage(amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  7,
		RoutingKey:   "sensors.imu",
		Body:         []byte{1, 2, 3},
		Timestamp:    time.Unix(12, 0),
		Headers: amqp.Table{
			"traceparent": "00-abc-def-01",
			"raw":         []byte("bytes"),
			"retries":     int32(3),
			"empty":       nil,
		},
	})

	assert.Equal(t, "sensors.imu", msg.Topic)
	assert.Equal(t, []byte{1, 2, 3}, msg.Payload)
	assert.Equal(t, 12.0, msg.Timestamp)
	assert.Equal(t, map[string]string{
		"traceparent": "00-abc-def-01",
		"raw":         "bytes",
		"retries":     "3",
	}, msg.Headers)

	require.NoError(t, msg.Commit(context.Background()))
	assert.Equal(t, []uint64{7}, ack.acked)

	msg = c.toMessage(amqp.Delivery{RoutingKey: "t"})
	assert.Equal(t, 99.0, msg.Timestamp)
	assert.Nil(t, msg.Headers)
}

func TestConsume_ReopensClosedStream(t *testing.T) {
	c, logs := testConsumer()

	first := make(chan amqp.Delivery, 1)
	first <- amqp.Delivery{RoutingKey: "a", Body: []byte("1")}
	close(first)
	second := make(chan amqp.Delivery, 1)
	second <- amqp.Delivery{RoutingKey: "b", Body: []byte("2")}

	var calls int
	c.deliveries = func() (<-chan amqp.Delivery, error) {
		calls++
		switch calls {
		case 1:
			return first, nil
		case 2:
			return nil, errors.New("channel not ready")
		default:
			return second, nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	out := c.Consume(ctx, wg)

	var got []ingest.Message
	for len(got) < 2 {
		select {
		case m := <-out:
			got = append(got, m)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for messages")
		}
	}
	cancel()
	wg.Wait()

	assert.Equal(t, "a", got[0].Topic)
	assert.Equal(t, "b", got[1].Topic)
	assert.Equal(t, 3, calls)
	assert.Len(t, logs.FilterMessage("Failed to establish consumer").All(), 1)
}

func TestConsume_StopsOnClose(t *testing.T) {
	c, _ := testConsumer()
	c.deliveries = func() (<-chan amqp.Delivery, error) {
		return make(chan amqp.Delivery), nil
	}

	wg := &sync.WaitGroup{}
	out := c.Consume(context.Background(), wg)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	wg.Wait()

	_, open := <-out
	assert.False(t, open)
}
