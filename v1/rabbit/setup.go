package rabbit

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads the configured queue and delivers every message as an
// ingest.Message whose topic is the AMQP routing key. It reconnects on its
// own while RetryConnection runs.
//
// Consumer implements ingest.Source.
type Consumer struct {
	cfg    Config
	logger logger.Interface

	// mu protects conn and channel, which RetryConnection replaces.
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel

	// deliveries opens a delivery stream on the current channel.
	deliveries func() (<-chan amqp.Delivery, error)
	now        func() time.Time

	shutdownSignal chan struct{}
	closeOnce      sync.Once
}

// NewConsumer connects to RabbitMQ and declares the exchange, the queue and
// its bindings.
//
// Example:
//
//	consumer, err := rabbit.NewConsumer(rabbit.Config{
//		Connection: rabbit.Connection{Host: "localhost", Port: 5672, User: "guest", Password: "guest"},
//		Exchange:   rabbit.Exchange{Name: "telemetry"},
//		Queue:      rabbit.Queue{Name: "pbseries", BindingKeys: []string{"sensors.#"}},
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer consumer.Close()
func NewConsumer(cfg Config, log logger.Interface) (*Consumer, error) {
	cfg = cfg.withDefaults()
	if cfg.Queue.Name == "" {
		return nil, ErrMissingQueue
	}
	if cfg.Exchange.Name == "" {
		return nil, ErrMissingExchange
	}

	conn, err := newConnection(cfg)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ", err, map[string]interface{}{
			"host": cfg.Connection.Host,
		})
		return nil, err
	}

	ch, err := declareTopology(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	c := newConsumer(cfg, log)
	c.conn = conn
	c.channel = ch
	log.Info("RabbitMQ consumer initialized", nil, map[string]interface{}{
		"exchange":     cfg.Exchange.Name,
		"queue":        cfg.Queue.Name,
		"binding_keys": cfg.Queue.BindingKeys,
	})
	return c, nil
}

func newConsumer(cfg Config, log logger.Interface) *Consumer {
	c := &Consumer{
		cfg:            cfg,
		logger:         log,
		now:            time.Now,
		shutdownSignal: make(chan struct{}),
	}
	c.deliveries = c.consumeChannel
	return c
}

func (c *Consumer) consumeChannel() (<-chan amqp.Delivery, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.channel == nil {
		return nil, ErrChannelClosed
	}
	return c.channel.Consume(
		c.cfg.Queue.Name,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
}

// declareTopology opens a channel and declares the exchange, the queue and
// one binding per binding key.
func declareTopology(conn *amqp.Connection, cfg Config) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange.Name,
		cfg.Exchange.Type,
		true,  // Durable
		false, // AutoDelete
		false, // Internal
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange %q: %w: %w", cfg.Exchange.Name, TranslateError(err), err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue.Name,
		true,  // Durable
		false, // AutoDelete
		false, // Exclusive
		false, // NoWait
		nil,   // Arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %q: %w: %w", cfg.Queue.Name, TranslateError(err), err)
	}

	for _, key := range cfg.Queue.BindingKeys {
		if err := ch.QueueBind(cfg.Queue.Name, key, cfg.Exchange.Name, false, nil); err != nil {
			return nil, fmt.Errorf("failed to bind queue with key %q: %w: %w", key, TranslateError(err), err)
		}
	}

	if cfg.Queue.PrefetchCount > 0 {
		if err := ch.Qos(cfg.Queue.PrefetchCount, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	return ch, nil
}

// RetryConnection monitors the connection and re-establishes it, including
// the topology, whenever it closes. It returns after Close.
func (c *Consumer) RetryConnection() {
outerLoop:
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		errChan := make(chan *amqp.Error, 1)
		conn.NotifyClose(errChan)

		select {
		case <-c.shutdownSignal:
			return

		case amqpErr := <-errChan:
			c.logger.Warn("RabbitMQ connection closed, retrying", nilIfNoError(amqpErr), nil)
		reconnectLoop:
			for {
				select {
				case <-c.shutdownSignal:
					return
				default:
				}

				newConn, err := newConnection(c.cfg)
				if err != nil {
					c.logger.Error("RabbitMQ reconnection failed", err, map[string]interface{}{
						"retryable": IsRetryableError(TranslateError(err)),
					})
					c.sleep(c.cfg.Connection.DelayToReconnect)
					continue reconnectLoop
				}

				ch, err := declareTopology(newConn, c.cfg)
				if err != nil {
					_ = newConn.Close()
					c.logger.Error("Failed to re-establish RabbitMQ channel", err, nil)
					c.sleep(c.cfg.Connection.DelayToReconnect)
					continue reconnectLoop
				}

				c.mu.Lock()
				c.conn = newConn
				c.channel = ch
				c.mu.Unlock()

				c.logger.Info("Reconnected to RabbitMQ", nil, nil)
				continue outerLoop
			}
		}
	}
}

func (c *Consumer) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-c.shutdownSignal:
	}
}

// nilIfNoError avoids logging a typed nil *amqp.Error, which NotifyClose
// sends on a graceful close.
func nilIfNoError(err *amqp.Error) error {
	if err == nil {
		return nil
	}
	return err
}

// Close stops RetryConnection and the consume loop and closes the channel
// and connection. It is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.shutdownSignal)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.channel != nil {
			if cerr := c.channel.Close(); cerr != nil {
				c.logger.Warn("Failed to close RabbitMQ channel", cerr, nil)
			}
		}
		if c.conn != nil && !c.conn.IsClosed() {
			err = c.conn.Close()
		}
	})
	return err
}

// newConnection dials RabbitMQ with a short heartbeat, using amqps when SSL is
// enabled and a client certificate when UseCert is set.
func newConnection(cfg Config) (*amqp.Connection, error) {
	scheme := "amqp"
	amqpConfig := amqp.Config{Heartbeat: DefaultHeartbeat}

	if cfg.Connection.IsSSLEnabled {
		scheme = "amqps"
		if cfg.Connection.UseCert {
			tlsConfig, err := clientTLSConfig(cfg.Connection)
			if err != nil {
				return nil, err
			}
			amqpConfig.TLSClientConfig = tlsConfig
		}
	}

	hostURL := fmt.Sprintf("%s://%v:%v@%v:%v", scheme, cfg.Connection.User, cfg.Connection.Password, cfg.Connection.Host, cfg.Connection.Port)
	conn, err := amqp.DialConfig(hostURL, amqpConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s:%d: %w: %w", cfg.Connection.Host, cfg.Connection.Port, TranslateError(err), err)
	}
	return conn, nil
}

func clientTLSConfig(cfg Connection) (*tls.Config, error) {
	caCert, err := os.ReadFile(cfg.CACertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA cert")
	}

	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert: %w", err)
	}

	return &tls.Config{
		RootCAs:      caCertPool,
		Certificates: []tls.Certificate{cert},
		ServerName:   cfg.ServerName,
	}, nil
}
