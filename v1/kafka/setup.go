package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Aleph-Alpha/pbseries/v1/ingest"
	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// reader is the subset of *kafka.Reader the consumer uses.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads Kafka records and delivers them as ingest messages. Each
// record is committed through Message.Commit once the session processed it.
//
// Consumer implements ingest.Source.
type Consumer struct {
	cfg    Config
	logger logger.Interface
	reader reader

	// grouped is true when offsets are tracked by a consumer group.
	grouped bool

	closeOnce sync.Once
	now       func() time.Time
}

// NewConsumer validates cfg, applies defaults and creates the underlying
// reader. No connection is made until Consume is called.
//
// Example:
//
//	consumer, err := kafka.NewConsumer(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//		Topics:  []string{"sensors.imu", "sensors.gps"},
//		GroupID: "pbseries",
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer consumer.Close()
func NewConsumer(cfg Config, log logger.Interface) (*Consumer, error) {
	cfg, err := withDefaults(cfg)
	if err != nil {
		return nil, err
	}

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		mechanism, err = createSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	c := newConsumer(cfg, log, createReader(cfg, tlsConfig, mechanism, log))
	log.Info("Kafka consumer initialized", nil, map[string]interface{}{
		"brokers": cfg.Brokers,
		"topics":  cfg.Topics,
		"group":   cfg.GroupID,
	})
	return c, nil
}

func newConsumer(cfg Config, log logger.Interface, r reader) *Consumer {
	return &Consumer{
		cfg:     cfg,
		logger:  log,
		reader:  r,
		grouped: cfg.GroupID != "",
		now:     time.Now,
	}
}

func withDefaults(cfg Config) (Config, error) {
	if len(cfg.Brokers) == 0 {
		return cfg, ErrNoBrokers
	}
	if len(cfg.Topics) == 0 {
		return cfg, ErrNoTopics
	}
	if len(cfg.Topics) > 1 && cfg.GroupID == "" {
		return cfg, ErrGroupRequired
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.StartOffset == "" {
		cfg.StartOffset = DefaultStartOffset
	}
	if _, err := startOffset(cfg.StartOffset); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func startOffset(s string) (int64, error) {
	switch s {
	case FirstOffset:
		return kafka.FirstOffset, nil
	case LastOffset:
		return kafka.LastOffset, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStartOffset, s)
	}
}

// Consume starts fetching records in a goroutine registered on wg. The
// returned channel is closed when ctx is cancelled or the reader is closed.
// Fetch errors are logged and retried after RetryBackoff.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan ingest.Message {
	out := make(chan ingest.Message)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)

		for {
			record, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					return
				}
				c.logger.Error("Failed to fetch Kafka message", err, nil)
				select {
				case <-time.After(c.cfg.RetryBackoff):
					continue
				case <-ctx.Done():
					return
				}
			}

			select {
			case out <- c.toMessage(record):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// toMessage maps a record to an ingest message. The record timestamp is used
// when the broker set one, otherwise the receive time.
func (c *Consumer) toMessage(record kafka.Message) ingest.Message {
	ts := record.Time
	if ts.IsZero() {
		ts = c.now()
	}

	var headers map[string]string
	if len(record.Headers) > 0 {
		headers = make(map[string]string, len(record.Headers))
		for _, h := range record.Headers {
			headers[h.Key] = string(h.Value)
		}
	}

	msg := ingest.Message{
		Topic:     record.Topic,
		Payload:   record.Value,
		Timestamp: ingest.Seconds(ts),
		Headers:   headers,
	}
	if c.grouped {
		msg.Commit = func(ctx context.Context) error {
			return c.reader.CommitMessages(ctx, record)
		}
	}
	return msg
}

// Close closes the reader. It is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

var _ ingest.Source = (*Consumer)(nil)

// createErrorLogger routes kafka-go's internal errors to log.
func createErrorLogger(log logger.Interface) kafka.LoggerFunc {
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		formattedMsg := msg
		if len(args) > 0 {
			formattedMsg = fmt.Sprintf(msg, args...)
		}
		log.Error("Kafka internal error", nil, map[string]interface{}{
			"error": formattedMsg,
		})
	})
}

// createReader creates a Kafka reader with the given configuration
func createReader(cfg Config, tlsConfig *tls.Config, mechanism sasl.Mechanism, log logger.Interface) *kafka.Reader {
	offset, _ := startOffset(cfg.StartOffset)

	readerConfig := kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		StartOffset:    offset,
		CommitInterval: cfg.CommitInterval,
		ErrorLogger:    createErrorLogger(log),
		Dialer: &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			TLS:           tlsConfig,
			SASLMechanism: mechanism,
		},
	}

	if cfg.GroupID != "" {
		readerConfig.GroupTopics = cfg.Topics
	} else {
		readerConfig.Topic = cfg.Topics[0]
		readerConfig.Partition = cfg.Partition
	}

	return kafka.NewReader(readerConfig)
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// createSASLMechanism creates a SASL mechanism from the provided config
func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSASL, cfg.Mechanism)
	}
}
