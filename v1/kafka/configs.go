package kafka

import "time"

const (
	DefaultMinBytes       = 1
	DefaultMaxBytes       = 10e6
	DefaultMaxWait        = 500 * time.Millisecond
	DefaultRetryBackoff   = time.Second
	DefaultStartOffset    = FirstOffset
)

// Start offsets for a consumer group without committed offsets.
const (
	FirstOffset = "first"
	LastOffset  = "last"
)

// Config defines the Kafka consumer settings.
type Config struct {
	// Brokers is the list of bootstrap brokers.
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`

	// Topics are consumed as one consumer group. Each Kafka topic becomes
	// one ingestion topic.
	Topics []string `yaml:"topics" envconfig:"KAFKA_TOPICS"`

	// GroupID is required when more than one topic is consumed. Without it
	// the single topic is read from Partition and commits are no-ops.
	GroupID string `yaml:"group_id" envconfig:"KAFKA_GROUP_ID"`

	Partition int `yaml:"partition" envconfig:"KAFKA_PARTITION"`

	// StartOffset is "first" or "last".
	StartOffset string `yaml:"start_offset" envconfig:"KAFKA_START_OFFSET"`

	MinBytes int           `yaml:"min_bytes" envconfig:"KAFKA_MIN_BYTES"`
	MaxBytes int           `yaml:"max_bytes" envconfig:"KAFKA_MAX_BYTES"`
	MaxWait  time.Duration `yaml:"max_wait" envconfig:"KAFKA_MAX_WAIT"`

	// CommitInterval > 0 commits offsets asynchronously in batches.
	CommitInterval time.Duration `yaml:"commit_interval" envconfig:"KAFKA_COMMIT_INTERVAL"`

	// RetryBackoff is the pause after a failed fetch.
	RetryBackoff time.Duration `yaml:"retry_backoff" envconfig:"KAFKA_RETRY_BACKOFF"`

	TLS  TLSConfig  `yaml:"tls"`
	SASL SASLConfig `yaml:"sasl"`
}

// TLSConfig contains TLS/SSL settings for the broker connection.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" envconfig:"KAFKA_TLS_ENABLED"`
	CACertPath         string `yaml:"ca_cert_path" envconfig:"KAFKA_TLS_CA_CERT_PATH"`
	ClientCertPath     string `yaml:"client_cert_path" envconfig:"KAFKA_TLS_CLIENT_CERT_PATH"`
	ClientKeyPath      string `yaml:"client_key_path" envconfig:"KAFKA_TLS_CLIENT_KEY_PATH"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" envconfig:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig contains SASL authentication settings.
type SASLConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_SASL_ENABLED"`

	// Mechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	Mechanism string `yaml:"mechanism" envconfig:"KAFKA_SASL_MECHANISM"`
	Username  string `yaml:"username" envconfig:"KAFKA_SASL_USERNAME"`
	Password  string `yaml:"password" envconfig:"KAFKA_SASL_PASSWORD"`
}
