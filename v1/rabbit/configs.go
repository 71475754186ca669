package rabbit

import "time"

const (
	DefaultExchangeType     = "topic"
	DefaultBindingKey       = "#"
	DefaultDelayToReconnect = time.Second
	DefaultHeartbeat        = 2 * time.Second
)

// Config defines the RabbitMQ consumer settings: the connection, the
// exchange messages are published to and the queue this service reads.
type Config struct {
	Connection Connection `yaml:"connection"`
	Exchange   Exchange   `yaml:"exchange"`
	Queue      Queue      `yaml:"queue"`
}

// Connection contains the configuration parameters needed to establish
// a connection to a RabbitMQ server, including authentication and TLS settings.
type Connection struct {
	Host     string `yaml:"host" envconfig:"RABBITMQ_HOST"`
	Port     uint   `yaml:"port" envconfig:"RABBITMQ_PORT"`
	User     string `yaml:"user" envconfig:"RABBITMQ_USER"`
	Password string `yaml:"password" envconfig:"RABBITMQ_PASSWORD"`

	// IsSSLEnabled switches the scheme to amqps.
	IsSSLEnabled bool `yaml:"is_ssl_enabled" envconfig:"RABBITMQ_IS_SSL_ENABLED"`

	// UseCert sends a client certificate for mutual TLS.
	UseCert        bool   `yaml:"use_cert" envconfig:"RABBITMQ_USE_CERT"`
	CACertPath     string `yaml:"ca_cert_path" envconfig:"RABBITMQ_CA_CERT_PATH"`
	ClientCertPath string `yaml:"client_cert_path" envconfig:"RABBITMQ_CLIENT_CERT_PATH"`
	ClientKeyPath  string `yaml:"client_key_path" envconfig:"RABBITMQ_CLIENT_KEY_PATH"`
	ServerName     string `yaml:"server_name" envconfig:"RABBITMQ_SERVER_NAME"`

	// DelayToReconnect is the pause between reconnection attempts.
	DelayToReconnect time.Duration `yaml:"delay_to_reconnect" envconfig:"RABBITMQ_DELAY_TO_RECONNECT"`
}

// Exchange is declared durable on connect.
type Exchange struct {
	Name string `yaml:"name" envconfig:"RABBITMQ_EXCHANGE_NAME"`

	// Type is usually "topic", so routing keys act as ingestion topics and
	// binding keys can use wildcards.
	Type string `yaml:"type" envconfig:"RABBITMQ_EXCHANGE_TYPE"`
}

// Queue is declared durable and bound to the exchange once per binding key.
type Queue struct {
	Name          string   `yaml:"name" envconfig:"RABBITMQ_QUEUE_NAME"`
	BindingKeys   []string `yaml:"binding_keys" envconfig:"RABBITMQ_BINDING_KEYS"`
	PrefetchCount int      `yaml:"prefetch_count" envconfig:"RABBITMQ_PREFETCH_COUNT"`
}

func (c Config) withDefaults() Config {
	if c.Exchange.Type == "" {
		c.Exchange.Type = DefaultExchangeType
	}
	if len(c.Queue.BindingKeys) == 0 {
		c.Queue.BindingKeys = []string{DefaultBindingKey}
	}
	if c.Connection.DelayToReconnect == 0 {
		c.Connection.DelayToReconnect = DefaultDelayToReconnect
	}
	return c
}
