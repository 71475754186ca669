package config

import (
	"fmt"
	"os"

	"github.com/Aleph-Alpha/pbseries/v1/ingest"
	"github.com/Aleph-Alpha/pbseries/v1/kafka"
	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"github.com/Aleph-Alpha/pbseries/v1/minio"
	"github.com/Aleph-Alpha/pbseries/v1/postgres"
	"github.com/Aleph-Alpha/pbseries/v1/rabbit"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/Aleph-Alpha/pbseries/v1/schema_registry"
	"github.com/Aleph-Alpha/pbseries/v1/tracer"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Transport and store selections.
const (
	TransportKafka  = "kafka"
	TransportRabbit = "rabbit"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config is the service configuration, one section per package.
type Config struct {
	Logger  logger.Config  `yaml:"logger"`
	Metrics metrics.Config `yaml:"metrics"`
	Tracer  tracer.Config  `yaml:"tracer"`

	// Ingest holds the message type binding and pipeline tuning.
	Ingest ingest.Config `yaml:"ingest"`

	// Transport selects the consumer: "kafka" or "rabbit".
	Transport string       `yaml:"transport"`
	Kafka     kafka.Config  `yaml:"kafka"`
	Rabbit    rabbit.Config `yaml:"rabbit"`

	// Store selects the series backend: "memory" or "postgres".
	Store    string          `yaml:"store"`
	Postgres postgres.Config `yaml:"postgres"`

	Schemas        schema.Config          `yaml:"schemas"`
	SchemaRegistry schema_registry.Config `yaml:"schema_registry"`
	Minio          minio.Config           `yaml:"minio"`
}

// selection holds the top-level environment overrides.
type selection struct {
	Transport string `envconfig:"TRANSPORT"`
	Store     string `envconfig:"STORE"`
}

// Load reads the YAML file at path, applies environment overrides section by
// section, fills defaults and validates the result. An empty path skips the
// file, so the service can be configured from the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv processes every section with an empty prefix, so the envconfig
// tags are the variable names. Nested structs are processed on their own
// because envconfig would otherwise prefix their keys with the field name.
func (c *Config) applyEnv() error {
	var sel selection
	sections := []interface{}{
		&sel,
		&c.Logger,
		&c.Metrics,
		&c.Tracer,
		&c.Ingest,
		&c.Kafka,
		&c.Kafka.TLS,
		&c.Kafka.SASL,
		&c.Rabbit.Connection,
		&c.Rabbit.Exchange,
		&c.Rabbit.Queue,
		&c.Postgres,
		&c.Postgres.Connection,
		&c.Postgres.ConnectionDetails,
		&c.Schemas,
		&c.SchemaRegistry,
		&c.Minio,
		&c.Minio.Connection,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return err
		}
	}

	if sel.Transport != "" {
		c.Transport = sel.Transport
	}
	if sel.Store != "" {
		c.Store = sel.Store
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = logger.Info
	}
	if c.Logger.ServiceName == "" {
		c.Logger.ServiceName = logger.DefaultServiceName
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "pbseries"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Logger.ServiceName
	}
	if c.Tracer.ServiceName == "" {
		c.Tracer.ServiceName = c.Logger.ServiceName
	}
	if c.Store == "" {
		c.Store = StoreMemory
	}
}

// Validate checks the selections and the binding.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportKafka, TransportRabbit:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransport, c.Transport)
	}

	switch c.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store)
	}

	if (c.Ingest.Unit == "") != (c.Ingest.Type == "") {
		return ErrIncompleteBinding
	}
	if c.Ingest.MaxDepth < 0 || c.Ingest.QueueSize < 0 {
		return fmt.Errorf("%w: max_depth and queue_size must not be negative", ErrInvalidConfig)
	}
	return nil
}
