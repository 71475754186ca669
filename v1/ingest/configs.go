package ingest

// Config selects the message type incoming payloads are decoded as, and
// tunes the per-topic pipelines.
type Config struct {
	// Unit is the logical name of the loaded schema holding the type.
	// An empty Unit leaves the session unbound until Bind is called.
	Unit string `yaml:"unit" envconfig:"INGEST_UNIT"`

	// Type is the message name, fully qualified or relative to the unit's package.
	Type string `yaml:"type" envconfig:"INGEST_TYPE"`

	// ConfluentFraming strips the Confluent Schema Registry header from every payload.
	ConfluentFraming bool `yaml:"confluent_framing" envconfig:"INGEST_CONFLUENT_FRAMING"`

	// MaxDepth bounds message nesting; 0 uses flatten.DefaultMaxDepth.
	MaxDepth int `yaml:"max_depth" envconfig:"INGEST_MAX_DEPTH"`

	// QueueSize is the buffer of each per-topic worker in Run.
	QueueSize int `yaml:"queue_size" envconfig:"INGEST_QUEUE_SIZE"`
}

const DefaultQueueSize = 64
