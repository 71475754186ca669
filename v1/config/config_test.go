package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
transport: kafka
store: postgres
ingest:
  unit: telemetry.proto
  type: sensors.Imu
  confluent_framing: true
kafka:
  brokers: [broker-1:9092, broker-2:9092]
  topics: [sensors.imu]
  group_id: pbseries
  max_wait: 250ms
  sasl:
    enabled: true
    mechanism: SCRAM-SHA-512
rabbit:
  queue:
    binding_keys: ["sensors.#"]
postgres:
  auto_migrate: true
  connection:
    host: db
    port: "5432"
schemas:
  files: [/etc/pbseries/telemetry.proto]
schema_registry:
  url: http://registry:8081
  subjects: [sensors-value]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, TransportKafka, cfg.Transport)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "telemetry.proto", cfg.Ingest.Unit)
	assert.Equal(t, "sensors.Imu", cfg.Ingest.Type)
	assert.True(t, cfg.Ingest.ConfluentFraming)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Kafka.MaxWait)
	assert.Equal(t, "SCRAM-SHA-512", cfg.Kafka.SASL.Mechanism)
	assert.Equal(t, []string{"sensors.#"}, cfg.Rabbit.Queue.BindingKeys)
	assert.True(t, cfg.Postgres.AutoMigrate)
	assert.Equal(t, "db", cfg.Postgres.Connection.Host)
	assert.Equal(t, []string{"/etc/pbseries/telemetry.proto"}, cfg.Schemas.Files)
	assert.Equal(t, []string{"sensors-value"}, cfg.SchemaRegistry.Subjects)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "pbseries", cfg.Logger.ServiceName)
	assert.Equal(t, "pbseries", cfg.Metrics.Namespace)
	assert.Equal(t, "pbseries", cfg.Tracer.ServiceName)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("INGEST_TYPE", "sensors.Gps")
	t.Setenv("KAFKA_TOPICS", "a,b")
	t.Setenv("KAFKA_SASL_USERNAME", "svc")
	t.Setenv("POSTGRES_HOST", "db-2")
	t.Setenv("ZAP_LOGGER_LEVEL", "debug")
	t.Setenv("STORE", "memory")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "sensors.Gps", cfg.Ingest.Type)
	assert.Equal(t, []string{"a", "b"}, cfg.Kafka.Topics)
	assert.Equal(t, "svc", cfg.Kafka.SASL.Username)
	assert.Equal(t, "SCRAM-SHA-512", cfg.Kafka.SASL.Mechanism)
	assert.Equal(t, "db-2", cfg.Postgres.Connection.Host)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	t.Setenv("TRANSPORT", "rabbit")
	t.Setenv("RABBITMQ_QUEUE_NAME", "pbseries")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, TransportRabbit, cfg.Transport)
	assert.Equal(t, "pbseries", cfg.Rabbit.Queue.Name)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "missing transport", content: "store: memory", wantErr: ErrInvalidTransport},
		{name: "unknown store", content: "transport: kafka\nstore: influx", wantErr: ErrInvalidStore},
		{name: "half binding", content: "transport: kafka\ningest:\n  type: M", wantErr: ErrIncompleteBinding},
		{name: "negative depth", content: "transport: kafka\ningest:\n  max_depth: -1", wantErr: ErrInvalidConfig},
		{name: "bad yaml", content: "transport: [", wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
