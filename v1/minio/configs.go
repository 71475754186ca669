package minio

import "time"

const (
	// DefaultSuffix selects the objects LoadSchemas compiles.
	DefaultSuffix = ".proto"

	// MaxSchemaSize bounds a single schema object.
	MaxSchemaSize int64 = 4 * 1024 * 1024

	connectTimeout = 30 * time.Second
)

// Config defines where schema sources are kept in object storage.
type Config struct {
	Connection ConnectionConfig `yaml:"connection"`

	// Prefix limits LoadSchemas to keys below it, e.g. "schemas/".
	Prefix string `yaml:"prefix" envconfig:"MINIO_PREFIX"`
}

// ConnectionConfig contains MinIO server connection details.
type ConnectionConfig struct {
	Endpoint        string `yaml:"endpoint" envconfig:"MINIO_ENDPOINT"` // e.g. "localhost:9000"
	AccessKeyID     string `yaml:"access_key_id" envconfig:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"MINIO_SECRET_ACCESS_KEY"`
	UseSSL          bool   `yaml:"use_ssl" envconfig:"MINIO_USE_SSL"`
	BucketName      string `yaml:"bucket_name" envconfig:"MINIO_BUCKET_NAME"`
	Region          string `yaml:"region" envconfig:"MINIO_REGION"`
}
