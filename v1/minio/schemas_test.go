package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBucket struct {
	objects map[string]string
	listErr error
}

func (b *memoryBucket) ListKeys(_ context.Context, prefix string) ([]string, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	var keys []string
	for k := range b.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (b *memoryBucket) ReadObject(_ context.Context, key string) ([]byte, error) {
	v, ok := b.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return []byte(v), nil
}

func TestLoadSchemas(t *testing.T) {
	bucket := &memoryBucket{objects: map[string]string{
		"schemas/sensors/imu.proto": `syntax = "proto3"; package sensors; import "common.proto"; message Imu { common.Header header = 1; double ax = 2; }`,
		"schemas/common.proto":      `syntax = "proto3"; package common; message Header { uint64 seq = 1; }`,
		"schemas/README.md":         "not a schema",
		"other/ignored.proto":       `syntax = "proto3"; message Ignored {}`,
	}}
	reg := schema.NewRegistry()

	units, err := LoadSchemas(context.Background(), bucket, "schemas/", reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"common.proto", "sensors/imu.proto"}, units)
	assert.Equal(t, []string{"common.proto", "sensors/imu.proto"}, reg.Units())

	td, err := reg.ResolveType("sensors/imu.proto", "Imu")
	require.NoError(t, err)
	assert.Equal(t, "sensors.Imu", td.FullName())
}

func TestLoadSchemas_Empty(t *testing.T) {
	reg := schema.NewRegistry()
	units, err := LoadSchemas(context.Background(), &memoryBucket{objects: map[string]string{}}, "", reg)
	require.NoError(t, err)
	assert.Empty(t, units)
	assert.Empty(t, reg.Units())
}

func TestLoadSchemas_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadSchemas(ctx, &memoryBucket{listErr: ErrAccessDenied}, "", schema.NewRegistry())
	assert.ErrorIs(t, err, ErrAccessDenied)

	bad := &memoryBucket{objects: map[string]string{"bad.proto": "message {"}}
	_, err = LoadSchemas(ctx, bad, "", schema.NewRegistry())
	assert.ErrorIs(t, err, schema.ErrSchemaParse)
}

func TestLogicalName(t *testing.T) {
	assert.Equal(t, "a/b.proto", logicalName("schemas", "schemas/a/b.proto"))
	assert.Equal(t, "a/b.proto", logicalName("schemas/", "schemas/a/b.proto"))
	assert.Equal(t, "x.proto", logicalName("", "x.proto"))
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, TranslateError(nil))
	assert.Equal(t, ErrBucketNotFound, TranslateError(minio.ErrorResponse{Code: "NoSuchBucket"}))
	assert.Equal(t, ErrObjectNotFound, TranslateError(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.Equal(t, ErrAccessDenied, TranslateError(minio.ErrorResponse{Code: "AccessDenied"}))

	other := errors.New("boom")
	assert.Equal(t, other, TranslateError(other))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = NewClient(Config{Connection: ConnectionConfig{Endpoint: "localhost:9000"}})
	assert.ErrorIs(t, err, ErrMissingBucket)
}
