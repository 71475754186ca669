package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the read side of a bucket that schema sources are loaded from.
type ObjectStore interface {
	// ListKeys returns the object keys below prefix, recursively.
	ListKeys(ctx context.Context, prefix string) ([]string, error)

	// ReadObject returns the content of one object.
	ReadObject(ctx context.Context, key string) ([]byte, error)
}

// MinioClient reads schema sources from a single bucket.
type MinioClient struct {
	// client is kept in an atomic pointer so it can be swapped without racing
	// with concurrent reads.
	client atomic.Pointer[minio.Client]

	cfg Config
}

// NewClient connects to MinIO and verifies that the configured bucket exists.
//
// Example:
//
//	store, err := minio.NewClient(minio.Config{
//		Connection: minio.ConnectionConfig{
//			Endpoint:        "localhost:9000",
//			AccessKeyID:     "minioadmin",
//			SecretAccessKey: "minioadmin",
//			BucketName:      "schemas",
//		},
//	})
func NewClient(cfg Config) (*MinioClient, error) {
	client, err := connectToMinio(cfg)
	if err != nil {
		return nil, err
	}

	m := &MinioClient{cfg: cfg}
	m.client.Store(client)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := m.validateConnection(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// connectToMinio creates a new standard MinIO client.
func connectToMinio(cfg Config) (*minio.Client, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if cfg.Connection.BucketName == "" {
		return nil, ErrMissingBucket
	}

	client, err := minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return client, nil
}

// validateConnection checks the bucket with a bucket-scoped call, so the
// credentials do not need ListAllMyBuckets.
func (m *MinioClient) validateConnection(ctx context.Context) error {
	bucket := m.cfg.Connection.BucketName
	exists, err := m.client.Load().BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, TranslateError(err))
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}
	return nil
}

// ListKeys lists the objects below prefix.
func (m *MinioClient) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range m.client.Load().ListObjects(ctx, m.cfg.Connection.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %q: %w", prefix, TranslateError(obj.Err))
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// ReadObject downloads one object. Objects larger than MaxSchemaSize are
// rejected with ErrObjectTooLarge.
func (m *MinioClient) ReadObject(ctx context.Context, key string) ([]byte, error) {
	reader, err := m.client.Load().GetObject(ctx, m.cfg.Connection.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", key, TranslateError(err))
	}
	defer reader.Close()

	info, err := reader.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get object stats for %q: %w", key, TranslateError(err))
	}
	if info.Size > MaxSchemaSize {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrObjectTooLarge, key, info.Size)
	}

	data := make([]byte, info.Size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", key, err)
	}
	return data, nil
}

var _ ObjectStore = (*MinioClient)(nil)
