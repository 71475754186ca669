// Package minio loads protobuf schema sources from MinIO or any other
// S3-compatible object storage.
//
// Every object with a ".proto" suffix below the configured prefix is read and
// loaded into the schema registry as one batch, so objects may import each
// other by their key relative to the prefix:
//
//	schemas/common.proto
//	schemas/sensors/imu.proto   // import "common.proto";
//
// Basic Usage:
//
//	store, err := minio.NewClient(cfg)
//	if err != nil {
//		return err
//	}
//	units, err := minio.LoadSchemas(ctx, store, "schemas/", registry)
//
// ObjectStore is the two-method view LoadSchemas needs; tests and other
// backends can implement it without a MinIO server.
package minio
