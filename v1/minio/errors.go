package minio

import (
	"errors"

	"github.com/minio/minio-go/v7"
)

var (
	ErrConnectionFailed = errors.New("connection failed")
	ErrBucketNotFound   = errors.New("bucket not found")
	ErrObjectNotFound   = errors.New("object not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrObjectTooLarge   = errors.New("object too large")
	ErrMissingEndpoint  = errors.New("minio endpoint cannot be empty")
	ErrMissingBucket    = errors.New("bucket name is empty")
)

// TranslateError maps S3 error codes returned by minio-go onto the package
// errors. Errors without a recognized code are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return ErrBucketNotFound
	case "NoSuchKey", "NoSuchObject":
		return ErrObjectNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return ErrAccessDenied
	case "EntityTooLarge":
		return ErrObjectTooLarge
	default:
		return err
	}
}
