package schema_registry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrame is returned for payloads without a valid Confluent header.
	ErrInvalidFrame = errors.New("invalid confluent frame")

	// ErrNotProtobuf is returned when a subject holds an Avro or JSON schema.
	ErrNotProtobuf = errors.New("schema is not protobuf")

	// ErrReferenceCycle is returned when schema references form a cycle.
	ErrReferenceCycle = errors.New("schema reference cycle")
)

// StatusError is returned when the registry answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("schema registry returned status %d: %s", e.Code, e.Body)
}
