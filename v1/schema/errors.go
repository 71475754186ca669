package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaParse is returned when a schema source cannot be parsed or
	// built into descriptors. The load is rejected as a whole.
	ErrSchemaParse = errors.New("schema parse failed")

	// ErrUnknownType is returned when a type name cannot be resolved.
	ErrUnknownType = errors.New("unknown message type")

	// ErrUnknownUnit is returned when a unit name has not been loaded.
	// It matches ErrUnknownType as well.
	ErrUnknownUnit = fmt.Errorf("unknown schema unit: %w", ErrUnknownType)

	// ErrMissingImport is returned when a source imports a file that is
	// neither a loaded unit nor a well-known type. It matches ErrSchemaParse.
	ErrMissingImport = fmt.Errorf("unresolved import: %w", ErrSchemaParse)
)
