package flatten

import (
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/pbseries/v1/schema"
)

var (
	// ErrUnsupportedFieldKind marks a field the engine has no rule for.
	ErrUnsupportedFieldKind = errors.New("unsupported field kind")

	// ErrUndefinedEnumValue marks an enum field holding a number with no declared name.
	ErrUndefinedEnumValue = errors.New("undefined enum value")

	// ErrMaxDepthExceeded aborts a whole message nested deeper than the configured limit.
	ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// FieldError reports one field that was skipped. Field errors never abort
// the message; they are returned alongside the points that were produced.
type FieldError struct {
	Key  string
	Kind schema.FieldKind
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q (%s): %v", e.Key, e.Kind, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
