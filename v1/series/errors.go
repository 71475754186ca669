package series

import (
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/pbseries/v1/flatten"
)

// ErrSeriesTypeConflict is returned when a point's kind differs from the kind
// its series was created with. The point is dropped; the series is unchanged.
var ErrSeriesTypeConflict = errors.New("series type conflict")

// ConflictError carries the series and both kinds of a rejected point.
type ConflictError struct {
	Topic string
	Key   string
	Have  flatten.ValueKind
	Got   flatten.ValueKind
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: series %q on topic %q is %s, got %s", ErrSeriesTypeConflict, e.Key, e.Topic, e.Have, e.Got)
}

func (e *ConflictError) Unwrap() error { return ErrSeriesTypeConflict }
