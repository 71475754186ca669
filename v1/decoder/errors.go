package decoder

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned for any payload that cannot be decoded into the
	// bound type. No partially decoded message is ever returned with it.
	ErrDecode = errors.New("decode failed")

	// ErrFrameMismatch is returned when a Confluent frame names a different
	// message than the one the decoder is bound to. It matches ErrDecode.
	ErrFrameMismatch = fmt.Errorf("frame selects another message type: %w", ErrDecode)
)
