package ingest

import "errors"

var (
	// ErrNotBound is returned when a message arrives before a type is bound.
	ErrNotBound = errors.New("no message type bound")

	// ErrSessionClosed is returned for messages after Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrPanic wraps a panic recovered while decoding or flattening a
	// payload. The message is dropped like a malformed one.
	ErrPanic = errors.New("panic while processing message")
)
