package ingest

import (
	"context"
	"sync"
	"time"
)

// Message is one payload delivered by a transport.
type Message struct {
	Topic   string
	Payload []byte

	// Timestamp is in seconds since the Unix epoch.
	Timestamp float64

	// Headers may carry W3C trace context.
	Headers map[string]string

	// Commit acknowledges the message to the transport. It is called once the
	// message was processed, including when it was dropped as malformed.
	Commit func(ctx context.Context) error
}

// Source is a transport delivering messages until ctx is cancelled.
// Implementations add their goroutines to wg and close the returned channel
// when they stop.
type Source interface {
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan Message
}

// Report summarizes what happened to one message.
type Report struct {
	Points      int
	FieldErrors int
	Conflicts   int
	StoreErrors int
}

// Seconds converts t to the float64 Unix seconds used for point timestamps.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
