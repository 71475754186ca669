package series

import "context"

//go:generate mockgen -source=store.go -destination=mock_store.go -package=series

// Store is the external time-series backend the sink appends to.
// seriesKey is the topic-qualified flat key; ts is in seconds.
type Store interface {
	AppendNumeric(ctx context.Context, seriesKey string, ts, value float64) error
	AppendText(ctx context.Context, seriesKey string, ts float64, value string) error
}
