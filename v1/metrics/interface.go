package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector abstracts the ingestion instruments.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	// IncrementMessages counts one received message with its outcome.
	IncrementMessages(topic, status string)

	// AddPoints counts appended points of one value kind.
	AddPoints(topic, kind string, n int)

	// IncrementFieldErrors counts one skipped field.
	IncrementFieldErrors(topic, reason string)

	// IncrementConflicts counts one point dropped by a series kind conflict.
	IncrementConflicts(topic string)

	// RecordProcessDuration observes the time since start for one message.
	RecordProcessDuration(start time.Time, topic string)

	// SetSeriesHandles publishes the number of live series handles.
	SetSeriesHandles(n int)

	// IncrementSchemaLoads counts one schema load attempt.
	IncrementSchemaLoads(status string)

	// Dynamic metric factories

	CreateCounter(name, help string, labels []string) *prometheus.CounterVec
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}

var _ MetricsCollector = (*Metrics)(nil)
