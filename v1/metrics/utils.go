package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementMessages counts one received message.
// Example: m.IncrementMessages("sensors/imu", metrics.StatusOK)
func (m *Metrics) IncrementMessages(topic, status string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(topic, status).Inc()
}

// AddPoints counts n appended points of kind "numeric" or "text".
func (m *Metrics) AddPoints(topic, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.pointsTotal.WithLabelValues(topic, kind).Add(float64(n))
}

// IncrementFieldErrors counts one skipped field.
func (m *Metrics) IncrementFieldErrors(topic, reason string) {
	if m == nil {
		return
	}
	m.fieldErrorsTotal.WithLabelValues(topic, reason).Inc()
}

// IncrementConflicts counts one point dropped by a series kind conflict.
func (m *Metrics) IncrementConflicts(topic string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(topic).Inc()
}

// RecordProcessDuration observes the time spent on one message.
// Example: defer m.RecordProcessDuration(time.Now(), topic)
func (m *Metrics) RecordProcessDuration(start time.Time, topic string) {
	if m == nil {
		return
	}
	m.processDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
}

// SetSeriesHandles publishes the number of live series handles.
func (m *Metrics) SetSeriesHandles(n int) {
	if m == nil {
		return
	}
	m.seriesHandles.Set(float64(n))
}

// IncrementSchemaLoads counts one schema load attempt.
func (m *Metrics) IncrementSchemaLoads(status string) {
	if m == nil {
		return
	}
	m.schemaLoadsTotal.WithLabelValues(status).Inc()
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
