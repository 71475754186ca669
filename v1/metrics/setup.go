package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values for messages_total and schema_loads_total.
const (
	StatusOK           = "ok"
	StatusDecodeError  = "decode_error"
	StatusFlattenError = "flatten_error"
	StatusNotBound     = "not_bound"
	StatusPanic        = "panic"
	StatusError        = "error"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing the ingestion metrics.
//
// All recording methods are safe to call on a nil *Metrics, so components
// can run without metrics wired in.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	messagesTotal    *prometheus.CounterVec
	pointsTotal      *prometheus.CounterVec
	fieldErrorsTotal *prometheus.CounterVec
	conflictsTotal   *prometheus.CounterVec
	processDuration  *prometheus.HistogramVec
	seriesHandles    prometheus.Gauge
	schemaLoadsTotal *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, wraps all metrics with a
// constant `service` label, registers the ingestion instruments and creates
// an HTTP server exposing the /metrics endpoint.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    Namespace:   "pbseries",
//	    ServiceName: "pbseries",
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrappedRegistry,
		namespace:  cfg.Namespace,
	}

	m.messagesTotal = createCounterVec(cfg.Namespace, "messages_total", "Messages received per topic and outcome", []string{"topic", "status"})
	m.pointsTotal = createCounterVec(cfg.Namespace, "points_total", "Points appended per topic and value kind", []string{"topic", "kind"})
	m.fieldErrorsTotal = createCounterVec(cfg.Namespace, "field_errors_total", "Fields skipped while flattening", []string{"topic", "reason"})
	m.conflictsTotal = createCounterVec(cfg.Namespace, "series_conflicts_total", "Points dropped because of a series kind conflict", []string{"topic"})
	m.processDuration = createHistogramVec(cfg.Namespace, "process_duration_seconds", "Time to decode, flatten and append one message", []string{"topic"}, prometheus.ExponentialBuckets(0.00005, 4, 10))
	m.schemaLoadsTotal = createCounterVec(cfg.Namespace, "schema_loads_total", "Schema load attempts by outcome", []string{"status"})
	m.seriesHandles = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: cfg.Namespace,
		Name:      "series_handles",
		Help:      "Series handles currently held by the sink",
	})

	wrappedRegistry.MustRegister(
		m.messagesTotal,
		m.pointsTotal,
		m.fieldErrorsTotal,
		m.conflictsTotal,
		m.processDuration,
		m.schemaLoadsTotal,
		m.seriesHandles,
	)

	// GoCollector: memory, goroutines, GC. ProcessCollector: CPU, fds.
	// BuildInfoCollector: binary version.
	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	address := cfg.Address
	if address == "" {
		address = DefaultMetricsAddress
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.Server = &http.Server{
		Addr:    address,
		Handler: mux,
	}
	return m
}
