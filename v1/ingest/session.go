package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Aleph-Alpha/pbseries/v1/decoder"
	"github.com/Aleph-Alpha/pbseries/v1/flatten"
	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"github.com/Aleph-Alpha/pbseries/v1/metrics"
	"github.com/Aleph-Alpha/pbseries/v1/schema"
	"github.com/Aleph-Alpha/pbseries/v1/series"
	"github.com/Aleph-Alpha/pbseries/v1/tracer"
)

// Session is one active subscription: the bound message type, the per-topic
// pipelines and the sink they append to. Pipelines are created lazily on the
// first message of a topic and torn down together by Bind, Reset and Close.
type Session struct {
	cfg      Config
	registry *schema.Registry
	sink     *series.Sink
	logger   logger.Interface
	metrics  *metrics.Metrics
	tracer   *tracer.Tracer

	mu        sync.RWMutex
	bound     *schema.TypeDescriptor
	pipelines map[string]*pipeline
	closed    bool
}

// NewSession returns an unbound session. m and t may be nil.
func NewSession(cfg Config, registry *schema.Registry, sink *series.Sink, log logger.Interface, m *metrics.Metrics, t *tracer.Tracer) *Session {
	return &Session{
		cfg:       cfg,
		registry:  registry,
		sink:      sink,
		logger:    log,
		metrics:   m,
		tracer:    t,
		pipelines: make(map[string]*pipeline),
	}
}

// Bind selects the message type for all subsequent messages. Existing
// pipelines are dropped and rebuilt for the new type on their next message.
// Series handles are kept: a series whose kind differs under the new type
// reports conflicts until Reset.
//
// A type that cannot be resolved leaves the current binding in place.
func (s *Session) Bind(unitName, typeName string) error {
	td, err := s.registry.ResolveType(unitName, typeName)
	if err != nil {
		return fmt.Errorf("failed to bind %s/%s: %w", unitName, typeName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.bound = td
	s.pipelines = make(map[string]*pipeline)

	s.logger.Info("Message type bound", nil, map[string]interface{}{
		"unit": unitName,
		"type": td.FullName(),
	})
	return nil
}

// Bound returns the bound type, or nil.
func (s *Session) Bound() *schema.TypeDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bound
}

// Topics returns the topics with a live pipeline, sorted.
func (s *Session) Topics() []string {
	s.mu.RLock()
	topics := make([]string, 0, len(s.pipelines))
	for topic := range s.pipelines {
		topics = append(topics, topic)
	}
	s.mu.RUnlock()
	sort.Strings(topics)
	return topics
}

// Reset drops every pipeline and every series handle.
func (s *Session) Reset() {
	s.mu.Lock()
	s.pipelines = make(map[string]*pipeline)
	s.mu.Unlock()
	s.sink.Reset()
	s.metrics.SetSeriesHandles(0)
}

// Close tears the session down. Later messages fail with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pipelines = make(map[string]*pipeline)
	return nil
}

// OnMessage decodes payload with the bound type, flattens it and appends the
// points under topic. Messages of one topic are processed one at a time.
//
// A non-nil error means the message was dropped before anything reached the
// sink: the session is unbound or closed, the payload was malformed, or
// processing panicked. Per-field and per-point problems are counted in the
// Report and do not fail the message.
func (s *Session) OnMessage(ctx context.Context, topic string, payload []byte, ts float64) (Report, error) {
	return s.onMessage(ctx, Message{Topic: topic, Payload: payload, Timestamp: ts})
}

func (s *Session) onMessage(ctx context.Context, msg Message) (Report, error) {
	start := time.Now()
	defer s.metrics.RecordProcessDuration(start, msg.Topic)

	p, err := s.pipelineFor(msg.Topic)
	if err != nil {
		s.metrics.IncrementMessages(msg.Topic, metrics.StatusNotBound)
		return Report{}, err
	}

	ctx = s.tracer.SetCarrierOnContext(ctx, msg.Headers)
	ctx, span := s.tracer.StartSpan(ctx, "ingest.message")
	defer span.End()

	report, err := p.process(ctx, msg.Payload, msg.Timestamp)
	s.tracer.SetAttributes(span, map[string]interface{}{
		"messaging.destination": msg.Topic,
		"payload.size":          len(msg.Payload),
		"points":                report.Points,
		"message.type":          p.decoder.Type().FullName(),
	})

	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		s.metrics.IncrementMessages(msg.Topic, statusOf(err))
		s.logger.WarnWithContext(ctx, "Dropping message", err, map[string]interface{}{
			"topic": msg.Topic,
			"size":  len(msg.Payload),
		})
		return report, err
	}

	s.metrics.IncrementMessages(msg.Topic, metrics.StatusOK)
	s.metrics.SetSeriesHandles(s.sink.Len())
	return report, nil
}

func (s *Session) pipelineFor(topic string) (*pipeline, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrSessionClosed
	}
	p, ok := s.pipelines[topic]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if p, ok := s.pipelines[topic]; ok {
		return p, nil
	}
	if s.bound == nil {
		return nil, ErrNotBound
	}

	p = s.newPipeline(topic, s.bound)
	s.pipelines[topic] = p
	s.logger.Debug("Pipeline created", nil, map[string]interface{}{
		"topic": topic,
		"type":  s.bound.FullName(),
	})
	return p, nil
}

func (s *Session) newPipeline(topic string, td *schema.TypeDescriptor) *pipeline {
	var opts []decoder.Option
	if s.cfg.ConfluentFraming {
		opts = append(opts, decoder.WithConfluentFraming())
	}
	return &pipeline{
		topic:     topic,
		decoder:   decoder.New(td, opts...),
		flattener: flatten.New(flatten.WithMaxDepth(s.cfg.MaxDepth)),
		sink:      s.sink,
		logger:    s.logger,
		metrics:   s.metrics,
	}
}

func statusOf(err error) string {
	switch {
	case errors.Is(err, ErrPanic):
		return metrics.StatusPanic
	case errors.Is(err, decoder.ErrDecode):
		return metrics.StatusDecodeError
	default:
		return metrics.StatusFlattenError
	}
}
