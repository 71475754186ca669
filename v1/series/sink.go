package series

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Aleph-Alpha/pbseries/v1/flatten"
)

// SeriesKey is the name a (topic, key) pair is stored under in the backend.
func SeriesKey(topic, key string) string {
	return flatten.JoinKey(topic, key)
}

type handleID struct {
	topic string
	key   string
}

// handle is one series. Its kind is fixed when it is created and appends to
// it are serialized so a series keeps arrival order.
type handle struct {
	mu        sync.Mutex
	seriesKey string
	kind      flatten.ValueKind
	count     int64
}

// HandleInfo is a snapshot of one series handle.
type HandleInfo struct {
	Topic     string
	Key       string
	SeriesKey string
	Kind      flatten.ValueKind
	Count     int64
}

// Sink maps (topic, key) pairs to series handles, created lazily on first
// use, and forwards points to a Store. Appends to different series run in
// parallel; appends to one series are serialized.
type Sink struct {
	store Store

	mu      sync.RWMutex
	handles map[handleID]*handle
}

// NewSink returns a Sink writing to store.
func NewSink(store Store) *Sink {
	return &Sink{
		store:   store,
		handles: make(map[handleID]*handle),
	}
}

// Append writes one point. The first point of a (topic, key) pair fixes the
// series kind; a later point of another kind fails with a *ConflictError.
func (s *Sink) Append(ctx context.Context, topic, key string, ts float64, v flatten.Value) error {
	h := s.handleFor(topic, key, v.Kind())
	if h.kind != v.Kind() {
		return &ConflictError{Topic: topic, Key: key, Have: h.kind, Got: v.Kind()}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	switch v.Kind() {
	case flatten.ValueNumeric:
		err = s.store.AppendNumeric(ctx, h.seriesKey, ts, v.Number())
	case flatten.ValueText:
		err = s.store.AppendText(ctx, h.seriesKey, ts, v.Text())
	}
	if err != nil {
		return fmt.Errorf("failed to append to series %q: %w", h.seriesKey, err)
	}
	h.count++
	return nil
}

func (s *Sink) handleFor(topic, key string, kind flatten.ValueKind) *handle {
	id := handleID{topic: topic, key: key}

	s.mu.RLock()
	h, ok := s.handles[id]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[id]; ok {
		return h
	}
	h = &handle{seriesKey: SeriesKey(topic, key), kind: kind}
	s.handles[id] = h
	return h
}

// Len returns the number of series handles.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handles)
}

// Handle returns a snapshot of the handle for (topic, key).
func (s *Sink) Handle(topic, key string) (HandleInfo, bool) {
	s.mu.RLock()
	h, ok := s.handles[handleID{topic: topic, key: key}]
	s.mu.RUnlock()
	if !ok {
		return HandleInfo{}, false
	}
	return h.info(topic, key), true
}

// Handles returns snapshots of all handles, sorted by topic then key.
func (s *Sink) Handles() []HandleInfo {
	s.mu.RLock()
	out := make([]HandleInfo, 0, len(s.handles))
	for id, h := range s.handles {
		out = append(out, h.info(id.topic, id.key))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Topic != out[j].Topic {
			return out[i].Topic < out[j].Topic
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Reset drops every handle. The next point for any pair creates a new
// handle, which may have a different kind than before.
func (s *Sink) Reset() {
	s.mu.Lock()
	s.handles = make(map[handleID]*handle)
	s.mu.Unlock()
}

func (h *handle) info(topic, key string) HandleInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HandleInfo{
		Topic:     topic,
		Key:       key,
		SeriesKey: h.seriesKey,
		Kind:      h.kind,
		Count:     h.count,
	}
}
