package series

import (
	"context"
	"sort"
	"sync"
)

// Sample is one stored point.
type Sample struct {
	Timestamp float64
	Number    float64
	Text      string
}

// MemoryStore keeps every series in memory. It backs the "memory" store
// setting and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	numeric map[string][]Sample
	text    map[string][]Sample
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		numeric: make(map[string][]Sample),
		text:    make(map[string][]Sample),
	}
}

func (m *MemoryStore) AppendNumeric(_ context.Context, seriesKey string, ts, value float64) error {
	m.mu.Lock()
	m.numeric[seriesKey] = append(m.numeric[seriesKey], Sample{Timestamp: ts, Number: value})
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) AppendText(_ context.Context, seriesKey string, ts float64, value string) error {
	m.mu.Lock()
	m.text[seriesKey] = append(m.text[seriesKey], Sample{Timestamp: ts, Text: value})
	m.mu.Unlock()
	return nil
}

// Numeric returns a copy of the numeric series stored under seriesKey.
func (m *MemoryStore) Numeric(seriesKey string) []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Sample(nil), m.numeric[seriesKey]...)
}

// Text returns a copy of the text series stored under seriesKey.
func (m *MemoryStore) Text(seriesKey string) []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Sample(nil), m.text[seriesKey]...)
}

// Keys returns every series key with at least one sample, sorted.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.numeric)+len(m.text))
	for k := range m.numeric {
		keys = append(keys, k)
	}
	for k := range m.text {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

var _ Store = (*MemoryStore)(nil)
