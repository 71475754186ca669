// Package series adapts flattened points to an append-only time-series store.
//
// A Sink owns one handle per (topic, key) pair. The handle is created by the
// first point observed for the pair and keeps that point's kind, numeric or
// text, for as long as the sink lives. Points of the other kind are rejected
// with a *ConflictError rather than migrating the series.
//
// Store is the backend contract. MemoryStore keeps samples in process;
// the postgres package provides a durable implementation.
package series
