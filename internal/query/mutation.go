package query

import (
	"context"
	"sync"
)

// Invalidation names the cache keys a mutation affects: a resource plus
// optional params (none = the whole resource prefix).
type Invalidation struct {
	Resource string
	Params   []string
}

// Invalidates is a convenience constructor for a single invalidation.
func Invalidates(resource string, params ...string) Invalidation {
	return Invalidation{Resource: resource, Params: params}
}

// Mutation sequences a single write and its cache consequences: it tracks
// pending/data/error state, and on success invalidates the declared keys so
// dependent queries refetch. On failure the cache is left untouched, so the
// last known good list data stays as it was, and the error (carrying the
// server's detail) is handed back for the caller to render. Concurrent
// mutations are not coalesced or locked; the server observes last write
// wins.
type Mutation[T any] struct {
	cache       *Cache
	invalidates []Invalidation

	mu      sync.Mutex
	pending bool
	err     error
	data    T
	hasData bool
}

// NewMutation creates a mutation runner that invalidates the given keys
// after each successful run.
func NewMutation[T any](cache *Cache, invalidates ...Invalidation) *Mutation[T] {
	return &Mutation[T]{cache: cache, invalidates: invalidates}
}

// Run executes the gateway call and applies the declared invalidations on
// success.
func (m *Mutation[T]) Run(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	m.mu.Lock()
	m.pending = true
	m.err = nil
	m.mu.Unlock()

	data, err := fn(ctx)

	m.mu.Lock()
	m.pending = false
	m.err = err
	if err == nil {
		m.data = data
		m.hasData = true
	}
	m.mu.Unlock()

	if err != nil {
		var zero T
		return zero, err
	}
	for _, inv := range m.invalidates {
		m.cache.Invalidate(inv.Resource, inv.Params...)
	}
	return data, nil
}

// Pending reports whether a run is in flight.
func (m *Mutation[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Err returns the last run's error, nil after a success.
func (m *Mutation[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Data returns the last successful result and whether one exists.
func (m *Mutation[T]) Data() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.hasData
}
