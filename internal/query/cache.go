// Package query implements the client-side read cache and mutation runner:
// one cache entry per (resource, parameter) key, request de-duplication,
// stale-while-revalidate reads, dependent queries that stay idle until their
// input is known, and invalidation-driven refetch after writes. The server
// stays the single source of truth; the cache only converges the local view.
package query

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Key identifies one cached collection or record: a resource name plus an
// optional scoping parameter, e.g. {"tasks", projectID}. Two requests with
// equal keys share one entry and one in-flight fetch.
type Key struct {
	Resource string
	Param    string
}

func (k Key) String() string {
	if k.Param == "" {
		return k.Resource
	}
	return k.Resource + "/" + k.Param
}

// Status describes the lifecycle of a cache entry.
type Status int

const (
	// StatusIdle: never fetched, or a dependent query whose input is not
	// available yet.
	StatusIdle Status = iota
	// StatusLoading: first fetch in flight, no data yet.
	StatusLoading
	// StatusSuccess: data present (possibly stale, possibly with a
	// background-refetch error attached).
	StatusSuccess
	// StatusError: a fetch failed and there is no earlier data to fall back
	// on.
	StatusError
)

// Snapshot is the observable state of one entry at one point in time.
// Err may be non-nil alongside Data: a failed background refetch attaches
// its error without clearing the last good data.
type Snapshot struct {
	Data      any
	Err       error
	Status    Status
	Stale     bool
	FetchedAt time.Time
}

// FetchFunc loads the value for a key from the remote API.
type FetchFunc func(ctx context.Context) (any, error)

type flight struct {
	done chan struct{}
	data any
	err  error
}

type entry struct {
	data      any
	hasData   bool
	err       error
	fetchedAt time.Time
	stale     bool
	// gen is bumped by Invalidate. A fetch that completes after its entry's
	// generation has moved on is superseded: its result is discarded rather
	// than stored (waiters still receive it directly).
	gen    uint64
	flight *flight
	// fetch is the last fetcher used for this key; invalidation re-runs it
	// in the background so observers converge without an explicit re-read.
	fetch FetchFunc
}

func (e *entry) snapshot() Snapshot {
	snap := Snapshot{
		Data:      e.data,
		Err:       e.err,
		Stale:     e.stale,
		FetchedAt: e.fetchedAt,
	}
	switch {
	case e.hasData:
		snap.Status = StatusSuccess
	case e.err != nil:
		snap.Status = StatusError
	case e.flight != nil:
		snap.Status = StatusLoading
	default:
		snap.Status = StatusIdle
	}
	return snap
}

// Cache is the process-wide query cache. All entry state is guarded by one
// mutex; an entry is never left partially updated across a fetch.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	wg      sync.WaitGroup
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

func (c *Cache) entry(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Fetch returns the best known value for key. Fresh cached data is returned
// as-is; stale data is returned immediately while a background refetch
// revalidates it; with no data at all the call blocks on the (possibly
// shared) in-flight fetch. Concurrent calls for the same key issue exactly
// one network request.
func (c *Cache) Fetch(ctx context.Context, key Key, fn FetchFunc) Snapshot {
	c.mu.Lock()
	e := c.entry(key)
	e.fetch = fn

	if e.hasData && !e.stale {
		snap := e.snapshot()
		c.mu.Unlock()
		return snap
	}

	if e.hasData {
		// Stale-while-revalidate: serve the stale value now, refresh behind
		// the caller's back.
		if e.flight == nil {
			c.startFetch(ctx, key, e, fn)
		}
		snap := e.snapshot()
		c.mu.Unlock()
		return snap
	}

	if e.flight == nil {
		c.startFetch(ctx, key, e, fn)
	}
	f := e.flight
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return Snapshot{Status: StatusError, Err: ctx.Err()}
	case <-f.done:
	}

	if f.err != nil {
		c.mu.Lock()
		snap := e.snapshot()
		c.mu.Unlock()
		if !snap.Stale && snap.Status == StatusSuccess {
			return snap
		}
		return Snapshot{Status: StatusError, Err: f.err}
	}
	return Snapshot{Status: StatusSuccess, Data: f.data, FetchedAt: time.Now()}
}

// FetchDependent is Fetch for a query whose key depends on a parent input
// (e.g. tasks of the selected project). While the parent id is empty it
// reports idle: no network call, no error.
func (c *Cache) FetchDependent(ctx context.Context, resource, parentID string, fn FetchFunc) Snapshot {
	if parentID == "" {
		return Snapshot{Status: StatusIdle}
	}
	return c.Fetch(ctx, Key{Resource: resource, Param: parentID}, fn)
}

// startFetch launches the single in-flight fetch for e. Caller holds c.mu.
func (c *Cache) startFetch(ctx context.Context, key Key, e *entry, fn FetchFunc) {
	f := &flight{done: make(chan struct{})}
	e.flight = f
	gen := e.gen

	// The flight may outlive the caller that started it (other callers can
	// attach to it), so it must not die with the caller's context.
	fetchCtx := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		data, err := fn(fetchCtx)

		c.mu.Lock()
		defer c.mu.Unlock()

		f.data, f.err = data, err
		close(f.done)
		if e.flight == f {
			e.flight = nil
		}

		if e.gen != gen {
			// Superseded: the entry was invalidated while this response was
			// in flight. Discard it and run the refetch the invalidation
			// asked for.
			if e.flight == nil && e.fetch != nil {
				c.startFetch(fetchCtx, key, e, e.fetch)
			}
			return
		}

		if err != nil {
			// Keep the last good data; the error rides along on the entry.
			e.err = err
			return
		}
		e.data = data
		e.hasData = true
		e.stale = false
		e.err = nil
		e.fetchedAt = time.Now()
	}()
}

// Invalidate marks entries for resource stale and kicks off a background
// refetch for every entry that has a remembered fetcher. With no params the
// whole resource is invalidated (key-prefix semantics); otherwise only the
// named params.
func (c *Cache) Invalidate(resource string, params ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if key.Resource != resource {
			continue
		}
		if len(params) > 0 && !slices.Contains(params, key.Param) {
			continue
		}
		e.gen++
		e.stale = true
		if e.flight != nil {
			// The in-flight response is now superseded; its completion
			// handler will discard it and start the refetch.
			continue
		}
		if e.fetch != nil {
			c.startFetch(context.Background(), key, e, e.fetch)
		}
	}
}

// Peek returns the current snapshot for key without fetching.
func (c *Cache) Peek(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{Status: StatusIdle}
	}
	return e.snapshot()
}

// Wait blocks until all background fetches have settled.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Fetch is the typed wrapper around Cache.Fetch.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	snap := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	var zero T
	if snap.Status != StatusSuccess {
		return zero, snap.Err
	}
	v, ok := snap.Data.(T)
	if !ok {
		return zero, snap.Err
	}
	return v, nil
}

// FetchDependent is the typed wrapper around Cache.FetchDependent. ok is
// false while the query is idle because parentID is empty.
func FetchDependent[T any](ctx context.Context, c *Cache, resource, parentID string, fn func(ctx context.Context) (T, error)) (value T, ok bool, err error) {
	snap := c.FetchDependent(ctx, resource, parentID, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if snap.Status == StatusIdle {
		return value, false, nil
	}
	if snap.Status != StatusSuccess {
		return value, true, snap.Err
	}
	v, _ := snap.Data.(T)
	return v, true, nil
}
