package query_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
)

func TestFetchDeduplicatesConcurrentCalls(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "projects"}

	var calls atomic.Int32
	gate := make(chan struct{})
	fn := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		<-gate
		return []string{"alpha", "beta"}, nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([][]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = query.Fetch(context.Background(), c, key, fn)
		}(i)
	}
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if len(results[i]) != 2 {
			t.Errorf("worker %d got %d items, want 2", i, len(results[i]))
		}
	}
}

func TestFetchReturnsFreshDataWithoutRefetching(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "clients"}

	var calls atomic.Int32
	fn := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "cached", nil
	}

	for i := 0; i < 3; i++ {
		got, err := query.Fetch(context.Background(), c, key, fn)
		if err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
		if got != "cached" {
			t.Errorf("Fetch #%d = %q, want %q", i, got, "cached")
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestStaleDataServedWhileRevalidating(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "tasks", Param: "p1"}

	var calls atomic.Int32
	gate := make(chan struct{})
	fn := func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n > 1 {
			<-gate
		}
		return int(n), nil
	}

	if got, err := query.Fetch(context.Background(), c, key, fn); err != nil || got != 1 {
		t.Fatalf("priming fetch = %d, %v; want 1, nil", got, err)
	}

	// Invalidation kicks off a background refetch that is held open on the
	// gate; the entry is stale but still has data.
	c.Invalidate("tasks", "p1")

	got, err := query.Fetch(context.Background(), c, key, fn)
	if err != nil {
		t.Fatalf("stale fetch: %v", err)
	}
	if got != 1 {
		t.Errorf("stale fetch = %d, want the previous value 1", got)
	}

	close(gate)
	c.Wait()

	snap := c.Peek(key)
	if snap.Stale {
		t.Error("entry still stale after revalidation")
	}
	if v, ok := snap.Data.(int); !ok || v != 2 {
		t.Errorf("revalidated data = %v, want 2", snap.Data)
	}
}

func TestDependentQueryIdleWithoutParent(t *testing.T) {
	c := query.New()

	var calls atomic.Int32
	fn := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"should not happen"}, nil
	}

	_, ok, err := query.FetchDependent(context.Background(), c, "tasks", "", fn)
	if err != nil {
		t.Fatalf("FetchDependent: %v", err)
	}
	if ok {
		t.Error("ok = true for an idle dependent query, want false")
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("fetch calls = %d, want 0 while the parent id is empty", got)
	}

	// Once the parent id is known the fetch goes through.
	tasks, ok, err := query.FetchDependent(context.Background(), c, "tasks", "p1", fn)
	if err != nil || !ok {
		t.Fatalf("FetchDependent with parent: ok=%v err=%v", ok, err)
	}
	if len(tasks) != 1 {
		t.Errorf("tasks = %d, want 1", len(tasks))
	}
}

func TestInvalidateRefetchesInBackground(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "categories"}

	var calls atomic.Int32
	fn := func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	if _, err := query.Fetch(context.Background(), c, key, fn); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	c.Invalidate("categories")
	c.Wait()

	if got := calls.Load(); got != 2 {
		t.Errorf("fetch calls = %d, want 2 after invalidation", got)
	}
	snap := c.Peek(key)
	if v, ok := snap.Data.(int); !ok || v != 2 {
		t.Errorf("data after invalidation = %v, want 2", snap.Data)
	}
}

func TestInvalidateScopedToParam(t *testing.T) {
	c := query.New()

	counts := map[string]*atomic.Int32{"p1": {}, "p2": {}}
	fetchFor := func(param string) func(ctx context.Context) (int, error) {
		return func(ctx context.Context) (int, error) {
			return int(counts[param].Add(1)), nil
		}
	}

	for _, p := range []string{"p1", "p2"} {
		if _, err := query.Fetch(context.Background(), c, query.Key{Resource: "tasks", Param: p}, fetchFor(p)); err != nil {
			t.Fatalf("priming %s: %v", p, err)
		}
	}

	c.Invalidate("tasks", "p1")
	c.Wait()

	if got := counts["p1"].Load(); got != 2 {
		t.Errorf("p1 fetches = %d, want 2", got)
	}
	if got := counts["p2"].Load(); got != 1 {
		t.Errorf("p2 fetches = %d, want 1 (untouched)", got)
	}
}

func TestInFlightResponseDiscardedAfterInvalidation(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "projects"}

	var calls atomic.Int32
	started := make(chan struct{})
	gate := make(chan struct{})
	fn := func(ctx context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-gate
		}
		return int(n), nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = query.Fetch(context.Background(), c, key, fn)
	}()

	// Wait for the first fetch to be in flight, then invalidate it.
	<-started
	c.Invalidate("projects")
	close(gate)
	<-done
	c.Wait()

	// The superseded response must not be stored; the refetch result wins.
	snap := c.Peek(key)
	if v, ok := snap.Data.(int); !ok || v != 2 {
		t.Errorf("data = %v, want 2 (superseded response discarded)", snap.Data)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("fetch calls = %d, want 2", got)
	}
}

func TestRefetchErrorKeepsLastGoodData(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "notifications"}

	var calls atomic.Int32
	boom := errors.New("backend down")
	fn := func(ctx context.Context) (string, error) {
		if calls.Add(1) > 1 {
			return "", boom
		}
		return "good", nil
	}

	if _, err := query.Fetch(context.Background(), c, key, fn); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	c.Invalidate("notifications")
	c.Wait()

	snap := c.Peek(key)
	if snap.Status != query.StatusSuccess {
		t.Errorf("status = %v, want StatusSuccess (data retained)", snap.Status)
	}
	if v, ok := snap.Data.(string); !ok || v != "good" {
		t.Errorf("data = %v, want the last good value", snap.Data)
	}
	if !errors.Is(snap.Err, boom) {
		t.Errorf("err = %v, want the refetch error attached", snap.Err)
	}
}

func TestFirstFetchErrorReportsError(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "reports"}

	boom := errors.New("unreachable")
	_, err := query.Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if snap := c.Peek(key); snap.Status != query.StatusError {
		t.Errorf("status = %v, want StatusError with no prior data", snap.Status)
	}
}
