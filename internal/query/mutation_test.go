package query_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
)

func TestMutationInvalidatesOnSuccess(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "clients"}

	var fetches atomic.Int32
	fn := func(ctx context.Context) (int, error) {
		return int(fetches.Add(1)), nil
	}
	if _, err := query.Fetch(context.Background(), c, key, fn); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	m := query.NewMutation[string](c, query.Invalidates("clients"))
	got, err := m.Run(context.Background(), func(ctx context.Context) (string, error) {
		return "created", nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "created" {
		t.Errorf("Run = %q, want %q", got, "created")
	}

	c.Wait()
	if n := fetches.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2 (refetch after invalidation)", n)
	}
	if data, ok := m.Data(); !ok || data != "created" {
		t.Errorf("Data() = %q, %v; want %q, true", data, ok, "created")
	}
	if m.Err() != nil {
		t.Errorf("Err() = %v, want nil", m.Err())
	}
}

func TestMutationFailureLeavesCacheUntouched(t *testing.T) {
	c := query.New()
	key := query.Key{Resource: "projects"}

	var fetches atomic.Int32
	fn := func(ctx context.Context) (string, error) {
		fetches.Add(1)
		return "original", nil
	}
	if _, err := query.Fetch(context.Background(), c, key, fn); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	boom := errors.New("conflict")
	m := query.NewMutation[string](c, query.Invalidates("projects"))
	_, err := m.Run(context.Background(), func(ctx context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run err = %v, want %v", err, boom)
	}

	c.Wait()
	if n := fetches.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1 (no invalidation on failure)", n)
	}
	snap := c.Peek(key)
	if snap.Stale {
		t.Error("entry marked stale after a failed mutation")
	}
	if v, ok := snap.Data.(string); !ok || v != "original" {
		t.Errorf("data = %v, want the original value", snap.Data)
	}
	if !errors.Is(m.Err(), boom) {
		t.Errorf("Err() = %v, want %v", m.Err(), boom)
	}
	if _, ok := m.Data(); ok {
		t.Error("Data() reports a value after a failed run")
	}
}

func TestMutationPendingDuringRun(t *testing.T) {
	c := query.New()
	m := query.NewMutation[struct{}](c)

	started := make(chan struct{})
	gate := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Run(context.Background(), func(ctx context.Context) (struct{}, error) {
			close(started)
			<-gate
			return struct{}{}, nil
		})
	}()

	<-started
	if !m.Pending() {
		t.Error("Pending() = false while the run is in flight")
	}
	close(gate)
	<-done
	if m.Pending() {
		t.Error("Pending() = true after the run finished")
	}
}
