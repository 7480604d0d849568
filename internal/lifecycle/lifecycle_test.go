package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartupHooksRun(t *testing.T) {
	lc := New()

	var ran atomic.Int32
	lc.OnStartup(func() { ran.Add(1) })
	lc.OnStartup(func() { ran.Add(1) })

	lc.Start()
	lc.WaitForStartup()

	if got := ran.Load(); got != 2 {
		t.Errorf("expected 2 startup hooks to run, got %d", got)
	}
}

func TestStartupAfterStartRunsImmediately(t *testing.T) {
	lc := New()
	lc.Start()

	done := make(chan struct{})
	lc.OnStartup(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("late-registered startup hook never ran")
	}
}

func TestShutdownReverseOrder(t *testing.T) {
	lc := New()

	var order []string
	lc.OnShutdown(func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	lc.OnShutdown(func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("expected reverse shutdown order, got %v", order)
	}
}

func TestShutdownCollectsErrors(t *testing.T) {
	lc := New()

	failure := errors.New("close failed")
	var second bool
	lc.OnShutdown(func(ctx context.Context) error {
		second = true
		return nil
	})
	lc.OnShutdown(func(ctx context.Context) error {
		return failure
	})

	err := lc.Shutdown(time.Second)
	if !errors.Is(err, failure) {
		t.Errorf("expected joined error to include the failure, got %v", err)
	}
	if !second {
		t.Error("later hooks must still run after a failure")
	}
}
