package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"topicpulse/internal/worker"
)

func fastOpts(workers, retries int) worker.Options {
	return worker.Options{
		Workers:        workers,
		MaxRetries:     retries,
		RequestTimeout: time.Second,
		BackoffInitial: time.Millisecond,
		BackoffMax:     2 * time.Millisecond,
	}
}

func TestProcessAll_RetriesTransient(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0

	fn := func(_ context.Context, _ string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= 2 {
			return "", worker.Transient(errors.New("rate limited"))
		}
		return "ok", nil
	}

	out, err := worker.ProcessAll(context.Background(), []string{"eclipse"}, fn, fastOpts(1, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Err != nil || out[0].Output != "ok" {
		t.Fatalf("unexpected output: %#v", out[0])
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestProcessAll_DoesNotRetryPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	fn := func(_ context.Context, _ string) (string, error) {
		calls.Add(1)
		return "", errors.New("bad request")
	}

	out, err := worker.ProcessAll(context.Background(), []string{"eclipse"}, fn, fastOpts(1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Err == nil {
		t.Fatal("expected item error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestProcessAll_KeepsInputOrder(t *testing.T) {
	t.Parallel()

	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	fn := func(_ context.Context, n int) (string, error) {
		if n%10 == 3 {
			return "", fmt.Errorf("item %d failed", n)
		}
		return fmt.Sprint(n * 2), nil
	}

	out, err := worker.ProcessAll(context.Background(), items, fn, fastOpts(8, 0))
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range out {
		if r.Input != i {
			t.Fatalf("result %d has input %d", i, r.Input)
		}
		if i%10 == 3 {
			if r.Err == nil {
				t.Errorf("expected error for %d", i)
			}
			continue
		}
		if r.Err != nil || r.Output != fmt.Sprint(i*2) {
			t.Errorf("result %d = %#v", i, r)
		}
	}
}

func TestProcessAll_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.ProcessAll(ctx, []int{1, 2, 3}, func(context.Context, int) (int, error) { return 0, nil }, fastOpts(2, 0))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	if !worker.IsTransient(fmt.Errorf("wrapped: %w", worker.Transient(errors.New("x")))) {
		t.Error("wrapped transient not detected")
	}
	if !worker.IsTransient(context.DeadlineExceeded) {
		t.Error("deadline should be transient")
	}
	if worker.IsTransient(errors.New("plain")) || worker.IsTransient(nil) {
		t.Error("plain errors are permanent")
	}
	if worker.Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
}

func TestProcessAll_BoundsInFlight(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	fn := func(_ context.Context, n int) (int, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return n, nil
	}

	items := make([]int, 20)
	if _, err := worker.ProcessAll(context.Background(), items, fn, fastOpts(3, 0)); err != nil {
		t.Fatal(err)
	}
	if peak.Load() > 3 {
		t.Fatalf("peak in-flight = %d, want <= 3", peak.Load())
	}
}
