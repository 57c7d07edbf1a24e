package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestQueue(maxRetries int, delay time.Duration) *Queue {
	return New(Config{MaxRetries: maxRetries, RetryDelay: delay, QueueSize: 16})
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestEnqueueRunsHandler(t *testing.T) {
	q := newTestQueue(3, 10*time.Millisecond)

	var got atomic.Int64
	q.Register(KindProcess, func(ctx context.Context, job Job) error {
		got.Store(job.AssetID)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 2)
	defer q.Stop()

	if err := q.Enqueue(KindProcess, 42); err != nil {
		t.Fatalf("Enqueue() error: %v", err)
	}

	waitFor(t, time.Second, func() bool { return got.Load() == 42 })
}

func TestRetryUntilSuccess(t *testing.T) {
	q := newTestQueue(3, 10*time.Millisecond)

	var attempts atomic.Int32
	q.Register(KindProcess, func(ctx context.Context, job Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 1)
	defer q.Stop()

	if err := q.Enqueue(KindProcess, 1); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 2*time.Second, func() bool { return attempts.Load() == 3 })
}

func TestRetryBudgetExhausted(t *testing.T) {
	q := newTestQueue(3, 5*time.Millisecond)

	var attempts atomic.Int32
	q.Register(KindProcess, func(ctx context.Context, job Job) error {
		attempts.Add(1)
		return errors.New("always fails")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 1)
	defer q.Stop()

	if err := q.Enqueue(KindProcess, 1); err != nil {
		t.Fatal(err)
	}

	// Initial run plus 3 retries, then no more.
	waitFor(t, 2*time.Second, func() bool { return attempts.Load() == 4 })
	time.Sleep(50 * time.Millisecond)
	if n := attempts.Load(); n != 4 {
		t.Errorf("handler ran %d times, want 4", n)
	}
}

func TestPermanentErrorSkipsRetries(t *testing.T) {
	q := newTestQueue(3, 5*time.Millisecond)

	var attempts atomic.Int32
	q.Register(KindProcess, func(ctx context.Context, job Job) error {
		attempts.Add(1)
		return Permanent(errors.New("asset deleted"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 1)
	defer q.Stop()

	if err := q.Enqueue(KindProcess, 1); err != nil {
		t.Fatal(err)
	}

	waitFor(t, time.Second, func() bool { return attempts.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	if n := attempts.Load(); n != 1 {
		t.Errorf("permanent failure retried: handler ran %d times", n)
	}
}

func TestIsPermanent(t *testing.T) {
	base := errors.New("base")

	if IsPermanent(base) {
		t.Error("plain error reported as permanent")
	}
	if !IsPermanent(Permanent(base)) {
		t.Error("Permanent() error not reported as permanent")
	}
	if !IsPermanent(fmt.Errorf("wrapped: %w", Permanent(base))) {
		t.Error("wrapped permanent error not detected")
	}
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	if !errors.Is(Permanent(base), base) {
		t.Error("Permanent() should preserve the error chain")
	}
}

func TestAttemptCountsAcrossRetries(t *testing.T) {
	q := newTestQueue(2, 5*time.Millisecond)

	var mu sync.Mutex
	var seen []int
	q.Register(KindThumbnail, func(ctx context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.Attempt)
		mu.Unlock()
		return errors.New("fail")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 1)
	defer q.Stop()

	if err := q.Enqueue(KindThumbnail, 7); err != nil {
		t.Fatal(err)
	}

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	for i, attempt := range seen {
		if attempt != i {
			t.Errorf("run %d saw Attempt=%d", i, attempt)
		}
	}
}

func TestEnqueueAfterStop(t *testing.T) {
	q := newTestQueue(1, time.Millisecond)
	q.Register(KindProcess, func(ctx context.Context, job Job) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 1)
	q.Stop()

	if err := q.Enqueue(KindProcess, 1); err == nil {
		t.Error("expected error enqueueing on stopped queue")
	}
}

func TestEnqueueFullQueue(t *testing.T) {
	q := New(Config{MaxRetries: 1, RetryDelay: time.Millisecond, QueueSize: 1})
	q.Register(KindProcess, func(ctx context.Context, job Job) error { return nil })
	// Not started: jobs accumulate in the buffer.

	if err := q.Enqueue(KindProcess, 1); err != nil {
		t.Fatalf("first Enqueue() error: %v", err)
	}
	if err := q.Enqueue(KindProcess, 2); err == nil {
		t.Error("expected error when queue buffer is full")
	}
}
