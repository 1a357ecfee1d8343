package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartsales/lead-pipeline/internal/worker"
)

func TestMap_ResolvesEveryItem(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5, 6, 7}
	out, err := worker.Map(context.Background(), items, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	}, worker.Options{Workers: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(out))
	}
	for i, res := range out {
		if res.Err != nil || res.Out != items[i]*2 {
			t.Fatalf("result %d: %#v", i, res)
		}
	}
}

func TestMap_CapsInFlightWork(t *testing.T) {
	t.Parallel()

	const limit = 3
	var inFlight, maxSeen atomic.Int64

	items := make([]int, 20)
	_, err := worker.Map(context.Background(), items, func(_ context.Context, _ int) (int, error) {
		cur := inFlight.Add(1)
		for {
			prev := maxSeen.Load()
			if cur <= prev || maxSeen.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return 0, nil
	}, worker.Options{Workers: limit})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := maxSeen.Load(); got > limit {
		t.Fatalf("saw %d items in flight, pool cap is %d", got, limit)
	}
}

func TestMap_RetriesRetryableFailures(t *testing.T) {
	t.Parallel()

	retryable := errors.New("try again")

	var mu sync.Mutex
	calls := 0

	out, err := worker.Map(context.Background(), []string{"L1"}, func(_ context.Context, _ string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= 2 {
			return "", retryable
		}
		return "ok", nil
	}, worker.Options{
		Workers:           1,
		MaxRetries:        3,
		Retryable:         func(err error) bool { return errors.Is(err, retryable) },
		BackoffInitial:    time.Millisecond,
		BackoffMax:        2 * time.Millisecond,
		BackoffJitterFrac: 0.01,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Err != nil || out[0].Out != "ok" {
		t.Fatalf("unexpected result: %#v", out[0])
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestMap_DoesNotRetryPermanentFailures(t *testing.T) {
	t.Parallel()

	permanent := errors.New("no")
	var calls atomic.Int64

	out, err := worker.Map(context.Background(), []string{"L1"}, func(_ context.Context, _ string) (string, error) {
		calls.Add(1)
		return "", permanent
	}, worker.Options{
		Workers:    1,
		MaxRetries: 5,
		Retryable:  func(error) bool { return false },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(out[0].Err, permanent) {
		t.Fatalf("expected permanent error, got %v", out[0].Err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestMap_OneFailureDoesNotAbortTheBatch(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	out, err := worker.Map(context.Background(), []int{0, 1, 2}, func(_ context.Context, n int) (int, error) {
		if n == 1 {
			return 0, boom
		}
		return n, nil
	}, worker.Options{Workers: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Err != nil || out[2].Err != nil {
		t.Fatalf("healthy items must succeed: %#v", out)
	}
	if !errors.Is(out[1].Err, boom) {
		t.Fatalf("expected per-item error, got %v", out[1].Err)
	}
}

func TestMap_RequestTimeoutFailsTheItemOnly(t *testing.T) {
	t.Parallel()

	out, err := worker.Map(context.Background(), []int{0, 1}, func(ctx context.Context, n int) (int, error) {
		if n == 0 {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	}, worker.Options{
		Workers:        2,
		RequestTimeout: 10 * time.Millisecond,
		Retryable:      func(error) bool { return false },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(out[0].Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", out[0].Err)
	}
	if out[1].Err != nil {
		t.Fatalf("other item must be unaffected: %v", out[1].Err)
	}
}

func TestMap_CancelledContextResolvesRemainingItems(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	items := make([]int, 50)
	started := make(chan struct{}, 1)
	out, err := worker.Map(ctx, items, func(ctx context.Context, _ int) (int, error) {
		select {
		case started <- struct{}{}:
			cancel()
		default:
		}
		<-ctx.Done()
		return 0, ctx.Err()
	}, worker.Options{Workers: 2, Retryable: func(error) bool { return false }})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if len(out) != len(items) {
		t.Fatalf("barrier must still resolve every item: got %d of %d", len(out), len(items))
	}
	for i, res := range out {
		if res.Err == nil {
			t.Fatalf("item %d should carry an error after cancellation", i)
		}
	}
}
