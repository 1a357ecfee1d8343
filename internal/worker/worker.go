// Package worker provides a bounded fan-out/fan-in pool: a fixed number
// of goroutines consume items from a queue, and Map returns only once
// every item has been resolved. Per-item failures are reported in the
// item's Result, never as a batch failure.
package worker

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Options struct {
	// Workers caps simultaneous in-flight items. Work beyond the cap
	// queues; the pool never spawns one goroutine per item.
	Workers int

	// MaxRetries is the number of extra attempts for retryable failures.
	MaxRetries int

	// RequestTimeout bounds a single attempt. An expired attempt counts
	// as a failed attempt for that item only.
	RequestTimeout time.Duration

	// RateLimitRPS is a global limit shared by all workers. <=0 disables.
	RateLimitRPS float64

	// Retryable decides whether a failed attempt is worth repeating.
	// Defaults to timeouts and temporary network errors.
	Retryable func(error) bool

	// BackoffInitial is the first sleep before a retry; doubled per
	// attempt up to BackoffMax, with +/- BackoffJitterFrac jitter.
	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	BackoffJitterFrac float64
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.Retryable == nil {
		o.Retryable = defaultRetryable
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = 200 * time.Millisecond
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 2 * time.Second
	}
	if o.BackoffJitterFrac <= 0 {
		o.BackoffJitterFrac = 0.2
	}
	return o
}

// Result holds the outcome for one input item.
type Result[In any, Out any] struct {
	Input In
	Out   Out
	Err   error
}

// Map runs fn over every item on the pool and blocks until all items are
// resolved (the fan-in barrier). The returned slice is indexed like
// items; each entry carries its own error. Map itself fails only when
// ctx is cancelled before all items resolve.
func Map[In any, Out any](
	ctx context.Context,
	items []In,
	fn func(context.Context, In) (Out, error),
	opts Options,
) ([]Result[In, Out], error) {
	opts = opts.withDefaults()

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	type job struct {
		idx int
		in  In
	}
	jobs := make(chan job)
	out := make([]Result[In, Out], len(items))

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				o, err := attempt(ctx, j.in, fn, limiter, opts)
				out[j.idx] = Result[In, Out]{Input: j.in, Out: o, Err: err}
			}
		}()
	}

feed:
	for i, item := range items {
		select {
		case jobs <- job{idx: i, in: item}:
		case <-ctx.Done():
			// Unfed items resolve with the cancellation error below.
			for k := i; k < len(items); k++ {
				out[k] = Result[In, Out]{Input: items[k], Err: ctx.Err()}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func attempt[In any, Out any](
	ctx context.Context,
	item In,
	fn func(context.Context, In) (Out, error),
	limiter *rate.Limiter,
	opts Options,
) (Out, error) {
	var last Out
	for try := 0; ; try++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return last, err
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, opts.RequestTimeout)
		o, err := fn(reqCtx, item)
		cancel()
		last = o
		if err == nil {
			return o, nil
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return last, ctx.Err()
		}
		if try >= opts.MaxRetries || !opts.Retryable(err) {
			return last, err
		}

		t := time.NewTimer(backoff(opts, try))
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return last, ctx.Err()
		}
	}
}

func defaultRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout() || ne.Temporary()
	}
	return false
}

func backoff(opts Options, attempt int) time.Duration {
	sleep := opts.BackoffInitial
	for i := 0; i < attempt && sleep < opts.BackoffMax; i++ {
		sleep *= 2
		if sleep > opts.BackoffMax {
			sleep = opts.BackoffMax
			break
		}
	}
	j := 1 + (rand.Float64()*2-1)*opts.BackoffJitterFrac
	return time.Duration(float64(sleep) * j)
}
