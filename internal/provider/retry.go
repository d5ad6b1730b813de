package provider

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// RetryOptions tune the retrying gateway wrapper.
type RetryOptions struct {
	// Attempts is the total number of tries per call, including the first.
	Attempts int
	// BaseDelay seeds the exponential backoff; MaxDelay caps it.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// RatePerSecond, when positive, throttles outgoing calls.
	RatePerSecond float64
	// Sleeper replaces time.Sleep in tests. Nil means real sleeping.
	Sleeper func(time.Duration)
}

type retryingGateway struct {
	inner   Gateway
	opts    RetryOptions
	limiter *rate.Limiter
	jitter  func(time.Duration) time.Duration
}

// WithRetry wraps gw so that transient failures are retried with exponential
// backoff and jitter. Permanent failures and context errors pass through on
// the first occurrence.
func WithRetry(gw Gateway, opts RetryOptions) Gateway {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.BaseDelay < 0 {
		opts.BaseDelay = 0
	}
	r := &retryingGateway{inner: gw, opts: opts}
	if opts.RatePerSecond > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	r.jitter = func(d time.Duration) time.Duration {
		if d <= 0 {
			return 0
		}
		return time.Duration(rand.Int63n(int64(d)/2 + 1))
	}
	return r
}

func (r *retryingGateway) Name() string { return r.inner.Name() }

func (r *retryingGateway) Search(ctx context.Context, query string, year int) ([]Summary, error) {
	var out []Summary
	err := r.do(ctx, func() error {
		var callErr error
		out, callErr = r.inner.Search(ctx, query, year)
		return callErr
	})
	return out, err
}

func (r *retryingGateway) Details(ctx context.Context, id string) (*Result, error) {
	var out *Result
	err := r.do(ctx, func() error {
		var callErr error
		out, callErr = r.inner.Details(ctx, id)
		return callErr
	})
	return out, err
}

func (r *retryingGateway) do(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || attempt == r.opts.Attempts {
			return lastErr
		}
		if err := r.sleep(ctx, r.backoffDelay(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// backoffDelay grows the base delay geometrically: attempt 1 waits base,
// attempt 2 waits base*2, and so on, capped at MaxDelay before jitter.
func (r *retryingGateway) backoffDelay(attempt int) time.Duration {
	base := r.opts.BaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := r.opts.MaxDelay
	delay := base
	for i := 1; i < attempt; i++ {
		if maxDelay > 0 && delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	return delay + r.jitter(base)
}

func (r *retryingGateway) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if r.opts.Sleeper != nil {
		r.opts.Sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
