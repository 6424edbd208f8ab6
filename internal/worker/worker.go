// internal/worker/worker.go

package worker

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// TransientError marks an error as retryable.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError; nil stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is worth retrying. Per-attempt deadlines
// count as transient.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded)
}

// Options configure a pool run. Zero values pick small defaults.
type Options struct {
	Workers        int
	MaxRetries     int
	RequestTimeout time.Duration

	// RateLimitRPS is shared by all workers; <= 0 disables it
	RateLimitRPS float64
	Burst        int

	BackoffInitial    time.Duration
	BackoffMax        time.Duration
	BackoffJitterFrac float64
}

// Result holds the output for one input item.
type Result[In any, Out any] struct {
	Input  In
	Output Out
	Err    error
}

type pool struct {
	opts    Options
	limiter *rate.Limiter
}

func newPool(o Options) *pool {
	p := &pool{opts: o}
	p.opts.Workers = cmpDefault(o.Workers, 4)
	p.opts.MaxRetries = max(o.MaxRetries, 0)
	p.opts.RequestTimeout = cmpDefault(o.RequestTimeout, 30*time.Second)
	p.opts.BackoffInitial = cmpDefault(o.BackoffInitial, 200*time.Millisecond)
	p.opts.BackoffMax = cmpDefault(o.BackoffMax, 2*time.Second)
	if o.RateLimitRPS > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(o.RateLimitRPS), max(o.Burst, 1))
	}
	return p
}

func cmpDefault[T int | time.Duration](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// ProcessAll runs fn over every item with at most opts.Workers in flight and
// returns results in input order. Item failures stay in their Result; the
// returned error is set only when ctx ends first.
func ProcessAll[In any, Out any](
	ctx context.Context,
	items []In,
	fn func(context.Context, In) (Out, error),
	opts Options,
) ([]Result[In, Out], error) {
	p := newPool(opts)
	out := make([]Result[In, Out], len(items))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			v, err := attempt(ctx, p, item, fn)
			out[i] = Result[In, Out]{Input: item, Output: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func attempt[In any, Out any](ctx context.Context, p *pool, item In, fn func(context.Context, In) (Out, error)) (Out, error) {
	var (
		v   Out
		err error
	)
	for try := 0; ; try++ {
		if p.limiter != nil {
			if werr := p.limiter.Wait(ctx); werr != nil {
				return v, werr
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, p.opts.RequestTimeout)
		v, err = fn(callCtx, item)
		cancel()

		switch {
		case err == nil:
			return v, nil
		case ctx.Err() != nil:
			return v, ctx.Err()
		case try >= p.opts.MaxRetries || !IsTransient(err):
			return v, err
		}

		select {
		case <-time.After(p.backoff(try)):
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}
}

// backoff doubles from BackoffInitial up to BackoffMax, then applies jitter
func (p *pool) backoff(try int) time.Duration {
	d := p.opts.BackoffInitial
	for range try {
		if d >= p.opts.BackoffMax {
			break
		}
		d *= 2
	}
	d = min(d, p.opts.BackoffMax)
	if f := p.opts.BackoffJitterFrac; f > 0 {
		d = time.Duration(float64(d) * (1 + (rand.Float64()*2-1)*f))
	}
	return d
}
