// Package batch runs a list of independent operations one at a time with a
// fixed pause between them.
//
// Every item is attempted exactly once; a failing item is counted and the
// batch moves on. There is no early exit.
package batch

import (
	"context"
	"log/slog"
	"time"
)

// DefaultDelay is the pause between consecutive operations.
const DefaultDelay = 800 * time.Millisecond

// Op performs one operation on id.
type Op func(ctx context.Context, id string) error

// Progress reports how many of Total items have been attempted.
type Progress struct {
	Current int
	Total   int
}

// Failure records one failed item.
type Failure struct {
	ID  string
	Err error
}

// Result is the outcome of a batch. SuccessCount + FailCount equals the
// number of items.
type Result struct {
	SuccessCount int
	FailCount    int
	Failures     []Failure
}

// Total returns the number of items attempted.
func (r Result) Total() int {
	return r.SuccessCount + r.FailCount
}

// Throttler executes batches sequentially.
type Throttler struct {
	delay      time.Duration
	sleep      func(time.Duration)
	onProgress func(Progress)
	logger     *slog.Logger
}

// Option configures a Throttler.
type Option func(*Throttler)

// WithDelay sets the pause between operations. Default: DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(t *Throttler) {
		t.delay = d
	}
}

// WithSleep replaces time.Sleep, for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(t *Throttler) {
		t.sleep = fn
	}
}

// WithProgress registers a callback invoked after each attempted item.
func WithProgress(fn func(Progress)) Option {
	return func(t *Throttler) {
		t.onProgress = fn
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Throttler) {
		t.logger = l
	}
}

// New creates a Throttler.
func New(opts ...Option) *Throttler {
	t := &Throttler{
		delay:  DefaultDelay,
		sleep:  time.Sleep,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run calls op for each id in order, waiting for each result and pausing
// between calls. Failures are collected, not returned; the batch always runs
// to the end of ids. ctx is handed to op but does not stop the batch.
func (t *Throttler) Run(ctx context.Context, ids []string, op Op) Result {
	var res Result
	total := len(ids)
	for i, id := range ids {
		if err := op(ctx, id); err != nil {
			res.FailCount++
			res.Failures = append(res.Failures, Failure{ID: id, Err: err})
			t.logger.Warn("batch item failed", "id", id, "error", err)
		} else {
			res.SuccessCount++
		}

		if t.onProgress != nil {
			t.onProgress(Progress{Current: i + 1, Total: total})
		}
		if i < total-1 && t.delay > 0 {
			t.sleep(t.delay)
		}
	}
	t.logger.Info("batch complete", "succeeded", res.SuccessCount, "failed", res.FailCount)
	return res
}
