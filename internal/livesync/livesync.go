// Package livesync keeps a local copy of a match's live snapshot current.
//
// A Handle polls the server at a fixed cadence and replaces its copy
// wholesale on every successful fetch; it never merges. An Operator wraps
// mutations so that only one is in flight at a time and each success forces
// an immediate refetch instead of waiting for the next tick.
package livesync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/crease/internal/ir"
)

// DefaultInterval is the polling cadence.
const DefaultInterval = 5 * time.Second

// Fetcher returns the current snapshot of a match. *client.Client
// implements it.
type Fetcher interface {
	LiveSnapshot(ctx context.Context, matchID string) (*ir.Snapshot, error)
}

// Ticker is the subset of time.Ticker the poller uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

// Options configures Watch. The zero value polls every DefaultInterval and
// only stores snapshots.
type Options struct {
	// Interval between polls. Zero means DefaultInterval.
	Interval time.Duration

	// OnSnapshot is called with each snapshot whose version differs from the
	// previous one.
	OnSnapshot func(*ir.Snapshot)

	// OnError is called when a fetch fails. The previous snapshot is kept.
	OnError func(error)

	// NewTicker overrides the ticker, for tests.
	NewTicker func(time.Duration) Ticker

	Logger *slog.Logger
}

// Handle is a running poll loop for one match.
//
// Callbacks run on the loop goroutine, one at a time. After Close returns,
// no callback runs again. Close must not be called from inside a callback.
//
// Thread-safety: Handle is safe for concurrent use.
type Handle struct {
	fetcher Fetcher
	matchID string
	opts    Options
	logger  *slog.Logger

	refresh chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once

	mu   sync.RWMutex
	snap *ir.Snapshot
	err  error
}

// Watch starts polling matchID. The first fetch happens immediately. The
// loop stops when ctx ends or Close is called.
func Watch(ctx context.Context, f Fetcher, matchID string, opts Options) *Handle {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newRealTicker
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		fetcher: f,
		matchID: matchID,
		opts:    opts,
		logger:  logger.With("match", matchID),
		refresh: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go h.run(ctx)
	return h
}

func (h *Handle) run(ctx context.Context) {
	defer close(h.done)

	ticker := h.opts.NewTicker(h.opts.Interval)
	defer ticker.Stop()

	h.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		case <-h.refresh:
		}
		h.poll(ctx)
	}
}

func (h *Handle) poll(ctx context.Context) {
	snap, err := h.fetcher.LiveSnapshot(ctx, h.matchID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		h.logger.Warn("live snapshot fetch failed", "error", err)
		if h.opts.OnError != nil {
			h.opts.OnError(err)
		}
		return
	}

	h.mu.Lock()
	changed := h.snap == nil || h.snap.Version != snap.Version
	h.snap = snap
	h.err = nil
	h.mu.Unlock()

	if changed && h.opts.OnSnapshot != nil {
		h.opts.OnSnapshot(snap)
	}
}

// Refresh requests an immediate out-of-band fetch. Requests made while one
// is already pending coalesce.
func (h *Handle) Refresh() {
	select {
	case h.refresh <- struct{}{}:
	default:
	}
}

// Snapshot returns the most recent snapshot, or nil before the first
// successful fetch.
func (h *Handle) Snapshot() *ir.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Err returns the error of the last fetch, or nil if it succeeded.
func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Done is closed once the poll loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Close stops polling and waits for the loop to exit. It is safe to call
// more than once.
func (h *Handle) Close() {
	h.once.Do(h.cancel)
	<-h.done
}
