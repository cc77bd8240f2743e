package testutil

import (
	"sync"
	"time"
)

// ManualTicker is a ticker that fires only when the test calls Tick.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualTicker struct {
	ch       chan time.Time
	stop     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	interval time.Duration
	now      time.Time
}

// NewManualTicker creates a ticker whose clock starts at a fixed instant.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		ch:   make(chan time.Time),
		stop: make(chan struct{}),
		now:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// C returns the tick channel.
func (t *ManualTicker) C() <-chan time.Time {
	return t.ch
}

// Tick advances the clock by the interval and blocks until the consumer
// receives the tick. It returns false if the ticker was stopped first.
func (t *ManualTicker) Tick() bool {
	t.mu.Lock()
	t.now = t.now.Add(t.interval)
	now := t.now
	t.mu.Unlock()

	select {
	case t.ch <- now:
		return true
	case <-t.stop:
		return false
	}
}

// Stop stops the ticker. Pending and future Tick calls return false.
func (t *ManualTicker) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// Stopped reports whether Stop has been called.
func (t *ManualTicker) Stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// SetInterval records the interval the consumer asked for.
func (t *ManualTicker) SetInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
}

// Interval returns the interval set by SetInterval.
func (t *ManualTicker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}
