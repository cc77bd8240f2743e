package testutil

import (
	"sync"
	"time"
)

// RecordingSleeper records requested sleeps instead of sleeping.
//
// Thread-safety: RecordingSleeper is safe for concurrent use via internal
// mutex.
type RecordingSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
	marks  []int
	calls  int
}

// Sleep records d and returns immediately.
func (s *RecordingSleeper) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	s.marks = append(s.marks, s.calls)
}

// Call counts one unit of work, so tests can check where sleeps fell
// between calls.
func (s *RecordingSleeper) Call() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
}

// Sleeps returns the recorded durations in order.
func (s *RecordingSleeper) Sleeps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}

// CallsBeforeSleeps returns, for each recorded sleep, how many calls had
// been counted when it happened.
func (s *RecordingSleeper) CallsBeforeSleeps() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.marks...)
}

// Total returns the sum of all recorded sleeps.
func (s *RecordingSleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.sleeps {
		total += d
	}
	return total
}
