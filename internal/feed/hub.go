package feed

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Subscription.Next after Close.
var ErrClosed = errors.New("subscription closed")

// AllMatches subscribes to events for every match.
const AllMatches = "*"

// Hub fans events out to in-process subscribers, keyed by match.
//
// Thread-safety: all methods are safe for concurrent use.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription receives the events of one match (or AllMatches) in publish
// order.
type Subscription struct {
	hub     *Hub
	matchID string
	queue   *eventQueue
	once    sync.Once
}

// Subscribe registers a subscriber. Callers must Close the subscription.
func (h *Hub) Subscribe(matchID string) *Subscription {
	sub := &Subscription{hub: h, matchID: matchID, queue: newEventQueue()}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[matchID] == nil {
		h.subs[matchID] = make(map[*Subscription]struct{})
	}
	h.subs[matchID][sub] = struct{}{}
	return sub
}

// Publish implements Publisher. It never blocks on subscribers.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[ev.MatchID] {
		sub.queue.Enqueue(ev)
	}
	for sub := range h.subs[AllMatches] {
		sub.queue.Enqueue(ev)
	}
	return nil
}

// Subscribers returns the number of live subscriptions for a match.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[matchID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs[sub.matchID], sub)
	if len(h.subs[sub.matchID]) == 0 {
		delete(h.subs, sub.matchID)
	}
}

// Next blocks until an event is available, the context ends, or the
// subscription is closed.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		if ev, ok := s.queue.TryDequeue(); ok {
			return ev, nil
		}
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case _, ok := <-s.queue.Wait():
			if !ok {
				if ev, more := s.queue.TryDequeue(); more {
					return ev, nil
				}
				return Event{}, ErrClosed
			}
		}
	}
}

// Pending returns the number of undelivered events.
func (s *Subscription) Pending() int {
	return s.queue.Len()
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		s.queue.Close()
	})
}
