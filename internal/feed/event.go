// Package feed distributes scoring events to live viewers and downstream
// consumers.
//
// The engine publishes one Event after each committed mutation. Events carry
// the full post-mutation snapshot so that subscribers replace their view
// wholesale; nothing downstream ever applies a delta.
package feed

import (
	"context"
	"errors"

	"github.com/roach88/crease/internal/ir"
)

// EventType names the mutation that produced an event.
type EventType string

const (
	EventMatchCreated     EventType = "match_created"
	EventMatchDeleted     EventType = "match_deleted"
	EventInningsStarted   EventType = "innings_started"
	EventDeliveryRecorded EventType = "delivery_recorded"
	EventRolesAssigned    EventType = "roles_assigned"
	EventDeliveryUndone   EventType = "delivery_undone"
	EventInningsEnded     EventType = "innings_ended"
	EventMatchAbandoned   EventType = "match_abandoned"
)

// Event is a committed change to one match.
//
// Seq is stamped by the publishing engine's logical clock and increases
// across all matches. Snapshot is nil for deletions.
type Event struct {
	Type      EventType    `json:"type"`
	MatchID   string       `json:"match_id"`
	InningsID string       `json:"innings_id,omitempty"`
	Seq       int64        `json:"seq"`
	Version   string       `json:"version,omitempty"`
	Snapshot  *ir.Snapshot `json:"snapshot,omitempty"`
}

// Publisher delivers events to some audience. Publish must not block for
// long; the engine calls it after commit on the request path.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to each publisher in order and joins their errors. A
// failing publisher does not stop the rest.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
