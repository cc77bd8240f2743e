package livesync

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/crease/internal/ir"
)

// ErrBusy is returned when a mutation is attempted while another is still
// in flight.
var ErrBusy = errors.New("livesync: another operation is in progress")

// Mutation is one operator action against the server.
type Mutation func(ctx context.Context) (*ir.Snapshot, error)

// Operator serialises operator actions for one match view: at most one
// mutation is in flight, and each success triggers an immediate refetch of
// the live snapshot.
//
// Thread-safety: Operator is safe for concurrent use.
type Operator struct {
	handle *Handle

	mu   sync.Mutex
	busy bool
}

// NewOperator binds an operator to a poll handle.
func NewOperator(h *Handle) *Operator {
	return &Operator{handle: h}
}

// Do runs fn unless another mutation is in flight, in which case it returns
// ErrBusy without calling fn.
func (o *Operator) Do(ctx context.Context, fn Mutation) (*ir.Snapshot, error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.busy = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	snap, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	o.handle.Refresh()
	return snap, nil
}

// Busy reports whether a mutation is in flight.
func (o *Operator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}
