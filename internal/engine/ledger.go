package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// Ledger is the append-only delivery log of every innings, bound to one
// store handle (usually a transaction).
//
// Entries are totally ordered by Seq. The only removal is RemoveLast, which
// takes the highest Seq.
type Ledger struct {
	q *store.Queries
}

// NewLedger binds a ledger to a store handle.
func NewLedger(q *store.Queries) Ledger {
	return Ledger{q: q}
}

// Append assigns d the next sequence number of its innings and stores it.
// Fails with ErrInningsNotActive when the innings is closed.
func (l Ledger) Append(ctx context.Context, d ir.Delivery) (ir.Delivery, error) {
	inn, err := l.q.GetInnings(ctx, d.InningsID)
	if err != nil {
		return ir.Delivery{}, mapStoreError(err)
	}
	if !inn.Active() {
		return ir.Delivery{}, newError(CodeInningsNotActive,
			"innings %d is %s", inn.Number, inn.Status).forInnings(inn.MatchID, inn.ID)
	}

	stored, err := l.q.InsertDelivery(ctx, d)
	if err != nil {
		return ir.Delivery{}, fmt.Errorf("append delivery: %w", err)
	}
	return stored, nil
}

// Entries returns the innings ledger in sequence order.
func (l Ledger) Entries(ctx context.Context, inningsID string) ([]ir.Delivery, error) {
	entries, err := l.q.ListDeliveries(ctx, inningsID)
	if err != nil {
		return nil, fmt.Errorf("ledger entries: %w", err)
	}
	return entries, nil
}

// RemoveLast deletes and returns the highest-sequence entry. Fails with
// ErrEmptyLedger when there is nothing to remove.
func (l Ledger) RemoveLast(ctx context.Context, inningsID string) (ir.Delivery, error) {
	last, ok, err := l.q.LastDelivery(ctx, inningsID)
	if err != nil {
		return ir.Delivery{}, fmt.Errorf("remove last: %w", err)
	}
	if !ok {
		return ir.Delivery{}, &ScoringError{
			Code:      CodeEmptyLedger,
			Message:   "no deliveries to undo",
			InningsID: inningsID,
		}
	}
	if err := l.q.DeleteDelivery(ctx, last.ID); err != nil {
		return ir.Delivery{}, fmt.Errorf("remove last: %w", err)
	}
	return last, nil
}

// mapStoreError turns store lookup failures into scoring errors.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &ScoringError{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, store.ErrInUse):
		return &ScoringError{Code: CodeResourceInUse, Message: err.Error()}
	}
	return err
}
