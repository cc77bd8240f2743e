package engine

import (
	"context"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// UndoLastDelivery removes the most recent delivery of a match.
//
// It targets the innings in progress, or else the most recently closed
// innings, which reopens. A completed match goes back to live. The innings
// counters are folded again from the remaining ledger and the roles are
// taken from the removed entry's snapshot; nothing is reversed
// incrementally. The target is left as it was.
//
// Fails with ErrEmptyLedger when the target innings has no deliveries.
func (e *Engine) UndoLastDelivery(ctx context.Context, matchID string) (*ir.Snapshot, error) {
	return e.apply(ctx, feed.EventDeliveryUndone, func(ctx context.Context, q *store.Queries) (string, string, error) {
		state, err := q.LoadMatchState(ctx, matchID)
		if err != nil {
			return "", "", mapStoreError(err)
		}
		m := state.Match
		if m.Status == ir.MatchAbandoned {
			return "", "", &ScoringError{
				Code:    CodeInvalidTransition,
				Message: "match is abandoned",
				MatchID: m.ID,
			}
		}

		inn, ok := state.CurrentInnings()
		if !ok {
			inn, ok = state.LatestInnings()
		}
		if !ok {
			return "", "", &ScoringError{
				Code:    CodeEmptyLedger,
				Message: "no innings has started",
				MatchID: m.ID,
			}
		}

		ledger := NewLedger(q)
		removed, err := ledger.RemoveLast(ctx, inn.ID)
		if err != nil {
			if se, ok := err.(*ScoringError); ok {
				se.forInnings(m.ID, inn.ID)
			}
			return "", "", err
		}
		entries, err := ledger.Entries(ctx, inn.ID)
		if err != nil {
			return "", "", err
		}

		// Reopen before folding; recompute closes it again only if the
		// remaining ledger still demands it.
		inn.Status = ir.InningsInProgress
		inn.CloseReason = ir.CloseNone
		inn = recompute(m, inn, entries)
		if err := q.UpdateInningsState(ctx, inn); err != nil {
			return "", "", err
		}

		if m.Status == ir.MatchCompleted && inn.Active() {
			m.Status = ir.MatchLive
			m.Outcome = ir.OutcomeNone
			m.WinnerTeamID = ""
			if err := q.UpdateMatchState(ctx, m); err != nil {
				return "", "", err
			}
		}

		if err := q.PutRoles(ctx, RolesAt(removed)); err != nil {
			return "", "", err
		}

		e.logger.Info("delivery undone",
			"innings", inn.ID,
			"seq", removed.Seq,
			"ball", removed.Label(),
			"runs", inn.Runs,
			"wickets", inn.Wickets)
		return m.ID, inn.ID, nil
	})
}
