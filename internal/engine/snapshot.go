package engine

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/stats"
	"github.com/roach88/crease/internal/store"
)

// LiveSnapshot returns the complete current view of a match.
func (e *Engine) LiveSnapshot(ctx context.Context, matchID string) (*ir.Snapshot, error) {
	return e.snapshot(ctx, e.store.Queries, matchID)
}

func (e *Engine) snapshot(ctx context.Context, q *store.Queries, matchID string) (*ir.Snapshot, error) {
	state, err := q.LoadMatchState(ctx, matchID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return BuildSnapshot(state, e.recentBalls)
}

// BuildSnapshot assembles a snapshot from stored match state. The live
// context follows the innings in progress, or else the latest innings, and
// carries up to recent deliveries, most recent first.
func BuildSnapshot(state store.MatchState, recent int) (*ir.Snapshot, error) {
	snap := &ir.Snapshot{
		Match:   state.Match,
		Innings: state.Innings,
		Stats:   make([]ir.InningsStats, 0, len(state.Innings)),
		Players: make(map[string]string, len(state.Players)),
	}
	if snap.Innings == nil {
		snap.Innings = []ir.Innings{}
	}
	for id, p := range state.Players {
		snap.Players[id] = p.Name
	}
	for _, inn := range state.Innings {
		snap.Stats = append(snap.Stats, stats.Summarize(state.Match, inn, state.Ledgers[inn.ID]))
	}

	cur, ok := state.CurrentInnings()
	if !ok {
		cur, ok = state.LatestInnings()
	}
	if ok {
		entries := state.Ledgers[cur.ID]
		roles := state.Roles[cur.ID]
		over, ball := cur.NextPosition()
		snap.Current = &ir.LiveContext{
			InningsID:    cur.ID,
			StrikerID:    roles.StrikerID,
			NonStrikerID: roles.NonStrikerID,
			BowlerID:     roles.BowlerID,
			RecentBalls:  recentBalls(entries, recent),
			NextOver:     over,
			NextBall:     ball,
			Partnership:  stats.Partnership(entries),
		}
	}

	version, err := ir.SnapshotVersion(state.Match, state.Innings, state.Ledgers, state.Roles)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	snap.Version = version
	return snap, nil
}

// recentBalls returns the last n entries, most recent first.
func recentBalls(entries []ir.Delivery, n int) []ir.Delivery {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]ir.Delivery, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}
