package store

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/ir"
)

// MatchState is everything stored for one match: the match row, its innings
// in order, each innings ledger and each role assignment. It is the input to
// snapshot assembly and replay verification.
type MatchState struct {
	Match   ir.Match
	Innings []ir.Innings
	Ledgers map[string][]ir.Delivery
	Roles   map[string]ir.RoleAssignment
	Players map[string]ir.Player
}

// LoadMatchState reads the complete stored state of a match.
func (q *Queries) LoadMatchState(ctx context.Context, matchID string) (MatchState, error) {
	var state MatchState

	m, err := q.GetMatch(ctx, matchID)
	if err != nil {
		return state, fmt.Errorf("load match state: %w", err)
	}
	state.Match = m

	innings, err := q.ListInnings(ctx, matchID)
	if err != nil {
		return state, fmt.Errorf("load match state: %w", err)
	}
	state.Innings = innings

	state.Ledgers = make(map[string][]ir.Delivery, len(innings))
	state.Roles = make(map[string]ir.RoleAssignment, len(innings))
	for _, inn := range innings {
		entries, err := q.ListDeliveries(ctx, inn.ID)
		if err != nil {
			return state, fmt.Errorf("load match state: %w", err)
		}
		state.Ledgers[inn.ID] = entries

		roles, err := q.GetRoles(ctx, inn.ID)
		if err != nil {
			return state, fmt.Errorf("load match state: %w", err)
		}
		state.Roles[inn.ID] = roles
	}

	state.Players = make(map[string]ir.Player)
	for _, teamID := range []string{m.Team1ID, m.Team2ID} {
		players, err := q.ListPlayers(ctx, teamID)
		if err != nil {
			return state, fmt.Errorf("load match state: %w", err)
		}
		for _, p := range players {
			state.Players[p.ID] = p
		}
	}

	return state, nil
}

// CurrentInnings returns the innings in progress, if any.
func (s MatchState) CurrentInnings() (ir.Innings, bool) {
	for _, inn := range s.Innings {
		if inn.Active() {
			return inn, true
		}
	}
	return ir.Innings{}, false
}

// LatestInnings returns the highest-numbered innings, if any.
func (s MatchState) LatestInnings() (ir.Innings, bool) {
	if len(s.Innings) == 0 {
		return ir.Innings{}, false
	}
	return s.Innings[len(s.Innings)-1], true
}
