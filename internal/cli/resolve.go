package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/ir"
)

// resolvePlayer finds a player by id or, case-insensitively, by name.
func resolvePlayer(snap *ir.Snapshot, ref string) (string, error) {
	if _, ok := snap.Players[ref]; ok {
		return ref, nil
	}
	var found []string
	for id, name := range snap.Players {
		if strings.EqualFold(name, ref) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", &engine.ScoringError{
			Code:    engine.CodeValidationFailed,
			Message: fmt.Sprintf("no player %q in this match", ref),
			Field:   "player_id",
		}
	}
	sort.Strings(found)
	return "", &engine.ScoringError{
		Code:    engine.CodeValidationFailed,
		Message: fmt.Sprintf("%q matches several players, use an id: %s", ref, strings.Join(found, ", ")),
		Field:   "player_id",
	}
}

// resolveTeam finds one of the match's sides by id or name.
func resolveTeam(m ir.Match, ref string) (string, error) {
	switch {
	case ref == m.Team1ID || strings.EqualFold(ref, m.Team1Name):
		return m.Team1ID, nil
	case ref == m.Team2ID || strings.EqualFold(ref, m.Team2Name):
		return m.Team2ID, nil
	}
	return "", &engine.ScoringError{
		Code:    engine.CodeValidationFailed,
		Message: fmt.Sprintf("%q is not playing this match", ref),
		Field:   "batting_team_id",
	}
}

func otherTeam(m ir.Match, teamID string) string {
	if teamID == m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}

// currentInnings is the innings operator commands act on.
func currentInnings(snap *ir.Snapshot) (string, error) {
	if snap.Current == nil {
		return "", &engine.ScoringError{
			Code:    engine.CodeInvalidTransition,
			Message: "no innings has started",
			MatchID: snap.Match.ID,
		}
	}
	return snap.Current.InningsID, nil
}
