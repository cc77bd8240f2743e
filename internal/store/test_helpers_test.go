package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTeam inserts a team with n players named <id>-p1..pn.
func createTestTeam(t *testing.T, s *Store, id string, n int) ir.Team {
	t.Helper()
	team := ir.Team{ID: id, Name: "Team " + id}
	for i := 1; i <= n; i++ {
		pid := id + "-p" + string(rune('0'+i))
		team.Players = append(team.Players, ir.Player{ID: pid, TeamID: id, Name: "Player " + pid})
	}
	require.NoError(t, s.CreateTeam(context.Background(), team))
	return team
}

// createTestMatch inserts two teams and a scheduled T20 match between them.
func createTestMatch(t *testing.T, s *Store) ir.Match {
	t.Helper()
	createTestTeam(t, s, "t1", 3)
	createTestTeam(t, s, "t2", 3)
	m := ir.Match{
		ID:                "m1",
		Team1ID:           "t1",
		Team2ID:           "t2",
		Venue:             "Eden Park",
		ScheduledDate:     "2026-03-01",
		Format:            "t20",
		OversLimit:        20,
		TeamSize:          11,
		MaxOversPerBowler: 4,
		Status:            ir.MatchScheduled,
	}
	require.NoError(t, s.CreateMatch(context.Background(), m))
	return m
}

// createTestInnings inserts innings number n of match m1 with t1 batting.
func createTestInnings(t *testing.T, s *Store, id string, n int) ir.Innings {
	t.Helper()
	inn := ir.Innings{
		ID:            id,
		MatchID:       "m1",
		Number:        n,
		BattingTeamID: "t1",
		BowlingTeamID: "t2",
		Status:        ir.InningsInProgress,
	}
	require.NoError(t, s.CreateInnings(context.Background(), inn))
	return inn
}

func testDelivery(id, inningsID string, over, ball, runs int) ir.Delivery {
	return ir.Delivery{
		ID:           id,
		InningsID:    inningsID,
		OverNumber:   over,
		BallNumber:   ball,
		RunsOffBat:   runs,
		Extra:        ir.ExtraNone,
		Wicket:       ir.WicketNone,
		StrikerID:    "t1-p1",
		NonStrikerID: "t1-p2",
		BowlerID:     "t2-p1",
	}
}
