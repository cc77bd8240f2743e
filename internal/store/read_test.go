package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTeam_RosterOrder(t *testing.T) {
	s := createTestStore(t)
	createTestTeam(t, s, "t1", 3)

	team, err := s.GetTeam(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, team.Players, 3)
	assert.Equal(t, "t1-p1", team.Players[0].ID)
	assert.Equal(t, "t1-p3", team.Players[2].ID)
}

func TestGet_NotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.GetTeam(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetMatch(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetInnings(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPlayer(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDeliveries_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)

	entries, err := s.ListDeliveries(context.Background(), "i1")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLastDelivery(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)

	_, ok, err := s.LastDelivery(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.InsertDelivery(ctx, testDelivery("d1", "i1", 0, 1, 1))
	require.NoError(t, err)
	_, err = s.InsertDelivery(ctx, testDelivery("d2", "i1", 0, 2, 6))
	require.NoError(t, err)

	last, ok, err := s.LastDelivery(ctx, "i1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "d2", last.ID)
	assert.Equal(t, 6, last.RunsOffBat)
}

func TestListMatches(t *testing.T) {
	s := createTestStore(t)
	createTestMatch(t, s)

	matches, err := s.ListMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Team t2", matches[0].Team2Name)
	assert.Nil(t, matches[0].TargetScore)
}

func TestLoadMatchState_Read(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)
	_, err := s.InsertDelivery(ctx, testDelivery("d1", "i1", 0, 1, 2))
	require.NoError(t, err)

	state, err := s.LoadMatchState(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, state.Innings, 1)
	assert.Len(t, state.Ledgers["i1"], 1)
	assert.Equal(t, "i1", state.Roles["i1"].InningsID)
	assert.Len(t, state.Players, 6)

	cur, ok := state.CurrentInnings()
	require.True(t, ok)
	assert.Equal(t, "i1", cur.ID)

	_, err = s.LoadMatchState(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
