package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

func createInningsRow(id string) ir.Innings {
	return ir.Innings{
		ID:            id,
		MatchID:       "m1",
		Number:        1,
		BattingTeamID: "t1",
		BowlingTeamID: "t2",
		Status:        ir.InningsInProgress,
	}
}

func TestInsertDelivery_AssignsIncreasingSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)

	for i, id := range []string{"d1", "d2", "d3"} {
		d, err := s.InsertDelivery(ctx, testDelivery(id, "i1", 0, i+1, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), d.Seq)
	}
}

func TestInsertDelivery_SeqPerInnings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)
	createTestInnings(t, s, "i2", 2)

	_, err := s.InsertDelivery(ctx, testDelivery("d1", "i1", 0, 1, 0))
	require.NoError(t, err)
	d, err := s.InsertDelivery(ctx, testDelivery("d2", "i2", 0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Seq, "each innings has its own sequence")
}

func TestInsertDelivery_SeqAfterRemoval(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)

	_, err := s.InsertDelivery(ctx, testDelivery("d1", "i1", 0, 1, 0))
	require.NoError(t, err)
	_, err = s.InsertDelivery(ctx, testDelivery("d2", "i1", 0, 2, 0))
	require.NoError(t, err)
	require.NoError(t, s.DeleteDelivery(ctx, "d2"))

	d, err := s.InsertDelivery(ctx, testDelivery("d3", "i1", 0, 2, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Seq)
}

func TestInsertDelivery_UnknownInnings(t *testing.T) {
	s := createTestStore(t)
	_, err := s.InsertDelivery(context.Background(), testDelivery("d1", "nope", 0, 1, 0))
	require.Error(t, err)
	assert.True(t, IsConstraint(err))
}

func TestDeleteDelivery_Missing(t *testing.T) {
	s := createTestStore(t)
	err := s.DeleteDelivery(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMatchState(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	m := createTestMatch(t, s)

	target := 151
	m.Status = ir.MatchCompleted
	m.TargetScore = &target
	m.WinnerTeamID = "t2"
	m.Outcome = ir.OutcomeWin
	require.NoError(t, s.UpdateMatchState(ctx, m))

	got, err := s.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, ir.MatchCompleted, got.Status)
	require.NotNil(t, got.TargetScore)
	assert.Equal(t, 151, *got.TargetScore)
	assert.Equal(t, "t2", got.WinnerTeamID)
	assert.Equal(t, "Team t1", got.Team1Name)
}

func TestUpdateInningsState(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	inn := createTestInnings(t, s, "i1", 1)

	inn.Runs, inn.Wickets, inn.LegalBalls = 87, 3, 61
	inn.Status = ir.InningsCompleted
	inn.CloseReason = ir.CloseAbandoned
	require.NoError(t, s.UpdateInningsState(ctx, inn))

	got, err := s.GetInnings(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, inn, got)

	inn.ID = "missing"
	require.ErrorIs(t, s.UpdateInningsState(ctx, inn), ErrNotFound)
}

func TestCreateInnings_DuplicateNumber(t *testing.T) {
	s := createTestStore(t)
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)

	dup := createInningsRow("i1b")
	err := s.CreateInnings(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, IsConstraint(err))
}

func TestPutRoles_Upsert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)

	r, err := s.GetRoles(ctx, "i1")
	require.NoError(t, err)
	assert.False(t, r.Complete(), "new innings starts with no roles")

	r = r.With(ir.RoleStriker, "t1-p1")
	require.NoError(t, s.PutRoles(ctx, r))
	r = r.With(ir.RoleBowler, "t2-p1")
	require.NoError(t, s.PutRoles(ctx, r))

	got, err := s.GetRoles(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "t1-p1", got.StrikerID)
	assert.Equal(t, "t2-p1", got.BowlerID)
	assert.Empty(t, got.NonStrikerID)
}

func TestDeleteMatch_CascadesAndIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)
	createTestInnings(t, s, "i1", 1)
	_, err := s.InsertDelivery(ctx, testDelivery("d1", "i1", 0, 1, 4))
	require.NoError(t, err)

	existed, err := s.DeleteMatch(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.DeleteMatch(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, existed)

	entries, err := s.ListDeliveries(ctx, "i1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteTeam_InUse(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestMatch(t, s)

	_, err := s.DeleteTeam(ctx, "t1")
	require.ErrorIs(t, err, ErrInUse)

	_, err = s.DeleteMatch(ctx, "m1")
	require.NoError(t, err)

	existed, err := s.DeleteTeam(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, existed)

	players, err := s.ListPlayers(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, players, "roster is removed with the team")
}
