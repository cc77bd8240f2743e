package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraTypeRules(t *testing.T) {
	tests := []struct {
		extra    ExtraType
		legal    bool
		penalty  int
		toBowler bool
		toBatter bool
	}{
		{ExtraNone, true, 0, true, true},
		{ExtraWide, false, 1, true, false},
		{ExtraNoBall, false, 1, true, true},
		{ExtraBye, true, 0, false, false},
		{ExtraLegBye, true, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.extra), func(t *testing.T) {
			assert.Equal(t, tt.legal, tt.extra.IsLegal())
			assert.Equal(t, tt.penalty, tt.extra.PenaltyRuns())
			assert.Equal(t, tt.toBowler, tt.extra.ChargedToBowler())
			assert.Equal(t, tt.toBatter, tt.extra.CreditedToBatter())
		})
	}
}

func TestParseExtraType(t *testing.T) {
	e, err := ParseExtraType("")
	require.NoError(t, err)
	assert.Equal(t, ExtraNone, e)

	e, err = ParseExtraType("leg_bye")
	require.NoError(t, err)
	assert.Equal(t, ExtraLegBye, e)

	_, err = ParseExtraType("overthrow")
	require.Error(t, err)
}

func TestWicketTypeRules(t *testing.T) {
	assert.False(t, WicketNone.Fell())
	assert.True(t, WicketRetiredHurt.Fell())
	assert.False(t, WicketRetiredHurt.Dismissal())
	assert.True(t, WicketRunOut.Dismissal())
	assert.False(t, WicketRunOut.CreditedToBowler())
	assert.True(t, WicketStumped.CreditedToBowler())

	assert.True(t, WicketStumped.AllowedWith(ExtraWide))
	assert.False(t, WicketBowled.AllowedWith(ExtraWide))
	assert.True(t, WicketRunOut.AllowedWith(ExtraNoBall))
	assert.False(t, WicketCaught.AllowedWith(ExtraNoBall))
	assert.True(t, WicketCaught.AllowedWith(ExtraBye))
}

func TestInningsNextPosition(t *testing.T) {
	tests := []struct {
		legal      int
		over, ball int
	}{
		{0, 0, 1},
		{5, 0, 6},
		{6, 1, 1},
		{111, 18, 4},
	}
	for _, tt := range tests {
		over, ball := Innings{LegalBalls: tt.legal}.NextPosition()
		assert.Equal(t, tt.over, over, "legal=%d", tt.legal)
		assert.Equal(t, tt.ball, ball, "legal=%d", tt.legal)
	}
}

func TestRoleAssignmentHelpers(t *testing.T) {
	r := RoleAssignment{InningsID: "i1"}
	assert.False(t, r.Complete())
	assert.Equal(t, []Role{RoleStriker, RoleNonStriker, RoleBowler}, r.Missing())

	r = r.With(RoleStriker, "a").With(RoleNonStriker, "b").With(RoleBowler, "x")
	assert.True(t, r.Complete())
	assert.Empty(t, r.Missing())

	swapped := r.SwapEnds()
	assert.Equal(t, "b", swapped.Get(RoleStriker))
	assert.Equal(t, "a", swapped.Get(RoleNonStriker))
	assert.Equal(t, "x", swapped.Get(RoleBowler))
}

func TestMatchHelpers(t *testing.T) {
	m := Match{Team1ID: "t1", Team1Name: "Lions", Team2ID: "t2", Team2Name: "Tigers", TeamSize: 11, OversLimit: 20}
	assert.True(t, m.HasTeam("t2"))
	assert.False(t, m.HasTeam(""))
	assert.Equal(t, "Tigers", m.TeamName("t2"))
	assert.Equal(t, 10, m.WicketCap())
	assert.Equal(t, 120, m.BallLimit())
	assert.Equal(t, "3.4", Delivery{OverNumber: 3, BallNumber: 4}.Label())
}
