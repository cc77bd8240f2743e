package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

func finalResult() (*Result, map[string]string) {
	target := 41
	needed := 0
	snap := &ir.Snapshot{
		Match: ir.Match{
			ID:           "m1",
			Team1ID:      "t1",
			Team2ID:      "t2",
			Status:       ir.MatchCompleted,
			TargetScore:  &target,
			Outcome:      ir.OutcomeWin,
			WinnerTeamID: "t2",
		},
		Innings: []ir.Innings{
			{ID: "i1", Number: 1, Status: ir.InningsCompleted, Runs: 40, Wickets: 2, LegalBalls: 12, CloseReason: ir.CloseOversExhausted},
			{ID: "i2", Number: 2, Status: ir.InningsCompleted, Runs: 42, Wickets: 1, LegalBalls: 9, CloseReason: ir.CloseTargetReached},
		},
		Stats: []ir.InningsStats{
			{InningsID: "i1", Number: 1, Overs: "2.0"},
			{
				InningsID:  "i2",
				Number:     2,
				Overs:      "1.3",
				Target:     &target,
				RunsNeeded: &needed,
				Extras:     ir.Extras{Wides: 2, Total: 2},
				Batting: []ir.BattingFigures{
					{PlayerID: "p1", Runs: 30, Balls: 6, Sixes: 3, StrikeRate: 500, Out: true, HowOut: ir.WicketCaught},
					{PlayerID: "p2", Runs: 10, Balls: 3, StrikeRate: 333.3333333333333},
				},
				Bowling: []ir.BowlingFigures{
					{PlayerID: "p3", LegalBalls: 9, Overs: "1.3", RunsConceded: 42, Wickets: 1, Economy: 28},
				},
			},
		},
		Current: &ir.LiveContext{InningsID: "i2", StrikerID: "p2", BowlerID: "p3"},
	}
	result := NewResult()
	result.Final = snap
	result.Trace = []TraceEvent{
		{Step: 1, Op: "ball", Result: "OUT_OF_SEQUENCE"},
		{Step: 2, Op: "ball", Result: ResultOK},
		{Step: 3, Op: "ball", Result: "OUT_OF_SEQUENCE"},
	}
	names := map[string]string{"t1": Home, "t2": Away, "p1": "A1", "p2": "A2", "p3": "H1"}
	return result, names
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	result, names := finalResult()
	assertions := []Assertion{
		{Type: AssertMatch, Expect: map[string]any{"status": "completed", "outcome": "win", "winner": "away", "target": 41}},
		{Type: AssertInnings, Innings: 1, Expect: map[string]any{"runs": 40, "overs": "2.0", "close_reason": "overs_exhausted", "target": "none"}},
		{Type: AssertInnings, Innings: 2, Expect: map[string]any{"runs": 42, "extras": 2, "runs_needed": 0}},
		{Type: AssertBatter, Innings: 2, Player: "A1", Expect: map[string]any{"runs": 30, "strike_rate": 500, "out": true, "how_out": "caught"}},
		{Type: AssertBatter, Innings: 2, Player: "A2", Expect: map[string]any{"out": false, "how_out": "none"}},
		{Type: AssertBowler, Innings: 2, Player: "H1", Expect: map[string]any{"wickets": 1, "economy": 28}},
		{Type: AssertRoles, Expect: map[string]any{"striker": "A2", "non_striker": "", "bowler": "H1"}},
		{Type: AssertRejections, Code: "OUT_OF_SEQUENCE", Count: 2},
		{Type: AssertRejections, Code: "EMPTY_LEDGER", Count: 0},
	}

	assert.Empty(t, EvaluateAssertions(result, assertions, names))
}

func TestEvaluateAssertions_Mismatches(t *testing.T) {
	result, names := finalResult()
	assertions := []Assertion{
		{Type: AssertMatch, Expect: map[string]any{"winner": "home"}},
		{Type: AssertInnings, Innings: 2, Expect: map[string]any{"wickets": 3, "runs": 42}},
		{Type: AssertBatter, Innings: 1, Player: "A1", Expect: map[string]any{"runs": 1}},
		{Type: AssertRejections, Code: "OUT_OF_SEQUENCE", Count: 1},
		{Type: AssertInnings, Innings: 2, Expect: map[string]any{"colour": "red"}},
	}

	errs := EvaluateAssertions(result, assertions, names)
	require.Len(t, errs, 5)
	assert.Equal(t, "assertions[0] (match): winner: expected home, got away", errs[0])
	assert.Equal(t, "assertions[1] (innings): wickets: expected 3, got 1", errs[1])
	assert.Equal(t, "assertions[2] (batter): A1 has no figures in innings 1", errs[2])
	assert.Equal(t, "assertions[3] (rejections): OUT_OF_SEQUENCE: expected 1 rejections, got 2", errs[3])
	assert.Equal(t, `assertions[4] (innings): unknown field "colour"`, errs[4])
}

func TestEvaluateAssertions_MissingState(t *testing.T) {
	result := NewResult()
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertMatch, Expect: map[string]any{"status": "live"}},
		{Type: AssertRejections, Code: "EMPTY_LEDGER", Count: 0},
	}, nil)
	assert.Equal(t, []string{"assertions[0] (match): no final snapshot"}, errs)

	result, names := finalResult()
	result.Final.Innings = result.Final.Innings[:1]
	result.Final.Current = nil
	errs = EvaluateAssertions(result, []Assertion{
		{Type: AssertInnings, Innings: 2, Expect: map[string]any{"runs": 1}},
		{Type: AssertRoles, Expect: map[string]any{"striker": "A1"}},
	}, names)
	assert.Equal(t, []string{
		"assertions[0] (innings): innings 2 has not started",
		"assertions[1] (roles): no innings has started",
	}, errs)
}
