package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/ir"
)

// ball builds a delivery with the default pair a/b facing bowler x.
func ball(runs int, extra ir.ExtraType, wicket ir.WicketType) ir.Delivery {
	return ir.Delivery{
		RunsOffBat:   runs,
		Extra:        extra,
		Wicket:       wicket,
		StrikerID:    "a",
		NonStrikerID: "b",
		BowlerID:     "x",
	}
}

func dot() ir.Delivery { return ball(0, ir.ExtraNone, ir.WicketNone) }

func TestOversDisplay(t *testing.T) {
	tests := []struct {
		balls int
		want  string
	}{
		{0, "0.0"},
		{5, "0.5"},
		{6, "1.0"},
		{111, "18.3"},
		{120, "20.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OversDisplay(tt.balls))
	}
}

func TestCurrentRunRate(t *testing.T) {
	assert.Equal(t, 0.0, CurrentRunRate(0, 0))
	assert.Equal(t, 0.0, CurrentRunRate(5, 0), "no legal balls yet")
	// 135 runs at 18.3 overs uses 111/6 = 18.5 overs, not 18.3.
	assert.InDelta(t, 7.297, CurrentRunRate(135, 111), 0.001)
	assert.InDelta(t, 6.0, CurrentRunRate(36, 36), 1e-9)
}

func TestRequiredRunRate(t *testing.T) {
	rate, ok := RequiredRunRate(151, 120, 96, 20)
	require.True(t, ok)
	assert.InDelta(t, 7.75, rate, 1e-9)

	_, ok = RequiredRunRate(151, 120, 120, 20)
	assert.False(t, ok, "undefined with no balls remaining")

	_, ok = RequiredRunRate(151, 120, 125, 20)
	assert.False(t, ok)

	rate, ok = RequiredRunRate(151, 155, 100, 20)
	require.True(t, ok)
	assert.Equal(t, 0.0, rate)
}

func TestPartnership_SinceLastWicket(t *testing.T) {
	entries := []ir.Delivery{
		ball(4, ir.ExtraNone, ir.WicketNone),
		ball(0, ir.ExtraNone, ir.WicketBowled),
		ball(1, ir.ExtraNone, ir.WicketNone),
		ball(0, ir.ExtraWide, ir.WicketNone),
		ball(3, ir.ExtraNone, ir.WicketNone),
	}
	p := Partnership(entries)
	assert.Equal(t, 4, p.Runs)
	assert.Equal(t, 2, p.Balls, "wide is not a legal ball")
}

func TestPartnership_FromInningsStart(t *testing.T) {
	p := Partnership([]ir.Delivery{ball(2, ir.ExtraNone, ir.WicketNone), ball(1, ir.ExtraLegBye, ir.WicketNone)})
	assert.Equal(t, 3, p.Runs)
	assert.Equal(t, 2, p.Balls)

	assert.Equal(t, ir.Partnership{}, Partnership(nil))
	assert.Equal(t, ir.Partnership{}, Partnership([]ir.Delivery{ball(0, ir.ExtraNone, ir.WicketCaught)}))
}

func TestBowlerFigures(t *testing.T) {
	entries := []ir.Delivery{
		ball(4, ir.ExtraNone, ir.WicketNone),
		ball(0, ir.ExtraWide, ir.WicketNone),
		ball(2, ir.ExtraBye, ir.WicketNone),
		ball(0, ir.ExtraNone, ir.WicketCaught),
		ball(1, ir.ExtraNoBall, ir.WicketNone),
		ball(0, ir.ExtraNone, ir.WicketRunOut),
		ball(1, ir.ExtraLegBye, ir.WicketNone),
	}
	other := ball(6, ir.ExtraNone, ir.WicketNone)
	other.BowlerID = "y"
	entries = append(entries, other)

	f := BowlerFigures(entries, "x")
	assert.Equal(t, 5, f.LegalBalls)
	assert.Equal(t, "0.5", f.Overs)
	assert.Equal(t, 4+1+2, f.RunsConceded, "byes and leg-byes excluded")
	assert.Equal(t, 1, f.Wickets, "run out not credited")
	assert.Equal(t, 1, f.Wides)
	assert.Equal(t, 1, f.NoBalls)
	assert.InDelta(t, 8.4, f.Economy, 1e-9)

	none := BowlerFigures(entries, "z")
	assert.Equal(t, 0.0, none.Economy)
	assert.Equal(t, "0.0", none.Overs)
}

func TestBattingFigures(t *testing.T) {
	entries := []ir.Delivery{
		ball(4, ir.ExtraNone, ir.WicketNone),
		ball(6, ir.ExtraNone, ir.WicketNone),
		ball(1, ir.ExtraWide, ir.WicketNone),
		ball(2, ir.ExtraNoBall, ir.WicketNone),
		ball(1, ir.ExtraBye, ir.WicketNone),
		ball(0, ir.ExtraNone, ir.WicketLBW),
	}

	f := BattingFigures(entries, "a")
	assert.Equal(t, 12, f.Runs)
	assert.Equal(t, 4, f.Balls)
	assert.Equal(t, 1, f.Fours)
	assert.Equal(t, 1, f.Sixes)
	assert.InDelta(t, 300.0, f.StrikeRate, 1e-9)
	assert.True(t, f.Out)
	assert.Equal(t, ir.WicketLBW, f.HowOut)

	b := BattingFigures(entries, "b")
	assert.Equal(t, 0, b.Balls)
	assert.Equal(t, 0.0, b.StrikeRate)
	assert.False(t, b.Out)
}

func TestBattingFigures_RunOutNonStriker(t *testing.T) {
	d := ball(1, ir.ExtraNone, ir.WicketRunOut)
	d.OutPlayerID = "b"
	f := BattingFigures([]ir.Delivery{d}, "b")
	assert.True(t, f.Out)
	assert.False(t, BattingFigures([]ir.Delivery{d}, "a").Out)
}

func TestExtras(t *testing.T) {
	e := Extras([]ir.Delivery{
		ball(0, ir.ExtraWide, ir.WicketNone),
		ball(4, ir.ExtraWide, ir.WicketNone),
		ball(2, ir.ExtraNoBall, ir.WicketNone),
		ball(1, ir.ExtraBye, ir.WicketNone),
		ball(2, ir.ExtraLegBye, ir.WicketNone),
		dot(),
	})
	assert.Equal(t, ir.Extras{Wides: 6, NoBalls: 1, Byes: 1, LegByes: 2, Total: 10}, e)
}

func TestSummarize_FirstInnings(t *testing.T) {
	m := ir.Match{OversLimit: 20, TeamSize: 11}
	entries := []ir.Delivery{ball(4, ir.ExtraNone, ir.WicketNone), dot()}
	inn := ir.Innings{ID: "i1", Number: 1, Runs: 4, LegalBalls: 2}

	s := Summarize(m, inn, entries)
	assert.Equal(t, "0.2", s.Overs)
	assert.InDelta(t, 12.0, s.CurrentRunRate, 1e-9)
	assert.Nil(t, s.RequiredRunRate)
	assert.Nil(t, s.Target)
	assert.Equal(t, 118, s.BallsRemaining)
	require.Len(t, s.Batting, 2)
	assert.Equal(t, "a", s.Batting[0].PlayerID)
	require.Len(t, s.Bowling, 1)
}

func TestSummarize_Chase(t *testing.T) {
	target := 151
	m := ir.Match{OversLimit: 20, TeamSize: 11, TargetScore: &target}
	inn := ir.Innings{ID: "i2", Number: 2, Runs: 120, LegalBalls: 96}

	s := Summarize(m, inn, nil)
	require.NotNil(t, s.RequiredRunRate)
	assert.InDelta(t, 7.75, *s.RequiredRunRate, 1e-9)
	require.NotNil(t, s.RunsNeeded)
	assert.Equal(t, 31, *s.RunsNeeded)
	assert.Equal(t, 24, s.BallsRemaining)
	assert.NotNil(t, s.Batting)
	assert.Empty(t, s.Batting)

	inn.LegalBalls = 120
	s = Summarize(m, inn, nil)
	assert.Nil(t, s.RequiredRunRate, "no balls remain")
	assert.Equal(t, 0, s.BallsRemaining)
}
