// Package stats derives match statistics from an innings ledger.
//
// Every function here is pure: the same ledger always yields the same
// figures, and nothing is cached between calls. Ball counts feed arithmetic
// as legalBalls/6.0; the "overs.balls" notation is for display only.
package stats

import (
	"strconv"

	"github.com/roach88/crease/internal/ir"
)

// OversDisplay renders legal balls in cricket notation: 111 balls is "18.3".
func OversDisplay(legalBalls int) string {
	return strconv.Itoa(legalBalls/ir.BallsPerOver) + "." + strconv.Itoa(legalBalls%ir.BallsPerOver)
}

// Overs converts legal balls to fractional overs for arithmetic.
func Overs(legalBalls int) float64 {
	return float64(legalBalls) / float64(ir.BallsPerOver)
}

// CurrentRunRate is runs per over. Zero before the first legal ball.
func CurrentRunRate(runs, legalBalls int) float64 {
	if legalBalls == 0 {
		return 0
	}
	return float64(runs) / Overs(legalBalls)
}

// RequiredRunRate is the rate the chasing side needs over the balls that
// remain. ok is false when no balls remain, where the rate is undefined.
// Once the target is reached the rate is zero.
func RequiredRunRate(target, runs, legalBalls, oversLimit int) (rate float64, ok bool) {
	remaining := oversLimit*ir.BallsPerOver - legalBalls
	if remaining <= 0 {
		return 0, false
	}
	needed := target - runs
	if needed <= 0 {
		return 0, true
	}
	return float64(needed) / Overs(remaining), true
}

// Partnership is the stand since the later of the innings start and the most
// recent wicket. The wicket delivery itself closes the previous stand.
func Partnership(entries []ir.Delivery) ir.Partnership {
	start := 0
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Wicket.Fell() {
			start = i + 1
			break
		}
	}

	var p ir.Partnership
	for _, d := range entries[start:] {
		p.Runs += d.RunsOffBat
		if d.IsLegal() {
			p.Balls++
		}
	}
	return p
}

// BowlerFigures summarises one bowler's spell. Byes and leg-byes are not
// charged; wides and no-balls are, including their penalty run.
func BowlerFigures(entries []ir.Delivery, bowlerID string) ir.BowlingFigures {
	f := ir.BowlingFigures{PlayerID: bowlerID}
	for _, d := range entries {
		if d.BowlerID != bowlerID {
			continue
		}
		if d.IsLegal() {
			f.LegalBalls++
		}
		if d.Extra.ChargedToBowler() {
			f.RunsConceded += d.TotalRuns()
		}
		if d.Wicket.CreditedToBowler() {
			f.Wickets++
		}
		switch d.Extra {
		case ir.ExtraWide:
			f.Wides++
		case ir.ExtraNoBall:
			f.NoBalls++
		}
	}
	f.Overs = OversDisplay(f.LegalBalls)
	if f.LegalBalls > 0 {
		f.Economy = float64(f.RunsConceded) / Overs(f.LegalBalls)
	}
	return f
}

// BattingFigures summarises one batter's innings. Only legal deliveries
// count as balls faced.
func BattingFigures(entries []ir.Delivery, batterID string) ir.BattingFigures {
	f := ir.BattingFigures{PlayerID: batterID}
	for _, d := range entries {
		if d.StrikerID == batterID {
			if d.Extra.CreditedToBatter() {
				f.Runs += d.RunsOffBat
				switch d.RunsOffBat {
				case 4:
					f.Fours++
				case 6:
					f.Sixes++
				}
			}
			if d.IsLegal() {
				f.Balls++
			}
		}
		if d.Wicket.Fell() && outPlayer(d) == batterID {
			f.Out = d.Wicket.Dismissal()
			f.HowOut = d.Wicket
		}
	}
	if f.Balls > 0 {
		f.StrikeRate = float64(f.Runs) * 100 / float64(f.Balls)
	}
	return f
}

// Extras breaks down the runs not credited to a batter.
func Extras(entries []ir.Delivery) ir.Extras {
	var e ir.Extras
	for _, d := range entries {
		switch d.Extra {
		case ir.ExtraWide:
			e.Wides += d.TotalRuns()
		case ir.ExtraNoBall:
			e.NoBalls += d.Extra.PenaltyRuns()
		case ir.ExtraBye:
			e.Byes += d.RunsOffBat
		case ir.ExtraLegBye:
			e.LegByes += d.RunsOffBat
		}
	}
	e.Total = e.Wides + e.NoBalls + e.Byes + e.LegByes
	return e
}

// Summarize computes the full statistics block for an innings. The innings
// counters are taken as given; callers pass an innings already folded from
// entries.
func Summarize(m ir.Match, inn ir.Innings, entries []ir.Delivery) ir.InningsStats {
	s := ir.InningsStats{
		InningsID:      inn.ID,
		Number:         inn.Number,
		Runs:           inn.Runs,
		Wickets:        inn.Wickets,
		LegalBalls:     inn.LegalBalls,
		Overs:          OversDisplay(inn.LegalBalls),
		CurrentRunRate: CurrentRunRate(inn.Runs, inn.LegalBalls),
		BallsRemaining: max(m.BallLimit()-inn.LegalBalls, 0),
		Partnership:    Partnership(entries),
		Extras:         Extras(entries),
		Batting:        []ir.BattingFigures{},
		Bowling:        []ir.BowlingFigures{},
	}

	if inn.Number == ir.InningsPerMatch && m.TargetScore != nil {
		target := *m.TargetScore
		s.Target = &target
		needed := max(target-inn.Runs, 0)
		s.RunsNeeded = &needed
		if rrr, ok := RequiredRunRate(target, inn.Runs, inn.LegalBalls, m.OversLimit); ok {
			s.RequiredRunRate = &rrr
		}
	}

	for _, id := range battersInOrder(entries) {
		s.Batting = append(s.Batting, BattingFigures(entries, id))
	}
	for _, id := range bowlersInOrder(entries) {
		s.Bowling = append(s.Bowling, BowlerFigures(entries, id))
	}
	return s
}

// outPlayer is the dismissed batter, defaulting to the striker.
func outPlayer(d ir.Delivery) string {
	if d.OutPlayerID != "" {
		return d.OutPlayerID
	}
	return d.StrikerID
}

func battersInOrder(entries []ir.Delivery) []string {
	seen := make(map[string]bool)
	order := []string{}
	for _, d := range entries {
		for _, id := range []string{d.StrikerID, d.NonStrikerID} {
			if id != "" && !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}
	return order
}

func bowlersInOrder(entries []ir.Delivery) []string {
	seen := make(map[string]bool)
	order := []string{}
	for _, d := range entries {
		if d.BowlerID != "" && !seen[d.BowlerID] {
			seen[d.BowlerID] = true
			order = append(order, d.BowlerID)
		}
	}
	return order
}
