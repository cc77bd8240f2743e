package harness

import (
	"fmt"
	"sort"

	"github.com/roach88/crease/internal/ir"
)

// none stands for an absent optional value in assertions.
const none = "none"

// EvaluateAssertions checks every assertion against the final snapshot and
// returns one message per mismatch. names maps player and team ids to the
// names used in the scenario.
func EvaluateAssertions(result *Result, assertions []Assertion, names map[string]string) []string {
	var errs []string
	for i, a := range assertions {
		for _, msg := range evaluate(result, a, names) {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, names map[string]string) []string {
	if a.Type == AssertRejections {
		if got := result.Rejections(a.Code); got != a.Count {
			return []string{fmt.Sprintf("%s: expected %d rejections, got %d", a.Code, a.Count, got)}
		}
		return nil
	}

	snap := result.Final
	if snap == nil {
		return []string{"no final snapshot"}
	}

	var actual map[string]any
	switch a.Type {
	case AssertMatch:
		actual = matchFields(snap.Match, names)
	case AssertRoles:
		if snap.Current == nil {
			return []string{"no innings has started"}
		}
		actual = map[string]any{
			"striker":     names[snap.Current.StrikerID],
			"non_striker": names[snap.Current.NonStrikerID],
			"bowler":      names[snap.Current.BowlerID],
		}
	case AssertInnings:
		inn, st, ok := inningsByNumber(snap, a.Innings)
		if !ok {
			return []string{fmt.Sprintf("innings %d has not started", a.Innings)}
		}
		actual = inningsFields(inn, st)
	case AssertBatter:
		_, st, ok := inningsByNumber(snap, a.Innings)
		if !ok {
			return []string{fmt.Sprintf("innings %d has not started", a.Innings)}
		}
		actual = batterFields(st, a.Player, names)
	case AssertBowler:
		_, st, ok := inningsByNumber(snap, a.Innings)
		if !ok {
			return []string{fmt.Sprintf("innings %d has not started", a.Innings)}
		}
		actual = bowlerFields(st, a.Player, names)
	}
	if actual == nil {
		return []string{fmt.Sprintf("%s has no figures in innings %d", a.Player, a.Innings)}
	}
	return compareFields(a.Expect, actual)
}

// compareFields checks that each expected field matches. Values compare by
// their printed form, so YAML 5 matches int 5 and float64 5.
func compareFields(expect, actual map[string]any) []string {
	keys := make([]string, 0, len(expect))
	for k := range expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown field %q", k))
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(expect[k]) {
			errs = append(errs, fmt.Sprintf("%s: expected %v, got %v", k, expect[k], got))
		}
	}
	return errs
}

func inningsByNumber(snap *ir.Snapshot, number int) (ir.Innings, ir.InningsStats, bool) {
	for _, inn := range snap.Innings {
		if inn.Number != number {
			continue
		}
		for _, st := range snap.Stats {
			if st.InningsID == inn.ID {
				return inn, st, true
			}
		}
		return inn, ir.InningsStats{}, true
	}
	return ir.Innings{}, ir.InningsStats{}, false
}

func matchFields(m ir.Match, names map[string]string) map[string]any {
	winner := none
	if m.WinnerTeamID != "" {
		winner = names[m.WinnerTeamID]
	}
	outcome := none
	if m.Outcome != ir.OutcomeNone {
		outcome = string(m.Outcome)
	}
	return map[string]any{
		"status":  string(m.Status),
		"outcome": outcome,
		"winner":  winner,
		"target":  optional(m.TargetScore),
	}
}

func inningsFields(inn ir.Innings, st ir.InningsStats) map[string]any {
	reason := none
	if inn.CloseReason != ir.CloseNone {
		reason = string(inn.CloseReason)
	}
	return map[string]any{
		"runs":              inn.Runs,
		"wickets":           inn.Wickets,
		"legal_balls":       inn.LegalBalls,
		"overs":             st.Overs,
		"status":            string(inn.Status),
		"close_reason":      reason,
		"extras":            st.Extras.Total,
		"partnership_runs":  st.Partnership.Runs,
		"partnership_balls": st.Partnership.Balls,
		"target":            optional(st.Target),
		"runs_needed":       optional(st.RunsNeeded),
	}
}

func batterFields(st ir.InningsStats, player string, names map[string]string) map[string]any {
	for _, b := range st.Batting {
		if names[b.PlayerID] != player {
			continue
		}
		howOut := none
		if b.HowOut != "" && b.HowOut != ir.WicketNone {
			howOut = string(b.HowOut)
		}
		return map[string]any{
			"runs":        b.Runs,
			"balls":       b.Balls,
			"fours":       b.Fours,
			"sixes":       b.Sixes,
			"strike_rate": b.StrikeRate,
			"out":         b.Out,
			"how_out":     howOut,
		}
	}
	return nil
}

func bowlerFields(st ir.InningsStats, player string, names map[string]string) map[string]any {
	for _, b := range st.Bowling {
		if names[b.PlayerID] != player {
			continue
		}
		return map[string]any{
			"legal_balls":   b.LegalBalls,
			"overs":         b.Overs,
			"runs_conceded": b.RunsConceded,
			"wickets":       b.Wickets,
			"economy":       b.Economy,
			"wides":         b.Wides,
			"no_balls":      b.NoBalls,
		}
	}
	return nil
}

func optional(v *int) any {
	if v == nil {
		return none
	}
	return *v
}
