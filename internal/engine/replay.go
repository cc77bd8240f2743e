package engine

import "github.com/roach88/crease/internal/ir"

// Tally is the result of folding an innings ledger.
type Tally struct {
	Runs       int `json:"runs"`
	Wickets    int `json:"wickets"`
	LegalBalls int `json:"legal_balls"`
}

// Fold replays a ledger from an empty accumulator. It is the only way innings
// counters are computed: append and undo both re-fold the whole ledger
// rather than applying or inverting a single delta, so extras and wickets
// can never leave the counters inconsistent with the entries.
//
// Wickets are capped at wicketCap.
func Fold(entries []ir.Delivery, wicketCap int) Tally {
	var t Tally
	for _, d := range entries {
		t.Runs += d.TotalRuns()
		if d.IsLegal() {
			t.LegalBalls++
		}
		if d.Wicket.Fell() {
			t.Wickets++
		}
	}
	if t.Wickets > wicketCap {
		t.Wickets = wicketCap
	}
	return t
}

// autoCloseReason reports whether a folded innings must close on its own.
// The target check applies only to the chasing innings.
func autoCloseReason(m ir.Match, inn ir.Innings, t Tally) ir.CloseReason {
	if inn.Number == ir.InningsPerMatch && m.TargetScore != nil && t.Runs >= *m.TargetScore {
		return ir.CloseTargetReached
	}
	if t.Wickets >= m.WicketCap() {
		return ir.CloseAllOut
	}
	if t.LegalBalls >= m.BallLimit() {
		return ir.CloseOversExhausted
	}
	return ir.CloseNone
}

// recompute folds entries into inn and settles its status. A manually closed
// innings stays closed; otherwise the innings is open unless the fold itself
// demands closure.
func recompute(m ir.Match, inn ir.Innings, entries []ir.Delivery) ir.Innings {
	t := Fold(entries, m.WicketCap())
	inn.Runs, inn.Wickets, inn.LegalBalls = t.Runs, t.Wickets, t.LegalBalls

	if inn.Status == ir.InningsCompleted && inn.CloseReason.Manual() {
		return inn
	}
	if reason := autoCloseReason(m, inn, t); reason != ir.CloseNone {
		inn.Status = ir.InningsCompleted
		inn.CloseReason = reason
		return inn
	}
	inn.Status = ir.InningsInProgress
	inn.CloseReason = ir.CloseNone
	return inn
}

// rotate returns the roles in force after d. legalBalls counts legal
// deliveries up to and including d.
//
// Odd runs swap ends. A dismissed batter's slot is vacated. At the end of an
// over ends swap again and the bowler slot is vacated so the next bowler is
// assigned (and rule-checked) explicitly.
func rotate(d ir.Delivery, legalBalls int) ir.RoleAssignment {
	r := RolesAt(d)
	if d.RunsOffBat%2 == 1 {
		r = r.SwapEnds()
	}
	if d.Wicket.Fell() {
		switch outPlayer(d) {
		case r.StrikerID:
			r.StrikerID = ""
		case r.NonStrikerID:
			r.NonStrikerID = ""
		}
	}
	if d.IsLegal() && legalBalls > 0 && legalBalls%ir.BallsPerOver == 0 {
		r = r.SwapEnds()
		r.BowlerID = ""
	}
	return r
}

// RolesAt returns the assignment that was in force when d was bowled. The
// ledger stores it on every entry, so removing d and restoring RolesAt(d)
// returns the innings to exactly the roles it had before d was appended.
func RolesAt(d ir.Delivery) ir.RoleAssignment {
	return ir.RoleAssignment{
		InningsID:    d.InningsID,
		StrikerID:    d.StrikerID,
		NonStrikerID: d.NonStrikerID,
		BowlerID:     d.BowlerID,
	}
}

// outPlayer is the dismissed batter, defaulting to the striker.
func outPlayer(d ir.Delivery) string {
	if d.OutPlayerID != "" {
		return d.OutPlayerID
	}
	return d.StrikerID
}

// previousOverBowler returns who bowled the last completed over before the
// one in progress (or about to start) after legalBalls legal deliveries.
func previousOverBowler(entries []ir.Delivery, legalBalls int) string {
	prevOver := legalBalls/ir.BallsPerOver - 1
	if prevOver < 0 {
		return ""
	}
	bowler := ""
	for _, d := range entries {
		if d.OverNumber == prevOver && d.IsLegal() {
			bowler = d.BowlerID
		}
	}
	return bowler
}

// legalBallsBy counts legal deliveries bowled by a player.
func legalBallsBy(entries []ir.Delivery, bowlerID string) int {
	n := 0
	for _, d := range entries {
		if d.BowlerID == bowlerID && d.IsLegal() {
			n++
		}
	}
	return n
}

// dismissed reports whether the player has been dismissed in the ledger.
func dismissed(entries []ir.Delivery, playerID string) bool {
	for _, d := range entries {
		if d.Wicket.Dismissal() && outPlayer(d) == playerID {
			return true
		}
	}
	return false
}
