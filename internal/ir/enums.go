package ir

import "fmt"

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchAbandoned MatchStatus = "abandoned"
)

// Terminal reports whether no further scoring can happen on the match.
func (s MatchStatus) Terminal() bool {
	return s == MatchAbandoned
}

// InningsStatus is the state of an innings. An innings is either accepting
// deliveries or closed.
type InningsStatus string

const (
	InningsInProgress InningsStatus = "in_progress"
	InningsCompleted  InningsStatus = "completed"
)

// CloseReason records why an innings stopped accepting deliveries.
type CloseReason string

const (
	CloseNone           CloseReason = ""
	CloseOversExhausted CloseReason = "overs_exhausted"
	CloseAllOut         CloseReason = "all_out"
	CloseTargetReached  CloseReason = "target_reached"
	CloseAbandoned      CloseReason = "abandoned"
	CloseDeclared       CloseReason = "declared"
)

// Manual reports whether the reason can be requested by an operator.
// The other reasons are reached only by replaying the ledger.
func (r CloseReason) Manual() bool {
	return r == CloseAbandoned || r == CloseDeclared
}

// Outcome is the result of a completed match.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeWin      Outcome = "win"
	OutcomeTie      Outcome = "tie"
	OutcomeNoResult Outcome = "no_result"
)

// ExtraType classifies a delivery's extra.
type ExtraType string

const (
	ExtraNone   ExtraType = "none"
	ExtraWide   ExtraType = "wide"
	ExtraNoBall ExtraType = "no_ball"
	ExtraBye    ExtraType = "bye"
	ExtraLegBye ExtraType = "leg_bye"
)

// ParseExtraType parses an extra type. The empty string means none.
func ParseExtraType(s string) (ExtraType, error) {
	switch e := ExtraType(s); e {
	case "":
		return ExtraNone, nil
	case ExtraNone, ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye:
		return e, nil
	}
	return "", fmt.Errorf("unknown extra type %q", s)
}

// IsLegal reports whether a delivery with this extra counts toward the over.
// Wides and no-balls are re-bowled.
func (e ExtraType) IsLegal() bool {
	return e != ExtraWide && e != ExtraNoBall
}

// PenaltyRuns is the automatic run added to the total for the extra itself.
func (e ExtraType) PenaltyRuns() int {
	if e.IsLegal() {
		return 0
	}
	return 1
}

// ChargedToBowler reports whether runs scored on the delivery count against
// the bowler's figures. Byes and leg-byes are not the bowler's fault.
func (e ExtraType) ChargedToBowler() bool {
	return e != ExtraBye && e != ExtraLegBye
}

// CreditedToBatter reports whether runs_off_bat go to the striker's score.
func (e ExtraType) CreditedToBatter() bool {
	return e == ExtraNone || e == ExtraNoBall
}

// WicketType classifies how (or whether) a batter left the field.
type WicketType string

const (
	WicketNone        WicketType = "none"
	WicketBowled      WicketType = "bowled"
	WicketCaught      WicketType = "caught"
	WicketLBW         WicketType = "lbw"
	WicketRunOut      WicketType = "run_out"
	WicketStumped     WicketType = "stumped"
	WicketHitWicket   WicketType = "hit_wicket"
	WicketRetiredHurt WicketType = "retired_hurt"
)

// ParseWicketType parses a wicket type. The empty string means none.
func ParseWicketType(s string) (WicketType, error) {
	switch w := WicketType(s); w {
	case "":
		return WicketNone, nil
	case WicketNone, WicketBowled, WicketCaught, WicketLBW, WicketRunOut,
		WicketStumped, WicketHitWicket, WicketRetiredHurt:
		return w, nil
	}
	return "", fmt.Errorf("unknown wicket type %q", s)
}

// Fell reports whether the delivery ends a batter's stay at the crease.
// Every value other than none counts toward the innings wicket total.
func (w WicketType) Fell() bool {
	return w != WicketNone && w != ""
}

// CreditedToBowler reports whether the bowler is credited with the wicket.
func (w WicketType) CreditedToBowler() bool {
	switch w {
	case WicketBowled, WicketCaught, WicketLBW, WicketStumped, WicketHitWicket:
		return true
	}
	return false
}

// Dismissal reports whether the batter is out and may not bat again in the
// innings. A retired hurt batter may resume.
func (w WicketType) Dismissal() bool {
	return w.Fell() && w != WicketRetiredHurt
}

// AllowedWith reports whether the wicket can legally fall on a delivery with
// the given extra. Only the striker's own actions off a wide, and run outs
// off a no-ball, can dismiss on an illegal delivery.
func (w WicketType) AllowedWith(e ExtraType) bool {
	if !w.Fell() || w == WicketRetiredHurt {
		return true
	}
	switch e {
	case ExtraWide:
		return w == WicketStumped || w == WicketRunOut || w == WicketHitWicket
	case ExtraNoBall:
		return w == WicketRunOut
	}
	return true
}

// Role is a per-innings on-field role.
type Role string

const (
	RoleStriker    Role = "striker"
	RoleNonStriker Role = "non_striker"
	RoleBowler     Role = "bowler"
)

// ParseRole parses a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStriker, RoleNonStriker, RoleBowler:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Batting reports whether the role belongs to the batting side.
func (r Role) Batting() bool {
	return r == RoleStriker || r == RoleNonStriker
}
