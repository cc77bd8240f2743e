package ir

import "strconv"

const (
	// BallsPerOver is the number of legal deliveries in an over.
	BallsPerOver = 6

	// InningsPerMatch is the number of innings in a limited-overs match.
	InningsPerMatch = 2
)

// Player is a rostered member of a team.
type Player struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

// Team is a named side with its roster.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

// Match is a scheduled fixture between two teams.
//
// TargetScore is nil until the second innings starts and is never changed
// afterwards. WinnerTeamID is set only when Outcome is win.
type Match struct {
	ID                string      `json:"id"`
	Team1ID           string      `json:"team1_id"`
	Team1Name         string      `json:"team1_name"`
	Team2ID           string      `json:"team2_id"`
	Team2Name         string      `json:"team2_name"`
	TournamentID      string      `json:"tournament_id,omitempty"`
	Venue             string      `json:"venue"`
	ScheduledDate     string      `json:"scheduled_date"`
	Format            string      `json:"format"`
	OversLimit        int         `json:"overs_limit"`
	TeamSize          int         `json:"team_size"`
	MaxOversPerBowler int         `json:"max_overs_per_bowler"`
	Status            MatchStatus `json:"status"`
	TargetScore       *int        `json:"target_score"`
	WinnerTeamID      string      `json:"winner_team_id,omitempty"`
	Outcome           Outcome     `json:"outcome,omitempty"`
}

// HasTeam reports whether teamID is one of the two sides.
func (m Match) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == m.Team1ID || teamID == m.Team2ID)
}

// TeamName returns the display name of one of the two sides.
func (m Match) TeamName(teamID string) string {
	switch teamID {
	case m.Team1ID:
		return m.Team1Name
	case m.Team2ID:
		return m.Team2Name
	}
	return ""
}

// WicketCap is the number of wickets that ends an innings.
func (m Match) WicketCap() int {
	if m.TeamSize < 2 {
		return 10
	}
	return m.TeamSize - 1
}

// BallLimit is the number of legal balls allowed per innings.
func (m Match) BallLimit() int {
	return m.OversLimit * BallsPerOver
}

// Innings is one side's batting turn.
//
// Runs, Wickets and LegalBalls are a fold over the innings' delivery ledger.
type Innings struct {
	ID            string        `json:"id"`
	MatchID       string        `json:"match_id"`
	Number        int           `json:"inning_number"`
	BattingTeamID string        `json:"batting_team_id"`
	BowlingTeamID string        `json:"bowling_team_id"`
	Status        InningsStatus `json:"status"`
	Runs          int           `json:"runs"`
	Wickets       int           `json:"wickets"`
	LegalBalls    int           `json:"legal_balls_bowled"`
	CloseReason   CloseReason   `json:"close_reason,omitempty"`
}

// Active reports whether the innings accepts deliveries.
func (i Innings) Active() bool {
	return i.Status == InningsInProgress
}

// NextPosition returns the over and ball number the next delivery must carry.
// Over numbers are zero-based, ball numbers run 1..6.
func (i Innings) NextPosition() (over, ball int) {
	return i.LegalBalls / BallsPerOver, i.LegalBalls%BallsPerOver + 1
}

// Delivery is one entry in an innings ledger.
//
// StrikerID, NonStrikerID and BowlerID snapshot the role assignment at the
// moment the delivery was recorded, so the ledger alone can rebuild roles.
type Delivery struct {
	ID           string     `json:"id"`
	InningsID    string     `json:"innings_id"`
	Seq          int64      `json:"sequence_number"`
	OverNumber   int        `json:"over_number"`
	BallNumber   int        `json:"ball_number_in_over"`
	RunsOffBat   int        `json:"runs_off_bat"`
	Extra        ExtraType  `json:"extra_type"`
	Wicket       WicketType `json:"wicket_type"`
	OutPlayerID  string     `json:"out_player_id,omitempty"`
	StrikerID    string     `json:"striker_id"`
	NonStrikerID string     `json:"non_striker_id"`
	BowlerID     string     `json:"bowler_id"`
}

// IsLegal reports whether the delivery counts toward the over.
func (d Delivery) IsLegal() bool {
	return d.Extra.IsLegal()
}

// TotalRuns is the delivery's contribution to the innings total.
func (d Delivery) TotalRuns() int {
	return d.RunsOffBat + d.Extra.PenaltyRuns()
}

// Label renders the delivery position as "over.ball", e.g. "3.4".
func (d Delivery) Label() string {
	return strconv.Itoa(d.OverNumber) + "." + strconv.Itoa(d.BallNumber)
}

// RoleAssignment is the live pointer to who is on strike, at the other end,
// and bowling. It is not part of the ledger.
type RoleAssignment struct {
	InningsID    string `json:"innings_id"`
	StrikerID    string `json:"striker_id"`
	NonStrikerID string `json:"non_striker_id"`
	BowlerID     string `json:"bowler_id"`
}

// Complete reports whether all three roles are filled.
func (r RoleAssignment) Complete() bool {
	return r.StrikerID != "" && r.NonStrikerID != "" && r.BowlerID != ""
}

// Missing lists unfilled roles in a stable order.
func (r RoleAssignment) Missing() []Role {
	missing := []Role{}
	if r.StrikerID == "" {
		missing = append(missing, RoleStriker)
	}
	if r.NonStrikerID == "" {
		missing = append(missing, RoleNonStriker)
	}
	if r.BowlerID == "" {
		missing = append(missing, RoleBowler)
	}
	return missing
}

// Get returns the player holding role.
func (r RoleAssignment) Get(role Role) string {
	switch role {
	case RoleStriker:
		return r.StrikerID
	case RoleNonStriker:
		return r.NonStrikerID
	case RoleBowler:
		return r.BowlerID
	}
	return ""
}

// With returns a copy with role set to playerID.
func (r RoleAssignment) With(role Role, playerID string) RoleAssignment {
	switch role {
	case RoleStriker:
		r.StrikerID = playerID
	case RoleNonStriker:
		r.NonStrikerID = playerID
	case RoleBowler:
		r.BowlerID = playerID
	}
	return r
}

// SwapEnds exchanges striker and non-striker.
func (r RoleAssignment) SwapEnds() RoleAssignment {
	r.StrikerID, r.NonStrikerID = r.NonStrikerID, r.StrikerID
	return r
}
