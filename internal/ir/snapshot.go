package ir

// Extras breaks down runs not scored off the bat.
type Extras struct {
	Wides   int `json:"wides"`
	NoBalls int `json:"no_balls"`
	Byes    int `json:"byes"`
	LegByes int `json:"leg_byes"`
	Total   int `json:"total"`
}

// Partnership is the stand between the current pair since the last wicket.
type Partnership struct {
	Runs  int `json:"runs"`
	Balls int `json:"balls"`
}

// BattingFigures is one batter's line in an innings.
type BattingFigures struct {
	PlayerID   string     `json:"player_id"`
	Runs       int        `json:"runs"`
	Balls      int        `json:"balls"`
	Fours      int        `json:"fours"`
	Sixes      int        `json:"sixes"`
	StrikeRate float64    `json:"strike_rate"`
	Out        bool       `json:"out"`
	HowOut     WicketType `json:"how_out,omitempty"`
}

// BowlingFigures is one bowler's line in an innings.
type BowlingFigures struct {
	PlayerID     string  `json:"player_id"`
	LegalBalls   int     `json:"legal_balls"`
	Overs        string  `json:"overs"`
	RunsConceded int     `json:"runs_conceded"`
	Wickets      int     `json:"wickets"`
	Economy      float64 `json:"economy"`
	Wides        int     `json:"wides"`
	NoBalls      int     `json:"no_balls"`
}

// InningsStats are the derived figures for one innings.
//
// RequiredRunRate is nil whenever it is undefined: in the first innings,
// before a target exists, or once no balls remain.
type InningsStats struct {
	InningsID       string           `json:"innings_id"`
	Number          int              `json:"inning_number"`
	Runs            int              `json:"runs"`
	Wickets         int              `json:"wickets"`
	LegalBalls      int              `json:"legal_balls_bowled"`
	Overs           string           `json:"overs"`
	CurrentRunRate  float64          `json:"current_run_rate"`
	RequiredRunRate *float64         `json:"required_run_rate"`
	Target          *int             `json:"target,omitempty"`
	RunsNeeded      *int             `json:"runs_needed,omitempty"`
	BallsRemaining  int              `json:"balls_remaining"`
	Partnership     Partnership      `json:"partnership"`
	Extras          Extras           `json:"extras"`
	Batting         []BattingFigures `json:"batting"`
	Bowling         []BowlingFigures `json:"bowling"`
}

// LiveContext is the on-field situation of the current (or most recently
// closed) innings.
type LiveContext struct {
	InningsID    string `json:"innings_id"`
	StrikerID    string `json:"striker_id"`
	NonStrikerID string `json:"non_striker_id"`
	BowlerID     string `json:"bowler_id"`
	// RecentBalls is most-recent-first.
	RecentBalls []Delivery  `json:"recent_balls"`
	NextOver    int         `json:"next_over"`
	NextBall    int         `json:"next_ball"`
	Partnership Partnership `json:"partnership"`
}

// Snapshot is the complete live view of a match. Clients replace their copy
// wholesale on every fetch.
type Snapshot struct {
	Match   Match             `json:"match"`
	Innings []Innings         `json:"innings"`
	Stats   []InningsStats    `json:"stats"`
	Current *LiveContext      `json:"current"`
	Players map[string]string `json:"players"`
	Version string            `json:"version"`
}

// CurrentInnings returns the innings the live context points at.
func (s *Snapshot) CurrentInnings() (Innings, bool) {
	if s.Current == nil {
		return Innings{}, false
	}
	for _, inn := range s.Innings {
		if inn.ID == s.Current.InningsID {
			return inn, true
		}
	}
	return Innings{}, false
}

// PlayerName resolves a player ID for display, falling back to the ID.
func (s *Snapshot) PlayerName(id string) string {
	if name, ok := s.Players[id]; ok && name != "" {
		return name
	}
	return id
}
