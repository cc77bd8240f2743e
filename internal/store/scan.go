package store

import (
	"database/sql"

	"github.com/roach88/crease/internal/ir"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (ir.Match, error) {
	var (
		m              ir.Match
		status, result string
		target         sql.NullInt64
	)
	err := row.Scan(
		&m.ID, &m.Team1ID, &m.Team1Name, &m.Team2ID, &m.Team2Name, &m.TournamentID, &m.Venue,
		&m.ScheduledDate, &m.Format, &m.OversLimit, &m.TeamSize, &m.MaxOversPerBowler,
		&status, &target, &m.WinnerTeamID, &result,
	)
	if err != nil {
		return ir.Match{}, err
	}
	m.Status = ir.MatchStatus(status)
	m.Outcome = ir.Outcome(result)
	if target.Valid {
		t := int(target.Int64)
		m.TargetScore = &t
	}
	return m, nil
}

func scanInnings(row rowScanner) (ir.Innings, error) {
	var (
		inn            ir.Innings
		status, reason string
	)
	err := row.Scan(
		&inn.ID, &inn.MatchID, &inn.Number, &inn.BattingTeamID, &inn.BowlingTeamID, &status,
		&inn.Runs, &inn.Wickets, &inn.LegalBalls, &reason,
	)
	if err != nil {
		return ir.Innings{}, err
	}
	inn.Status = ir.InningsStatus(status)
	inn.CloseReason = ir.CloseReason(reason)
	return inn, nil
}

func scanDelivery(row rowScanner) (ir.Delivery, error) {
	var (
		d             ir.Delivery
		extra, wicket string
	)
	err := row.Scan(
		&d.ID, &d.InningsID, &d.Seq, &d.OverNumber, &d.BallNumber, &d.RunsOffBat, &extra,
		&wicket, &d.OutPlayerID, &d.StrikerID, &d.NonStrikerID, &d.BowlerID,
	)
	if err != nil {
		return ir.Delivery{}, err
	}
	d.Extra = ir.ExtraType(extra)
	d.Wicket = ir.WicketType(wicket)
	return d, nil
}
