package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/crease/internal/ir"
)

// CreateTeam inserts a team and its roster. Player slots follow the order
// of team.Players.
func (q *Queries) CreateTeam(ctx context.Context, team ir.Team) error {
	if _, err := q.q.ExecContext(ctx,
		`INSERT INTO teams (id, name) VALUES (?, ?)`,
		team.ID, team.Name,
	); err != nil {
		return fmt.Errorf("create team: %w", err)
	}

	for i, p := range team.Players {
		if _, err := q.q.ExecContext(ctx,
			`INSERT INTO players (id, team_id, name, slot) VALUES (?, ?, ?, ?)`,
			p.ID, team.ID, p.Name, i+1,
		); err != nil {
			return fmt.Errorf("create team: player %q: %w", p.Name, err)
		}
	}
	return nil
}

// DeleteTeam removes a team and its roster. Deleting a missing team is not an
// error; existed reports whether a row was removed. A team referenced by a
// match returns ErrInUse.
func (q *Queries) DeleteTeam(ctx context.Context, id string) (existed bool, err error) {
	res, err := q.q.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		if IsConstraint(err) {
			return false, fmt.Errorf("delete team %s: %w", id, ErrInUse)
		}
		return false, fmt.Errorf("delete team: %w", err)
	}
	return rowsChanged(res)
}

// CreateMatch inserts a match row.
func (q *Queries) CreateMatch(ctx context.Context, m ir.Match) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO matches
		(id, team1_id, team2_id, tournament_id, venue, scheduled_date, format,
		 overs_limit, team_size, max_overs_per_bowler, status, target_score,
		 winner_team_id, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID, m.Team1ID, m.Team2ID, m.TournamentID, m.Venue, m.ScheduledDate, m.Format,
		m.OversLimit, m.TeamSize, m.MaxOversPerBowler, string(m.Status), nullableInt(m.TargetScore),
		m.WinnerTeamID, string(m.Outcome),
	)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// UpdateMatchState writes the mutable match columns: status, target and
// result.
func (q *Queries) UpdateMatchState(ctx context.Context, m ir.Match) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE matches
		SET status = ?, target_score = ?, winner_team_id = ?, outcome = ?
		WHERE id = ?
	`, string(m.Status), nullableInt(m.TargetScore), m.WinnerTeamID, string(m.Outcome), m.ID)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	return requireRow(res, "update match", m.ID)
}

// DeleteMatch removes a match together with its innings, ledger and roles.
// Deleting a missing match is not an error.
func (q *Queries) DeleteMatch(ctx context.Context, id string) (existed bool, err error) {
	res, err := q.q.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}
	return rowsChanged(res)
}

// CreateInnings inserts an innings row and its empty role assignment.
func (q *Queries) CreateInnings(ctx context.Context, inn ir.Innings) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO innings
		(id, match_id, inning_number, batting_team_id, bowling_team_id, status,
		 runs, wickets, legal_balls, close_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inn.ID, inn.MatchID, inn.Number, inn.BattingTeamID, inn.BowlingTeamID, string(inn.Status),
		inn.Runs, inn.Wickets, inn.LegalBalls, string(inn.CloseReason),
	)
	if err != nil {
		return fmt.Errorf("create innings: %w", err)
	}

	if err := q.PutRoles(ctx, ir.RoleAssignment{InningsID: inn.ID}); err != nil {
		return fmt.Errorf("create innings: %w", err)
	}
	return nil
}

// UpdateInningsState writes status, close reason and the folded counters.
func (q *Queries) UpdateInningsState(ctx context.Context, inn ir.Innings) error {
	res, err := q.q.ExecContext(ctx, `
		UPDATE innings
		SET status = ?, runs = ?, wickets = ?, legal_balls = ?, close_reason = ?
		WHERE id = ?
	`, string(inn.Status), inn.Runs, inn.Wickets, inn.LegalBalls, string(inn.CloseReason), inn.ID)
	if err != nil {
		return fmt.Errorf("update innings: %w", err)
	}
	return requireRow(res, "update innings", inn.ID)
}

// InsertDelivery appends d to its innings ledger. The sequence number is
// assigned by the statement as one past the current maximum and returned on
// the stored delivery; d.Seq is ignored.
func (q *Queries) InsertDelivery(ctx context.Context, d ir.Delivery) (ir.Delivery, error) {
	err := q.q.QueryRowContext(ctx, `
		INSERT INTO deliveries
		(id, innings_id, seq, over_number, ball_number, runs_off_bat, extra_type,
		 wicket_type, out_player_id, striker_id, non_striker_id, bowler_id)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM deliveries WHERE innings_id = ?),
		        ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING seq
	`,
		d.ID, d.InningsID, d.InningsID,
		d.OverNumber, d.BallNumber, d.RunsOffBat, string(d.Extra),
		string(d.Wicket), d.OutPlayerID, d.StrikerID, d.NonStrikerID, d.BowlerID,
	).Scan(&d.Seq)
	if err != nil {
		return ir.Delivery{}, fmt.Errorf("insert delivery: %w", err)
	}
	return d, nil
}

// DeleteDelivery removes a single ledger entry.
func (q *Queries) DeleteDelivery(ctx context.Context, id string) error {
	res, err := q.q.ExecContext(ctx, `DELETE FROM deliveries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete delivery: %w", err)
	}
	return requireRow(res, "delete delivery", id)
}

// PutRoles replaces the role assignment of an innings.
func (q *Queries) PutRoles(ctx context.Context, r ir.RoleAssignment) error {
	_, err := q.q.ExecContext(ctx, `
		INSERT INTO role_assignments (innings_id, striker_id, non_striker_id, bowler_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(innings_id) DO UPDATE SET
			striker_id = excluded.striker_id,
			non_striker_id = excluded.non_striker_id,
			bowler_id = excluded.bowler_id
	`, r.InningsID, r.StrikerID, r.NonStrikerID, r.BowlerID)
	if err != nil {
		return fmt.Errorf("put roles: %w", err)
	}
	return nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func rowsChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func requireRow(res sql.Result, op, id string) error {
	changed, err := rowsChanged(res)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !changed {
		return fmt.Errorf("%s %s: %w", op, id, ErrNotFound)
	}
	return nil
}
