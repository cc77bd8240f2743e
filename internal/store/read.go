package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/crease/internal/ir"
)

// GetTeam returns a team with its roster in slot order.
func (q *Queries) GetTeam(ctx context.Context, id string) (ir.Team, error) {
	team := ir.Team{ID: id}
	err := q.q.QueryRowContext(ctx, `SELECT name FROM teams WHERE id = ?`, id).Scan(&team.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Team{}, fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Team{}, fmt.Errorf("get team: %w", err)
	}

	players, err := q.ListPlayers(ctx, id)
	if err != nil {
		return ir.Team{}, err
	}
	team.Players = players
	return team, nil
}

// ListTeams returns all teams (without rosters) ordered by name.
func (q *Queries) ListTeams(ctx context.Context) ([]ir.Team, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, name FROM teams
		ORDER BY name ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	teams := []ir.Team{}
	for rows.Next() {
		var t ir.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.Players = []ir.Player{}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return teams, nil
}

// ListPlayers returns a team's roster in slot order.
func (q *Queries) ListPlayers(ctx context.Context, teamID string) ([]ir.Player, error) {
	rows, err := q.q.QueryContext(ctx, `
		SELECT id, team_id, name FROM players
		WHERE team_id = ?
		ORDER BY slot ASC
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	players := []ir.Player{}
	for rows.Next() {
		var p ir.Player
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

// GetPlayer returns a single player.
func (q *Queries) GetPlayer(ctx context.Context, id string) (ir.Player, error) {
	var p ir.Player
	err := q.q.QueryRowContext(ctx,
		`SELECT id, team_id, name FROM players WHERE id = ?`, id,
	).Scan(&p.ID, &p.TeamID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Player{}, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

const matchColumns = `
	m.id, m.team1_id, t1.name, m.team2_id, t2.name, m.tournament_id, m.venue,
	m.scheduled_date, m.format, m.overs_limit, m.team_size, m.max_overs_per_bowler,
	m.status, m.target_score, m.winner_team_id, m.outcome`

const matchFrom = `
	FROM matches m
	JOIN teams t1 ON t1.id = m.team1_id
	JOIN teams t2 ON t2.id = m.team2_id`

// GetMatch returns a match with both team names resolved.
func (q *Queries) GetMatch(ctx context.Context, id string) (ir.Match, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+matchColumns+matchFrom+` WHERE m.id = ?`, id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Match{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

// ListMatches returns every match ordered by scheduled date then id.
func (q *Queries) ListMatches(ctx context.Context) ([]ir.Match, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+matchColumns+matchFrom+`
		ORDER BY m.scheduled_date ASC, m.id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []ir.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

const inningsColumns = `
	id, match_id, inning_number, batting_team_id, bowling_team_id, status,
	runs, wickets, legal_balls, close_reason`

// GetInnings returns one innings.
func (q *Queries) GetInnings(ctx context.Context, id string) (ir.Innings, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+inningsColumns+` FROM innings WHERE id = ?`, id)
	inn, err := scanInnings(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Innings{}, fmt.Errorf("innings %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Innings{}, fmt.Errorf("get innings: %w", err)
	}
	return inn, nil
}

// ListInnings returns a match's innings ordered by inning number.
// Returns an empty slice (not nil) when none exist.
func (q *Queries) ListInnings(ctx context.Context, matchID string) ([]ir.Innings, error) {
	return q.queryInnings(ctx, `SELECT `+inningsColumns+` FROM innings
		WHERE match_id = ?
		ORDER BY inning_number ASC`, matchID)
}

// ListAllInnings returns every innings in the database, grouped by match.
func (q *Queries) ListAllInnings(ctx context.Context) ([]ir.Innings, error) {
	return q.queryInnings(ctx, `SELECT `+inningsColumns+` FROM innings
		ORDER BY match_id COLLATE BINARY ASC, inning_number ASC`)
}

func (q *Queries) queryInnings(ctx context.Context, query string, args ...any) ([]ir.Innings, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query innings: %w", err)
	}
	defer rows.Close()

	innings := []ir.Innings{}
	for rows.Next() {
		inn, err := scanInnings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan innings: %w", err)
		}
		innings = append(innings, inn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate innings: %w", err)
	}
	return innings, nil
}

const deliveryColumns = `
	id, innings_id, seq, over_number, ball_number, runs_off_bat, extra_type,
	wicket_type, out_player_id, striker_id, non_striker_id, bowler_id`

// ListDeliveries returns an innings ledger in sequence order.
// Returns an empty slice (not nil) for an empty ledger.
func (q *Queries) ListDeliveries(ctx context.Context, inningsID string) ([]ir.Delivery, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries
		WHERE innings_id = ?
		ORDER BY seq ASC`, inningsID)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	entries := []ir.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		entries = append(entries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return entries, nil
}

// LastDelivery returns the highest-sequence entry of an innings ledger.
// ok is false when the ledger is empty.
func (q *Queries) LastDelivery(ctx context.Context, inningsID string) (d ir.Delivery, ok bool, err error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries
		WHERE innings_id = ?
		ORDER BY seq DESC
		LIMIT 1`, inningsID)
	d, err = scanDelivery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Delivery{}, false, nil
	}
	if err != nil {
		return ir.Delivery{}, false, fmt.Errorf("last delivery: %w", err)
	}
	return d, true, nil
}

// GetRoles returns the role assignment of an innings. A missing row reads as
// an empty assignment.
func (q *Queries) GetRoles(ctx context.Context, inningsID string) (ir.RoleAssignment, error) {
	r := ir.RoleAssignment{InningsID: inningsID}
	err := q.q.QueryRowContext(ctx, `
		SELECT striker_id, non_striker_id, bowler_id
		FROM role_assignments WHERE innings_id = ?
	`, inningsID).Scan(&r.StrikerID, &r.NonStrikerID, &r.BowlerID)
	if errors.Is(err, sql.ErrNoRows) {
		return r, nil
	}
	if err != nil {
		return ir.RoleAssignment{}, fmt.Errorf("get roles: %w", err)
	}
	return r, nil
}
