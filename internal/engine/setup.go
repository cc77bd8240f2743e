package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// NewMatch is the input to CreateMatch.
type NewMatch struct {
	Team1ID       string `json:"team1_id"`
	Team2ID       string `json:"team2_id"`
	Format        string `json:"format"`
	TournamentID  string `json:"tournament_id,omitempty"`
	Venue         string `json:"venue"`
	ScheduledDate string `json:"scheduled_date"`
}

// CreateTeam stores a team with its roster in the given order.
func (e *Engine) CreateTeam(ctx context.Context, name string, players []string) (ir.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ir.Team{}, validationError("name", "team name is required")
	}
	if len(players) == 0 {
		return ir.Team{}, validationError("players", "a team needs at least one player")
	}

	team := ir.Team{ID: e.ids.Generate(), Name: name}
	seen := make(map[string]bool, len(players))
	for i, p := range players {
		p = strings.TrimSpace(p)
		if p == "" {
			return ir.Team{}, validationError("players", "player %d has no name", i+1)
		}
		if seen[p] {
			return ir.Team{}, validationError("players", "player %q listed twice", p)
		}
		seen[p] = true
		team.Players = append(team.Players, ir.Player{ID: e.ids.Generate(), TeamID: team.ID, Name: p})
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.InTx(ctx, func(q *store.Queries) error {
		return q.CreateTeam(ctx, team)
	}); err != nil {
		return ir.Team{}, err
	}
	e.logger.Info("team created", "team", team.ID, "players", len(team.Players))
	return team, nil
}

// DeleteTeam removes a team. Deleting a missing team succeeds; a team still
// referenced by a match fails with RESOURCE_IN_USE.
func (e *Engine) DeleteTeam(ctx context.Context, teamID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var existed bool
	err := e.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		existed, err = q.DeleteTeam(ctx, teamID)
		return err
	})
	if err != nil {
		return mapStoreError(err)
	}
	e.logger.Debug("team deleted", "team", teamID, "existed", existed)
	return nil
}

// CreateMatch schedules a match between two teams using a named format.
func (e *Engine) CreateMatch(ctx context.Context, in NewMatch) (*ir.Snapshot, error) {
	if in.Team1ID == "" || in.Team2ID == "" {
		return nil, validationError("team2_id", "both teams are required")
	}
	if in.Team1ID == in.Team2ID {
		return nil, validationError("team2_id", "a team cannot play itself")
	}
	f, err := e.formats.Get(in.Format)
	if err != nil {
		return nil, validationError("format", "%v", err)
	}

	m := ir.Match{
		ID:                e.ids.Generate(),
		Team1ID:           in.Team1ID,
		Team2ID:           in.Team2ID,
		TournamentID:      in.TournamentID,
		Venue:             in.Venue,
		ScheduledDate:     in.ScheduledDate,
		Format:            f.Name,
		OversLimit:        f.OversLimit,
		TeamSize:          f.TeamSize,
		MaxOversPerBowler: f.MaxOversPerBowler,
		Status:            ir.MatchScheduled,
	}

	return e.apply(ctx, feed.EventMatchCreated, func(ctx context.Context, q *store.Queries) (string, string, error) {
		for _, teamID := range []string{m.Team1ID, m.Team2ID} {
			team, err := q.GetTeam(ctx, teamID)
			if err != nil {
				return "", "", mapStoreError(err)
			}
			if len(team.Players) < 2 {
				return "", "", validationError("team_id",
					"team %s has %d players, at least 2 are needed to bat", team.Name, len(team.Players))
			}
		}
		if err := q.CreateMatch(ctx, m); err != nil {
			return "", "", mapStoreError(err)
		}
		return m.ID, "", nil
	})
}

// DeleteMatch removes a match with its innings, ledgers and roles. Deleting
// a missing match succeeds.
func (e *Engine) DeleteMatch(ctx context.Context, matchID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var existed bool
	if err := e.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		existed, err = q.DeleteMatch(ctx, matchID)
		return err
	}); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if existed {
		e.publish(ctx, feed.Event{Type: feed.EventMatchDeleted, MatchID: matchID})
	}
	return nil
}

// ListTeams returns every team, without rosters.
func (e *Engine) ListTeams(ctx context.Context) ([]ir.Team, error) {
	return e.store.ListTeams(ctx)
}

// ListMatches returns every match.
func (e *Engine) ListMatches(ctx context.Context) ([]ir.Match, error) {
	return e.store.ListMatches(ctx)
}
