package engine

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// AssignRole puts a player into one role of an active innings.
//
// Batters must come from the batting side and bowlers from the bowling side.
// One player cannot hold both batting roles, and a dismissed batter cannot
// return. A bowler is checked against the previous over and against the
// format's per-bowler quota.
func (e *Engine) AssignRole(ctx context.Context, inningsID, playerID string, role ir.Role) (*ir.Snapshot, error) {
	if _, err := ir.ParseRole(string(role)); err != nil {
		return nil, validationError("role", "%v", err)
	}
	if playerID == "" {
		return nil, validationError("player_id", "player is required")
	}

	return e.apply(ctx, feed.EventRolesAssigned, func(ctx context.Context, q *store.Queries) (string, string, error) {
		m, inn, err := loadInnings(ctx, q, inningsID)
		if err != nil {
			return "", "", err
		}
		if !inn.Active() {
			return "", "", newError(CodeInningsNotActive,
				"innings %d is %s", inn.Number, inn.Status).forInnings(m.ID, inn.ID)
		}

		player, err := q.GetPlayer(ctx, playerID)
		if err != nil {
			return "", "", mapStoreError(err)
		}
		wantTeam := inn.BowlingTeamID
		if role.Batting() {
			wantTeam = inn.BattingTeamID
		}
		if player.TeamID != wantTeam {
			return "", "", (&ScoringError{
				Code:    CodeRosterMismatch,
				Message: fmt.Sprintf("%s does not play for %s", player.Name, m.TeamName(wantTeam)),
				Field:   "player_id",
			}).forInnings(m.ID, inn.ID)
		}

		roles, err := q.GetRoles(ctx, inn.ID)
		if err != nil {
			return "", "", err
		}
		entries, err := NewLedger(q).Entries(ctx, inn.ID)
		if err != nil {
			return "", "", err
		}

		if role.Batting() {
			if err := e.checkBatter(roles, entries, player, role); err != nil {
				return "", "", err.forInnings(m.ID, inn.ID)
			}
		} else {
			if err := e.checkBowler(m, inn, entries, player); err != nil {
				return "", "", err.forInnings(m.ID, inn.ID)
			}
		}

		if err := q.PutRoles(ctx, roles.With(role, player.ID)); err != nil {
			return "", "", err
		}
		e.logger.Debug("role assigned", "innings", inn.ID, "role", role, "player", player.ID)
		return m.ID, inn.ID, nil
	})
}

func (e *Engine) checkBatter(roles ir.RoleAssignment, entries []ir.Delivery, p ir.Player, role ir.Role) *ScoringError {
	other := roles.NonStrikerID
	if role == ir.RoleNonStriker {
		other = roles.StrikerID
	}
	if other == p.ID {
		return &ScoringError{
			Code:    CodeDuplicateBatter,
			Message: fmt.Sprintf("%s already holds the other batting role", p.Name),
			Field:   "player_id",
		}
	}
	if dismissed(entries, p.ID) {
		return &ScoringError{
			Code:    CodeBatterDismissed,
			Message: fmt.Sprintf("%s has been dismissed", p.Name),
			Field:   "player_id",
		}
	}
	return nil
}

func (e *Engine) checkBowler(m ir.Match, inn ir.Innings, entries []ir.Delivery, p ir.Player) *ScoringError {
	if prev := previousOverBowler(entries, inn.LegalBalls); prev == p.ID {
		if e.overRule == OverRuleAdvisory {
			e.logger.Warn("bowler bowled the previous over",
				"innings", inn.ID,
				"bowler", p.ID)
		} else {
			return &ScoringError{
				Code:    CodeConsecutiveOverViolation,
				Message: fmt.Sprintf("%s bowled the previous over", p.Name),
				Field:   "player_id",
			}
		}
	}

	if m.MaxOversPerBowler > 0 {
		quota := m.MaxOversPerBowler * ir.BallsPerOver
		if legalBallsBy(entries, p.ID) >= quota {
			return &ScoringError{
				Code:    CodeBowlerQuotaExceeded,
				Message: fmt.Sprintf("%s has bowled %d overs", p.Name, m.MaxOversPerBowler),
				Field:   "player_id",
				Details: map[string]string{"max_overs": fmt.Sprint(m.MaxOversPerBowler)},
			}
		}
	}
	return nil
}
