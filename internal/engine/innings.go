package engine

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// StartInnings opens innings number for a match.
//
// The first innings moves the match from scheduled to live. The second
// innings requires the first to be completed, must swap the batting side
// and fixes the target at first-innings runs plus one. The target is never
// written again.
func (e *Engine) StartInnings(ctx context.Context, matchID, battingTeamID, bowlingTeamID string, number int) (*ir.Snapshot, error) {
	return e.apply(ctx, feed.EventInningsStarted, func(ctx context.Context, q *store.Queries) (string, string, error) {
		m, err := q.GetMatch(ctx, matchID)
		if err != nil {
			return "", "", mapStoreError(err)
		}
		if m.Status == ir.MatchCompleted || m.Status == ir.MatchAbandoned {
			return "", "", &ScoringError{
				Code:    CodeInvalidTransition,
				Message: "match is " + string(m.Status),
				MatchID: m.ID,
			}
		}
		if number < 1 || number > ir.InningsPerMatch {
			return "", "", validationError("inning_number", "inning number must be 1 or 2, got %d", number)
		}
		if !m.HasTeam(battingTeamID) {
			return "", "", validationError("batting_team_id", "team %s is not playing this match", battingTeamID)
		}
		if !m.HasTeam(bowlingTeamID) {
			return "", "", validationError("bowling_team_id", "team %s is not playing this match", bowlingTeamID)
		}
		if battingTeamID == bowlingTeamID {
			return "", "", validationError("bowling_team_id", "batting and bowling teams must differ")
		}

		existing, err := q.ListInnings(ctx, m.ID)
		if err != nil {
			return "", "", err
		}
		for _, inn := range existing {
			if inn.Number == number {
				return "", "", &ScoringError{
					Code:    CodeInvalidTransition,
					Message: fmt.Sprintf("innings %d already exists", number),
					MatchID: m.ID,
				}
			}
		}
		if number != len(existing)+1 {
			return "", "", &ScoringError{
				Code:    CodeInvalidTransition,
				Message: fmt.Sprintf("innings %d has not been played", len(existing)+1),
				MatchID: m.ID,
			}
		}

		if number > 1 {
			prev := existing[len(existing)-1]
			if prev.Active() {
				return "", "", &ScoringError{
					Code:      CodeInvalidTransition,
					Message:   "previous innings is still in progress",
					MatchID:   m.ID,
					InningsID: prev.ID,
				}
			}
			if prev.BattingTeamID != bowlingTeamID {
				return "", "", validationError("batting_team_id", "the side that bowled first must bat now")
			}
			if m.TargetScore == nil {
				target := prev.Runs + 1
				m.TargetScore = &target
			}
		}
		if m.Status == ir.MatchScheduled {
			m.Status = ir.MatchLive
		}
		if err := q.UpdateMatchState(ctx, m); err != nil {
			return "", "", err
		}

		inn := ir.Innings{
			ID:            e.ids.Generate(),
			MatchID:       m.ID,
			Number:        number,
			BattingTeamID: battingTeamID,
			BowlingTeamID: bowlingTeamID,
			Status:        ir.InningsInProgress,
		}
		if err := q.CreateInnings(ctx, inn); err != nil {
			return "", "", err
		}
		e.logger.Info("innings started",
			"match", m.ID,
			"innings", inn.ID,
			"number", number,
			"batting", battingTeamID)
		return m.ID, inn.ID, nil
	})
}

// EndInnings closes an innings by operator decision. Only abandoned and
// declared are accepted; the automatic reasons come from the ledger fold.
// Ending the final innings completes the match.
func (e *Engine) EndInnings(ctx context.Context, inningsID string, reason ir.CloseReason) (*ir.Snapshot, error) {
	if !reason.Manual() {
		return nil, validationError("reason", "reason must be abandoned or declared, got %q", reason)
	}
	return e.apply(ctx, feed.EventInningsEnded, func(ctx context.Context, q *store.Queries) (string, string, error) {
		m, inn, err := loadInnings(ctx, q, inningsID)
		if err != nil {
			return "", "", err
		}
		if !inn.Active() {
			return "", "", newError(CodeInvalidTransition,
				"innings %d is already %s", inn.Number, inn.Status).forInnings(m.ID, inn.ID)
		}
		inn.Status = ir.InningsCompleted
		inn.CloseReason = reason
		if _, err := settle(ctx, q, m, inn); err != nil {
			return "", "", err
		}
		e.logger.Info("innings ended", "innings", inn.ID, "reason", reason)
		return m.ID, inn.ID, nil
	})
}

// AbandonMatch ends a match without a result. Any innings in progress is
// closed as abandoned. An abandoned match accepts no further scoring.
func (e *Engine) AbandonMatch(ctx context.Context, matchID string) (*ir.Snapshot, error) {
	return e.apply(ctx, feed.EventMatchAbandoned, func(ctx context.Context, q *store.Queries) (string, string, error) {
		m, err := q.GetMatch(ctx, matchID)
		if err != nil {
			return "", "", mapStoreError(err)
		}
		if m.Status == ir.MatchCompleted || m.Status == ir.MatchAbandoned {
			return "", "", &ScoringError{
				Code:    CodeInvalidTransition,
				Message: "match is already " + string(m.Status),
				MatchID: m.ID,
			}
		}

		innings, err := q.ListInnings(ctx, m.ID)
		if err != nil {
			return "", "", err
		}
		var closed string
		for _, inn := range innings {
			if !inn.Active() {
				continue
			}
			inn.Status = ir.InningsCompleted
			inn.CloseReason = ir.CloseAbandoned
			if err := q.UpdateInningsState(ctx, inn); err != nil {
				return "", "", err
			}
			closed = inn.ID
		}

		m.Status = ir.MatchAbandoned
		m.Outcome = ir.OutcomeNoResult
		m.WinnerTeamID = ""
		if err := q.UpdateMatchState(ctx, m); err != nil {
			return "", "", err
		}
		e.logger.Info("match abandoned", "match", m.ID)
		return m.ID, closed, nil
	})
}
