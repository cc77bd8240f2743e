package engine

import (
	"context"
	"fmt"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/store"
)

// MaxRunsOffBat bounds runs_off_bat on a single delivery.
const MaxRunsOffBat = 6

// DeliveryInput is one ball as reported by the operator. Extra and Wicket
// default to none; OutPlayerID defaults to the striker when a wicket falls.
type DeliveryInput struct {
	InningsID   string        `json:"innings_id"`
	OverNumber  int           `json:"over_number"`
	BallNumber  int           `json:"ball_number"`
	RunsOffBat  int           `json:"runs_off_bat"`
	Extra       ir.ExtraType  `json:"extra_type,omitempty"`
	Wicket      ir.WicketType `json:"wicket_type,omitempty"`
	OutPlayerID string        `json:"out_player_id,omitempty"`
}

// RecordDelivery appends a ball to the innings ledger.
//
// The current role assignment is copied onto the entry, the innings is
// re-folded from its full ledger, roles rotate, and the innings (and match)
// close if the fold says so.
func (e *Engine) RecordDelivery(ctx context.Context, in DeliveryInput) (*ir.Snapshot, error) {
	if in.Extra == "" {
		in.Extra = ir.ExtraNone
	}
	if in.Wicket == "" {
		in.Wicket = ir.WicketNone
	}

	return e.apply(ctx, feed.EventDeliveryRecorded, func(ctx context.Context, q *store.Queries) (string, string, error) {
		m, inn, err := loadInnings(ctx, q, in.InningsID)
		if err != nil {
			return "", "", err
		}
		if !inn.Active() {
			return "", "", newError(CodeInningsNotActive,
				"innings %d is %s", inn.Number, inn.Status).forInnings(m.ID, inn.ID)
		}

		roles, err := q.GetRoles(ctx, inn.ID)
		if err != nil {
			return "", "", err
		}
		if !roles.Complete() {
			se := newError(CodeIncompleteRoleAssignment,
				"roles not assigned: %v", roles.Missing()).forInnings(m.ID, inn.ID)
			se.Details = map[string]string{"missing": fmt.Sprint(roles.Missing())}
			return "", "", se
		}

		d, err := validateDelivery(in, inn, roles)
		if err != nil {
			if se, ok := err.(*ScoringError); ok {
				se.forInnings(m.ID, inn.ID)
			}
			return "", "", err
		}
		d.ID = e.ids.Generate()

		ledger := NewLedger(q)
		stored, err := ledger.Append(ctx, d)
		if err != nil {
			return "", "", err
		}
		entries, err := ledger.Entries(ctx, inn.ID)
		if err != nil {
			return "", "", err
		}

		inn = recompute(m, inn, entries)
		if _, err := settle(ctx, q, m, inn); err != nil {
			return "", "", err
		}
		if err := q.PutRoles(ctx, rotate(stored, inn.LegalBalls)); err != nil {
			return "", "", err
		}

		e.logger.Debug("delivery recorded",
			"innings", inn.ID,
			"seq", stored.Seq,
			"ball", stored.Label(),
			"runs", inn.Runs,
			"wickets", inn.Wickets)
		if !inn.Active() {
			e.logger.Info("innings closed", "innings", inn.ID, "reason", inn.CloseReason)
		}
		return m.ID, inn.ID, nil
	})
}

// validateDelivery checks operator input against the innings position and
// the current roles, and builds the ledger entry with its role snapshot.
// Always returns a *ScoringError on failure.
func validateDelivery(in DeliveryInput, inn ir.Innings, roles ir.RoleAssignment) (ir.Delivery, error) {
	if _, err := ir.ParseExtraType(string(in.Extra)); err != nil {
		return ir.Delivery{}, validationError("extra_type", "%v", err)
	}
	if _, err := ir.ParseWicketType(string(in.Wicket)); err != nil {
		return ir.Delivery{}, validationError("wicket_type", "%v", err)
	}
	if in.RunsOffBat < 0 || in.RunsOffBat > MaxRunsOffBat {
		return ir.Delivery{}, validationError("runs_off_bat",
			"runs off bat must be between 0 and %d, got %d", MaxRunsOffBat, in.RunsOffBat)
	}
	if !in.Wicket.AllowedWith(in.Extra) {
		return ir.Delivery{}, validationError("wicket_type",
			"%s is not possible on a %s", in.Wicket, in.Extra)
	}

	out := in.OutPlayerID
	if in.Wicket.Fell() {
		if out == "" {
			out = roles.StrikerID
		}
		if out != roles.StrikerID && out != roles.NonStrikerID {
			return ir.Delivery{}, validationError("out_player_id",
				"player %s is not at the crease", out)
		}
	} else if out != "" {
		return ir.Delivery{}, validationError("out_player_id",
			"out player given without a wicket")
	}

	wantOver, wantBall := inn.NextPosition()
	if in.OverNumber != wantOver || in.BallNumber != wantBall {
		return ir.Delivery{}, &ScoringError{
			Code: CodeOutOfSequence,
			Message: fmt.Sprintf("expected over %d ball %d, got over %d ball %d",
				wantOver, wantBall, in.OverNumber, in.BallNumber),
			Field: "ball_number",
			Details: map[string]string{
				"expected_over": fmt.Sprint(wantOver),
				"expected_ball": fmt.Sprint(wantBall),
			},
		}
	}

	return ir.Delivery{
		InningsID:    inn.ID,
		OverNumber:   in.OverNumber,
		BallNumber:   in.BallNumber,
		RunsOffBat:   in.RunsOffBat,
		Extra:        in.Extra,
		Wicket:       in.Wicket,
		OutPlayerID:  out,
		StrikerID:    roles.StrikerID,
		NonStrikerID: roles.NonStrikerID,
		BowlerID:     roles.BowlerID,
	}, nil
}
