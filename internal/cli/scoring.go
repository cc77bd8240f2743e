package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/client"
	"github.com/roach88/crease/internal/ir"
)

// NewInningsCommand creates the innings command group.
func NewInningsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "innings",
		Short: "Start and end innings",
	}
	cmd.AddCommand(newInningsStartCommand(rootOpts))
	cmd.AddCommand(newInningsEndCommand(rootOpts))
	return cmd
}

func newInningsStartCommand(opts *RootOptions) *cobra.Command {
	var batting, bowling string
	var number int

	cmd := &cobra.Command{
		Use:   "start <match-id>",
		Short: "Start the next innings",
		Long: `Start an innings. Teams may be given by id or name; the bowling side
defaults to the other team and the number to the next innings.

Starting the second innings fixes the target at first-innings runs plus one.

Examples:
  crease innings start <match-id> --batting Rovers
  crease innings start <match-id> --batting <team-id> --number 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			return mutateAndRender(opts, cmd, "start innings", func(ctx context.Context) (*ir.Snapshot, error) {
				snap, err := c.LiveSnapshot(ctx, args[0])
				if err != nil {
					return nil, err
				}
				req := api.StartInningsRequest{MatchID: args[0], InningNumber: number}
				if req.BattingTeamID, err = resolveTeam(snap.Match, batting); err != nil {
					return nil, err
				}
				req.BowlingTeamID = otherTeam(snap.Match, req.BattingTeamID)
				if bowling != "" {
					if req.BowlingTeamID, err = resolveTeam(snap.Match, bowling); err != nil {
						return nil, err
					}
				}
				if req.InningNumber == 0 {
					req.InningNumber = len(snap.Innings) + 1
				}
				return c.StartInnings(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&batting, "batting", "", "batting team id or name (required)")
	cmd.Flags().StringVar(&bowling, "bowling", "", "bowling team id or name (default: the other side)")
	cmd.Flags().IntVar(&number, "number", 0, "innings number (default: next)")
	_ = cmd.MarkFlagRequired("batting")
	return cmd
}

func newInningsEndCommand(opts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "end <match-id>",
		Short: "Declare or abandon the current innings",
		Long: `End the current innings by operator decision. Overs running out, all
out and reaching the target close an innings on their own.

Examples:
  crease innings end <match-id> --reason declared`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			return mutateAndRender(opts, cmd, "end innings", func(ctx context.Context) (*ir.Snapshot, error) {
				snap, err := c.LiveSnapshot(ctx, args[0])
				if err != nil {
					return nil, err
				}
				inningsID, err := currentInnings(snap)
				if err != nil {
					return nil, err
				}
				return c.EndInnings(ctx, inningsID, ir.CloseReason(reason))
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", string(ir.CloseDeclared), "declared or abandoned")
	return cmd
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	var striker, nonStriker, bowler string

	cmd := &cobra.Command{
		Use:   "assign <match-id>",
		Short: "Put players into the striker, non-striker and bowler roles",
		Long: `Assign roles in the current innings. Players may be given by id or
roster name. Roles are assigned in the order striker, non-striker, bowler;
assignments made before a rejected one stay in place.

Examples:
  crease assign <match-id> --striker Ana --non-striker Bea --bowler Zed
  crease assign <match-id> --bowler Yan`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rootOpts.client()
			return mutateAndRender(rootOpts, cmd, "assign", func(ctx context.Context) (*ir.Snapshot, error) {
				snap, err := c.LiveSnapshot(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return assignRoles(ctx, c, snap, []roleRef{
					{ir.RoleStriker, striker},
					{ir.RoleNonStriker, nonStriker},
					{ir.RoleBowler, bowler},
				})
			})
		},
	}
	cmd.Flags().StringVar(&striker, "striker", "", "striker")
	cmd.Flags().StringVar(&nonStriker, "non-striker", "", "non-striker")
	cmd.Flags().StringVar(&bowler, "bowler", "", "bowler")
	cmd.MarkFlagsOneRequired("striker", "non-striker", "bowler")
	return cmd
}

type roleRef struct {
	role ir.Role
	ref  string
}

// assignRoles applies each non-empty role in order and returns the last
// snapshot.
func assignRoles(ctx context.Context, c *client.Client, snap *ir.Snapshot, refs []roleRef) (*ir.Snapshot, error) {
	inningsID, err := currentInnings(snap)
	if err != nil {
		return nil, err
	}
	for _, r := range refs {
		if r.ref == "" {
			continue
		}
		playerID, err := resolvePlayer(snap, r.ref)
		if err != nil {
			return nil, err
		}
		if snap, err = c.AssignRole(ctx, inningsID, playerID, r.role); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// BallOptions holds flags for the ball command.
type BallOptions struct {
	Runs   int
	Extra  string
	Wicket string
	Out    string
	Over   int
	Ball   int
}

// NewBallCommand creates the ball command.
func NewBallCommand(rootOpts *RootOptions) *cobra.Command {
	b := &BallOptions{}

	cmd := &cobra.Command{
		Use:   "ball <match-id>",
		Short: "Record one delivery",
		Long: `Record a delivery in the current innings. The over and ball default to
the next expected position; give them to guard against a double entry.

Examples:
  crease ball <match-id> --runs 4
  crease ball <match-id> --extra wide --runs 1
  crease ball <match-id> --wicket caught
  crease ball <match-id> --wicket run_out --out Bea --runs 1
  crease ball <match-id> --over 3 --ball 2 --runs 6`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rootOpts.client()
			return mutateAndRender(rootOpts, cmd, "record delivery", func(ctx context.Context) (*ir.Snapshot, error) {
				snap, err := c.LiveSnapshot(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return recordBall(ctx, c, snap, *b)
			})
		},
	}
	cmd.Flags().IntVarP(&b.Runs, "runs", "r", 0, "runs off the bat (or byes/leg-byes run)")
	cmd.Flags().StringVar(&b.Extra, "extra", "", "wide, no_ball, bye or leg_bye")
	cmd.Flags().StringVar(&b.Wicket, "wicket", "", "bowled, caught, lbw, run_out, stumped, hit_wicket or retired_hurt")
	cmd.Flags().StringVar(&b.Out, "out", "", "dismissed batter (default: striker)")
	cmd.Flags().IntVar(&b.Over, "over", -1, "over number, zero-based (default: next)")
	cmd.Flags().IntVar(&b.Ball, "ball", -1, "ball in over, 1-6 (default: next)")
	return cmd
}

// recordBall fills in the next position and the out player's id, then
// records the delivery.
func recordBall(ctx context.Context, c *client.Client, snap *ir.Snapshot, b BallOptions) (*ir.Snapshot, error) {
	inningsID, err := currentInnings(snap)
	if err != nil {
		return nil, err
	}
	req := api.RecordDeliveryRequest{
		OverNumber: snap.Current.NextOver,
		BallNumber: snap.Current.NextBall,
		RunsOffBat: b.Runs,
		ExtraType:  ir.ExtraType(b.Extra),
		WicketType: ir.WicketType(b.Wicket),
	}
	if b.Over >= 0 {
		req.OverNumber = b.Over
	}
	if b.Ball >= 0 {
		req.BallNumber = b.Ball
	}
	if b.Out != "" {
		if req.OutPlayerID, err = resolvePlayer(snap, b.Out); err != nil {
			return nil, err
		}
	}
	return c.RecordDelivery(ctx, inningsID, req)
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <match-id>",
		Short: "Remove the most recent delivery",
		Long: `Remove the most recent delivery of the match. The innings is rebuilt
from the remaining ledger; a closed innings reopens and a completed match
goes back to live.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rootOpts.client()
			return mutateAndRender(rootOpts, cmd, "undo", func(ctx context.Context) (*ir.Snapshot, error) {
				return c.UndoLastDelivery(ctx, args[0])
			})
		},
	}
}
