package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/ir"
)

// NewMatchCommand creates the match command group.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Schedule, list and abandon matches",
	}
	cmd.AddCommand(newMatchCreateCommand(rootOpts))
	cmd.AddCommand(newMatchListCommand(rootOpts))
	cmd.AddCommand(newMatchAbandonCommand(rootOpts))
	return cmd
}

func newMatchCreateCommand(opts *RootOptions) *cobra.Command {
	req := api.CreateMatchRequest{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule a match between two teams",
		Long: `Schedule a match. The format fixes overs, team size and the per-bowler
over quota; it defaults to scoring.default_format.

Examples:
  crease match create --team1 <id> --team2 <id>
  crease match create --team1 <id> --team2 <id> --match-format odi --venue "The Oval"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			if req.Format == "" {
				req.Format = opts.config().Scoring.DefaultFormat
			}
			snap, err := opts.client().CreateMatch(commandContext(cmd), req)
			if err != nil {
				return out.Fail("create match", err)
			}
			return out.Success(snap, func(w io.Writer) {
				fmt.Fprintf(w, "Created match %s\n", snap.Match.ID)
				renderSnapshot(w, snap)
			})
		},
	}
	cmd.Flags().StringVar(&req.Team1ID, "team1", "", "first team id (required)")
	cmd.Flags().StringVar(&req.Team2ID, "team2", "", "second team id (required)")
	cmd.Flags().StringVar(&req.Format, "match-format", "", "match format (default scoring.default_format)")
	cmd.Flags().StringVar(&req.Venue, "venue", "", "venue")
	cmd.Flags().StringVar(&req.ScheduledDate, "date", "", "scheduled date")
	cmd.Flags().StringVar(&req.TournamentID, "tournament", "", "tournament id")
	_ = cmd.MarkFlagRequired("team1")
	_ = cmd.MarkFlagRequired("team2")
	return cmd
}

func newMatchListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List matches",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			matches, err := opts.client().ListMatches(commandContext(cmd))
			if err != nil {
				return out.Fail("list matches", err)
			}
			return out.Success(matches, func(w io.Writer) {
				if len(matches) == 0 {
					fmt.Fprintln(w, "No matches.")
				}
				for _, m := range matches {
					renderMatch(w, m)
				}
			})
		},
	}
}

func newMatchAbandonCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "abandon <match-id>",
		Short:         "Abandon a match without a result",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndRender(opts, cmd, "abandon match", func(ctx context.Context) (*ir.Snapshot, error) {
				return opts.client().AbandonMatch(ctx, args[0])
			})
		},
	}
}

// mutateAndRender runs one scoring call and prints the resulting snapshot.
func mutateAndRender(opts *RootOptions, cmd *cobra.Command, action string, fn func(ctx context.Context) (*ir.Snapshot, error)) error {
	out := opts.formatter(cmd)
	snap, err := fn(commandContext(cmd))
	if err != nil {
		return out.Fail(action, err)
	}
	return out.Success(snap, func(w io.Writer) { renderSnapshot(w, snap) })
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
