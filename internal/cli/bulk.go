package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/batch"
)

// BulkDeleteOptions holds flags for the bulk-delete command.
type BulkDeleteOptions struct {
	*RootOptions
	Teams bool
}

// BulkFailure is one id that could not be deleted.
type BulkFailure struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkResult summarises a bulk delete.
type BulkResult struct {
	Deleted  int           `json:"deleted"`
	Failed   int           `json:"failed"`
	Failures []BulkFailure `json:"failures"`
}

// NewBulkDeleteCommand creates the bulk-delete command.
func NewBulkDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BulkDeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bulk-delete <id>...",
		Short: "Delete many matches or teams",
		Long: `Delete matches (or, with --teams, teams) one at a time, pausing
batch.delay between requests. A failure does not stop the run; every
failure is listed at the end and the command exits 1.

Examples:
  crease bulk-delete <match-id> <match-id>
  crease bulk-delete --teams <team-id> <team-id>`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulkDelete(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Teams, "teams", false, "ids are teams, not matches")

	return cmd
}

func runBulkDelete(opts *BulkDeleteOptions, cmd *cobra.Command, ids []string) error {
	out := opts.formatter(cmd)
	c := opts.client()
	del := c.DeleteMatch
	if opts.Teams {
		del = c.DeleteTeam
	}

	t := batch.New(
		batch.WithDelay(opts.config().Batch.Delay.Duration),
		batch.WithLogger(opts.logger()),
		batch.WithProgress(func(p batch.Progress) {
			if out.Format != "json" {
				fmt.Fprintf(out.GetErrWriter(), "\r%s %d/%d", faint("deleting"), p.Current, p.Total)
				if p.Current == p.Total {
					fmt.Fprintln(out.GetErrWriter())
				}
			}
		}),
	)
	res := t.Run(commandContext(cmd), ids, del)

	result := BulkResult{Deleted: res.SuccessCount, Failed: res.FailCount, Failures: []BulkFailure{}}
	for _, f := range res.Failures {
		e, _ := describe(f.Err)
		result.Failures = append(result.Failures, BulkFailure{ID: f.ID, Code: e.Code, Message: e.Message})
	}

	msg := fmt.Sprintf("%d of %d deletions failed", result.Failed, len(ids))
	if result.Failed > 0 && out.Format == "json" {
		if err := out.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "BATCH_INCOMPLETE", Message: msg},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	if err := out.Success(result, func(w io.Writer) { renderBulk(w, result) }); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, msg)
	}
	return nil
}

func renderBulk(w io.Writer, r BulkResult) {
	for _, f := range r.Failures {
		fmt.Fprintf(w, "%s %s [%s]: %s\n", red("✗"), f.ID, f.Code, f.Message)
	}
	fmt.Fprintf(w, "%d deleted, %d failed\n", r.Deleted, r.Failed)
}
