package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/format"
	"github.com/roach88/crease/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult is the outcome of a replay check.
type ReplayResult struct {
	Checked    int                     `json:"innings_checked"`
	Mismatches []engine.ReplayMismatch `json:"mismatches"`
	Consistent bool                    `json:"consistent"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild every innings from its ledger and compare",
		Long: `Fold every stored delivery ledger from scratch and compare the result
with the innings counters in the database. Nothing is written.

Exit codes:
  0 - Every innings matches its ledger
  1 - At least one innings differs
  2 - Command error (database not found, etc.)

Examples:
  crease replay --db ./data/crease.db
  crease replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default database.path)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	cfg := opts.config()
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", dbPath))
		}
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formats, err := format.Load(cfg.Scoring.FormatsFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load formats", err)
	}

	e := engine.New(st, formats, engine.WithLogger(opts.logger()))
	mismatches, checked, err := e.VerifyReplay(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	result := ReplayResult{Checked: checked, Mismatches: mismatches, Consistent: len(mismatches) == 0}
	out := opts.formatter(cmd)
	if !result.Consistent && out.Format == "json" {
		if err := out.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "REPLAY_MISMATCH", Message: "stored counters differ from the ledger"},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "replay verification failed")
	}

	if err := out.Success(result, func(w io.Writer) { renderReplay(w, result, opts.Verbose) }); err != nil {
		return err
	}
	if !result.Consistent {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

func renderReplay(w io.Writer, r ReplayResult, verbose bool) {
	fmt.Fprintf(w, "Replay: %d innings checked\n", r.Checked)
	for _, m := range r.Mismatches {
		fmt.Fprintf(w, "%s %s\n", red("✗"), m)
		if verbose {
			fmt.Fprintf(w, "  innings id: %s\n", m.InningsID)
		}
	}
	if r.Consistent {
		fmt.Fprintf(w, "%s Every innings matches its ledger\n", green("✓"))
		return
	}
	fmt.Fprintf(w, "%s %d innings differ from their ledger\n", red("✗"), len(r.Mismatches))
}
