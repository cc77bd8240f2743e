package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/stats"
	"github.com/roach88/crease/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Innings  int // optional - one innings only
}

// TraceEntry is one delivery in the ledger timeline, with the innings
// score after it.
type TraceEntry struct {
	Seq        int64  `json:"sequence_number"`
	Position   string `json:"position"`
	Bowler     string `json:"bowler"`
	Striker    string `json:"striker"`
	NonStriker string `json:"non_striker"`
	Runs       int    `json:"runs_off_bat"`
	Extra      string `json:"extra_type"`
	Wicket     string `json:"wicket_type"`
	Out        string `json:"out,omitempty"`
	Score      string `json:"score"`
}

// InningsTrace is the ledger of one innings.
type InningsTrace struct {
	Number      int          `json:"inning_number"`
	BattingTeam string       `json:"batting_team"`
	Status      string       `json:"status"`
	CloseReason string       `json:"close_reason,omitempty"`
	Timeline    []TraceEntry `json:"timeline"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	MatchID string         `json:"match_id"`
	Innings []InningsTrace `json:"innings"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <match-id>",
		Short: "Print the delivery ledger of a match",
		Long: `Print every stored delivery of a match in ledger order, with who was on
strike, who bowled and the running score after each ball. Reads the
database directly.

Examples:
  crease trace <match-id> --db ./data/crease.db
  crease trace <match-id> --innings 2
  crease trace <match-id> --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default database.path)")
	cmd.Flags().IntVar(&opts.Innings, "innings", 0, "show one innings only")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command, matchID string) error {
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.config().Database.Path
	}
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", dbPath))
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	out := opts.formatter(cmd)
	state, err := st.LoadMatchState(context.Background(), matchID)
	if errors.Is(err, store.ErrNotFound) {
		_ = out.Error(CLIError{Code: "NOT_FOUND", Message: fmt.Sprintf("match %s not found", matchID)})
		return NewExitError(ExitFailure, "match not found")
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load match", err)
	}

	result := buildTrace(state, opts.Innings)
	return out.Success(result, func(w io.Writer) { renderTrace(w, result) })
}

// buildTrace lays out the ledgers of state. only, when non-zero, keeps a
// single innings.
func buildTrace(state store.MatchState, only int) TraceResult {
	name := func(id string) string {
		if p, ok := state.Players[id]; ok {
			return p.Name
		}
		return id
	}
	teamName := func(id string) string {
		if id == state.Match.Team1ID {
			return state.Match.Team1Name
		}
		return state.Match.Team2Name
	}

	result := TraceResult{MatchID: state.Match.ID, Innings: []InningsTrace{}}
	for _, inn := range state.Innings {
		if only != 0 && inn.Number != only {
			continue
		}
		it := InningsTrace{
			Number:      inn.Number,
			BattingTeam: teamName(inn.BattingTeamID),
			Status:      string(inn.Status),
			CloseReason: string(inn.CloseReason),
			Timeline:    []TraceEntry{},
		}
		runs, wickets, legal := 0, 0, 0
		for _, d := range state.Ledgers[inn.ID] {
			runs += d.TotalRuns()
			if d.Wicket.Fell() {
				wickets++
			}
			if d.IsLegal() {
				legal++
			}
			e := TraceEntry{
				Seq:        d.Seq,
				Position:   d.Label(),
				Bowler:     name(d.BowlerID),
				Striker:    name(d.StrikerID),
				NonStriker: name(d.NonStrikerID),
				Runs:       d.RunsOffBat,
				Extra:      string(d.Extra),
				Wicket:     string(d.Wicket),
				Score:      fmt.Sprintf("%d/%d (%s)", runs, wickets, stats.OversDisplay(legal)),
			}
			if d.Wicket.Fell() {
				out := d.OutPlayerID
				if out == "" {
					out = d.StrikerID
				}
				e.Out = name(out)
			}
			it.Timeline = append(it.Timeline, e)
		}
		result.Innings = append(result.Innings, it)
	}
	return result
}

func renderTrace(w io.Writer, r TraceResult) {
	if len(r.Innings) == 0 {
		fmt.Fprintln(w, "No innings recorded.")
		return
	}
	for i, inn := range r.Innings {
		if i > 0 {
			fmt.Fprintln(w)
		}
		status := inn.Status
		if inn.CloseReason != "" {
			status += ", " + inn.CloseReason
		}
		fmt.Fprintf(w, "%s %d: %s (%s)\n", bold("Innings"), inn.Number, inn.BattingTeam, status)
		if len(inn.Timeline) == 0 {
			fmt.Fprintln(w, faint("  no deliveries"))
			continue
		}
		for _, e := range inn.Timeline {
			fmt.Fprintf(w, "  %3d  %-5s %s to %s, %s%s  %s\n",
				e.Seq, e.Position, e.Bowler, e.Striker, describeBall(e), outSuffix(e), faint(e.Score))
		}
	}
}

func describeBall(e TraceEntry) string {
	s := fmt.Sprintf("%d", e.Runs)
	if e.Extra != "" && e.Extra != string(ir.ExtraNone) {
		s += " " + e.Extra
	}
	return s
}

func outSuffix(e TraceEntry) string {
	if e.Out == "" {
		return ""
	}
	return fmt.Sprintf(", %s %s", red(e.Wicket), e.Out)
}
