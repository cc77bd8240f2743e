package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/client"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/livesync"
)

const scoreHelp = `Enter one action per line:
  <runs> [extra] [wicket] [out NAME]   record a delivery, e.g. "4", "1 wide", "0 caught", "1 run_out out Bea"
  striker|non_striker|bowler NAME      assign a role
  undo                                 remove the last delivery
  end declared|abandoned               end the current innings
  help                                 show this text
  quit                                 leave`

// NewScoreCommand creates the interactive score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <match-id>",
		Short: "Score a match interactively",
		Long: `Score a match from the keyboard. The scorecard is kept current by
polling and is redrawn after every accepted action. Actions are read one
per line until "quit" or end of input.

` + scoreHelp,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(rootOpts, cmd, args[0])
		},
	}
}

type scoreAction int

const (
	actionBall scoreAction = iota
	actionAssign
	actionUndo
	actionEnd
	actionHelp
	actionQuit
)

type scoreLine struct {
	action scoreAction
	ball   BallOptions
	role   ir.Role
	player string
	reason ir.CloseReason
}

// parseScoreLine parses one line of scorer input. Blank lines are an error
// the caller skips.
func parseScoreLine(line string) (scoreLine, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return scoreLine{}, errors.New("empty line")
	}

	head := strings.ToLower(fields[0])
	switch head {
	case "q", "quit", "exit":
		return scoreLine{action: actionQuit}, nil
	case "h", "help", "?":
		return scoreLine{action: actionHelp}, nil
	case "u", "undo":
		return scoreLine{action: actionUndo}, nil
	case "end":
		if len(fields) != 2 {
			return scoreLine{}, errors.New("usage: end declared|abandoned")
		}
		reason := ir.CloseReason(strings.ToLower(fields[1]))
		if !reason.Manual() {
			return scoreLine{}, fmt.Errorf("cannot end an innings as %q", fields[1])
		}
		return scoreLine{action: actionEnd, reason: reason}, nil
	}

	if role, err := ir.ParseRole(strings.ReplaceAll(head, "-", "_")); err == nil {
		if len(fields) < 2 {
			return scoreLine{}, fmt.Errorf("usage: %s NAME", role)
		}
		return scoreLine{action: actionAssign, role: role, player: strings.Join(fields[1:], " ")}, nil
	}

	b := BallOptions{Over: -1, Ball: -1}
	runs, err := strconv.Atoi(head)
	if err != nil || runs < 0 {
		return scoreLine{}, fmt.Errorf("unknown action %q (try help)", fields[0])
	}
	b.Runs = runs

	for i := 1; i < len(fields); i++ {
		tok := strings.ToLower(fields[i])
		switch {
		case tok == "out":
			if i+1 >= len(fields) {
				return scoreLine{}, errors.New("out needs a player name")
			}
			b.Out = strings.Join(fields[i+1:], " ")
			i = len(fields)
		case isExtra(tok):
			if b.Extra != "" {
				return scoreLine{}, errors.New("more than one extra")
			}
			b.Extra = tok
		case isWicket(tok):
			if b.Wicket != "" {
				return scoreLine{}, errors.New("more than one wicket")
			}
			b.Wicket = tok
		default:
			return scoreLine{}, fmt.Errorf("unknown token %q", fields[i])
		}
	}
	return scoreLine{action: actionBall, ball: b}, nil
}

func isExtra(s string) bool {
	e, err := ir.ParseExtraType(s)
	return err == nil && e != ir.ExtraNone
}

func isWicket(s string) bool {
	w, err := ir.ParseWicketType(s)
	return err == nil && w.Fell()
}

func runScore(opts *RootOptions, cmd *cobra.Command, matchID string) error {
	out := opts.formatter(cmd)
	c := opts.client()
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	h := livesync.Watch(ctx, c, matchID, livesync.Options{
		Interval:   opts.config().Live.PollInterval.Duration,
		OnSnapshot: newSnapshotPrinter(out),
		OnError: func(err error) {
			e, _ := describe(err)
			fmt.Fprintf(out.GetErrWriter(), "%s [%s]: %s\n", red("poll failed"), e.Code, e.Message)
		},
		Logger: opts.logger(),
	})
	defer h.Close()
	op := livesync.NewOperator(h)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parsed, err := parseScoreLine(line)
		if err != nil {
			fmt.Fprintf(out.GetErrWriter(), "%s: %v\n", red("?"), err)
			continue
		}
		switch parsed.action {
		case actionQuit:
			return nil
		case actionHelp:
			fmt.Fprintln(out.GetErrWriter(), scoreHelp)
			continue
		}

		_, err = op.Do(ctx, func(ctx context.Context) (*ir.Snapshot, error) {
			return applyScoreLine(ctx, c, matchID, parsed)
		})
		if err != nil {
			reportScoreError(out.GetErrWriter(), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to read input", err)
	}
	return nil
}

// applyScoreLine performs one action. Names and the next ball position
// are resolved against a fresh fetch, not the polled copy, which may lag
// the previous action.
func applyScoreLine(ctx context.Context, c *client.Client, matchID string, l scoreLine) (*ir.Snapshot, error) {
	if l.action == actionUndo {
		return c.UndoLastDelivery(ctx, matchID)
	}
	snap, err := c.LiveSnapshot(ctx, matchID)
	if err != nil {
		return nil, err
	}
	switch l.action {
	case actionAssign:
		return assignRoles(ctx, c, snap, []roleRef{{l.role, l.player}})
	case actionEnd:
		inningsID, err := currentInnings(snap)
		if err != nil {
			return nil, err
		}
		return c.EndInnings(ctx, inningsID, l.reason)
	default:
		return recordBall(ctx, c, snap, l.ball)
	}
}

func reportScoreError(w io.Writer, err error) {
	if errors.Is(err, livesync.ErrBusy) {
		fmt.Fprintln(w, faint("still saving the previous action"))
		return
	}
	e, _ := describe(err)
	fmt.Fprintf(w, "%s [%s]: %s\n", red("rejected"), e.Code, e.Message)
	if e.Hint != "" {
		fmt.Fprintf(w, "  %s\n", e.Hint)
	}
}
