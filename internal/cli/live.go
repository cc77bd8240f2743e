package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/ir"
	"github.com/roach88/crease/internal/livesync"
)

// LiveOptions holds flags for the live command.
type LiveOptions struct {
	*RootOptions
	Watch  bool
	Stream bool
}

// NewLiveCommand creates the live command.
func NewLiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "live <match-id>",
		Short: "Show the live scorecard",
		Long: `Show the live scorecard of a match.

With --watch the snapshot is polled every live.poll_interval and redrawn
whenever it changes. With --stream the server pushes a new snapshot after
every scoring operation. Both run until interrupted.

Examples:
  crease live <match-id>
  crease live <match-id> --watch
  crease live <match-id> --stream --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "poll and redraw on change")
	cmd.Flags().BoolVar(&opts.Stream, "stream", false, "follow the websocket stream")
	cmd.MarkFlagsMutuallyExclusive("watch", "stream")

	return cmd
}

func runLive(opts *LiveOptions, cmd *cobra.Command, matchID string) error {
	out := opts.formatter(cmd)
	c := opts.client()

	if !opts.Watch && !opts.Stream {
		snap, err := c.LiveSnapshot(commandContext(cmd), matchID)
		if err != nil {
			return out.Fail("live", err)
		}
		return out.Success(snap, func(w io.Writer) { renderSnapshot(w, snap) })
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	draw := newSnapshotPrinter(out)
	if opts.Stream {
		err := c.Stream(ctx, matchID, func(ev feed.Event) error {
			if ev.Snapshot == nil {
				fmt.Fprintf(out.GetErrWriter(), "match %s: %s\n", ev.MatchID, ev.Type)
				return nil
			}
			draw(ev.Snapshot)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			return out.Fail("live stream", err)
		}
		return nil
	}

	h := livesync.Watch(ctx, c, matchID, livesync.Options{
		Interval:   opts.config().Live.PollInterval.Duration,
		OnSnapshot: draw,
		OnError: func(err error) {
			e, _ := describe(err)
			fmt.Fprintf(out.GetErrWriter(), "%s [%s]: %s\n", red("poll failed"), e.Code, e.Message)
		},
		Logger: opts.logger(),
	})
	<-ctx.Done()
	h.Close()
	return nil
}

// newSnapshotPrinter returns a callback that prints each snapshot in the
// configured format. Calls may come from any goroutine.
func newSnapshotPrinter(out *OutputFormatter) func(*ir.Snapshot) {
	var mu sync.Mutex
	return func(snap *ir.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if out.Format != "json" {
			fmt.Fprintln(out.Writer, faint("---"))
		}
		_ = out.Success(snap, func(w io.Writer) { renderSnapshot(w, snap) })
	}
}
