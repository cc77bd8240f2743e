package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/stats"
)

// FeedOptions holds flags for the feed tail command.
type FeedOptions struct {
	*RootOptions
	Match string
}

// NewFeedCommand creates the feed command group.
func NewFeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Read the Kafka scoring feed",
	}
	cmd.AddCommand(newFeedTailCommand(rootOpts))
	return cmd
}

func newFeedTailCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print scoring events as they are published",
		Long: `Consume the scoring topic (feed.topic on feed.brokers) as consumer group
feed.group_id and print one line per event until interrupted. JSON output
prints each event, snapshot included, as a single line.

Examples:
  crease feed tail
  crease feed tail --match <match-id> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedTail(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Match, "match", "", "only events for this match")

	return cmd
}

func runFeedTail(opts *FeedOptions, cmd *cobra.Command) error {
	cfg := opts.config().Feed
	if len(cfg.Brokers) == 0 {
		return NewExitError(ExitCommandError, "feed.brokers is not configured")
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := opts.formatter(cmd)
	err := feed.Tail(ctx, cfg.Brokers, cfg.Topic, cfg.GroupID, func(ev feed.Event) error {
		if opts.Match != "" && ev.MatchID != opts.Match {
			return nil
		}
		return printEvent(out, ev)
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "feed tail failed", err)
	}
	return nil
}

func printEvent(out *OutputFormatter, ev feed.Event) error {
	if out.Format == "json" {
		return json.NewEncoder(out.Writer).Encode(ev)
	}
	line := fmt.Sprintf("%6d  %-18s %s", ev.Seq, ev.Type, ev.MatchID)
	if ev.Snapshot != nil {
		if inn, ok := ev.Snapshot.CurrentInnings(); ok {
			line += fmt.Sprintf("  %d/%d (%s)", inn.Runs, inn.Wickets, stats.OversDisplay(inn.LegalBalls))
		}
	}
	_, err := io.WriteString(out.Writer, line+"\n")
	return err
}
