package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/feed"
	"github.com/roach88/crease/internal/format"
	"github.com/roach88/crease/internal/server"
	"github.com/roach88/crease/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database string
	Addr     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scoring server",
		Long: `Run the scoring server: the HTTP API, the live websocket stream and,
when feed.brokers is configured, the Kafka event feed.

The database is created if it doesn't exist. Formats come from the built-in
catalogue plus scoring.formats_file.

Examples:
  crease serve
  crease serve --db ./data/club.db --addr :9000
  CREASE_FEED_BROKERS=localhost:9092 crease serve`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default database.path)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default server.addr)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.config()
	logger := opts.logger()

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	addr := opts.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	formats, err := format.Load(cfg.Scoring.FormatsFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load formats", err)
	}
	rule, err := engine.ParseOverRule(cfg.Scoring.ConsecutiveOver)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid scoring config", err)
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WrapExitError(ExitCommandError, "failed to create database directory", err)
		}
	}
	logger.Info("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	hub := feed.NewHub()
	publishers := feed.Multi{hub}
	if len(cfg.Feed.Brokers) > 0 {
		kafka := feed.NewKafkaPublisher(cfg.Feed.Brokers, cfg.Feed.Topic, feed.WithKafkaLogger(logger))
		defer func() {
			if closeErr := kafka.Close(); closeErr != nil {
				logger.Error("error closing kafka writer", "error", closeErr)
			}
		}()
		publishers = append(publishers, kafka)
		logger.Info("kafka feed enabled", "brokers", cfg.Feed.Brokers, "topic", cfg.Feed.Topic)
	}

	eng := engine.New(st, formats,
		engine.WithLogger(logger),
		engine.WithPublisher(publishers),
		engine.WithRecentBalls(cfg.Live.RecentBalls),
		engine.WithOverRule(rule))

	srvOpts := []server.Option{server.WithHub(hub), server.WithLogger(logger)}
	if cfg.Server.Token != "" {
		srvOpts = append(srvOpts, server.WithToken(cfg.Server.Token))
	}
	srv := server.New(eng, srvOpts...)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Scoring server listening on %s (formats: %v)\n", addr, formats.Names())
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
