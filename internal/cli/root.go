package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/client"
	"github.com/roach88/crease/internal/config"
)

const logo = "\n" +
	"   ___ _ __ ___  __ _ ___  ___\n" +
	"  / __| '__/ _ \\/ _` / __|/ _ \\\n" +
	" | (__| | |  __/ (_| \\__ \\  __/\n" +
	"  \\___|_|  \\___|\\__,_|___/\\___|\n"

// RootOptions holds global flags and the state every command shares.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Server     string

	// Config and Logger are set before any subcommand runs. Commands built
	// directly in tests fall back to defaults.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the crease CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "crease",
		Short: "crease - live cricket scoring",
		Long:  color.CyanString(logo) + "\nBall-by-ball scoring with an append-only delivery ledger.",

		// main prints the error once, after any formatted output.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Config = cfg
			opts.Logger = newLogger(cmd.ErrOrStderr(), cfg.Log, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to TOML config (default $CREASE_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "scoring server URL (overrides client.server)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTeamCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewInningsCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewBallCommand(opts))
	cmd.AddCommand(NewUndoCommand(opts))
	cmd.AddCommand(NewLiveCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewBulkDeleteCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewFormatsCommand(opts))
	cmd.AddCommand(NewFeedCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		o.Config = config.Default()
	}
	return o.Config
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// client builds an API client from config, with --server taking
// precedence. A configured token starts the session signed in.
func (o *RootOptions) client() *client.Client {
	cfg := o.config()
	server := cfg.Client.Server
	if o.Server != "" {
		server = o.Server
	}
	session := client.NewSession()
	if cfg.Client.Token != "" {
		session.Init(cfg.Client.Token, cfg.Client.Operator)
	}
	return client.New(server,
		client.WithTimeout(cfg.Client.Timeout.Duration),
		client.WithSession(session),
		client.WithLogger(o.logger()))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
