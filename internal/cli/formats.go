package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/format"
)

// FormatsOptions holds flags for the formats command.
type FormatsOptions struct {
	*RootOptions
	File   string
	Remote bool
}

// NewFormatsCommand creates the formats command.
func NewFormatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List match formats",
		Long: `List the match formats: the built-in catalogue unified with
scoring.formats_file or --file. An invalid CUE file is reported with its
position and exits 1, which makes this command a validator for club
format files.

With --remote the names the server accepts are listed instead.

Examples:
  crease formats
  crease formats --file ./club.cue
  crease formats --remote --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "extra CUE formats file (default scoring.formats_file)")
	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "list the server's formats")
	cmd.MarkFlagsMutuallyExclusive("file", "remote")

	return cmd
}

func runFormats(opts *FormatsOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	if opts.Remote {
		names, err := opts.client().Formats(commandContext(cmd))
		if err != nil {
			return out.Fail("list formats", err)
		}
		return out.Success(names, func(w io.Writer) {
			for _, n := range names {
				fmt.Fprintln(w, n)
			}
		})
	}

	file := opts.File
	if file == "" {
		file = opts.config().Scoring.FormatsFile
	}
	catalog, err := format.Load(file)
	if err != nil {
		if writeErr := out.Error(CLIError{Code: "INVALID_FORMAT", Message: err.Error()}); writeErr != nil {
			return writeErr
		}
		return WrapExitError(ExitFailure, "invalid formats", err)
	}

	formats := make([]format.Format, 0, len(catalog.Names()))
	for _, name := range catalog.Names() {
		f, _ := catalog.Get(name)
		formats = append(formats, f)
	}
	return out.Success(formats, func(w io.Writer) { renderFormats(w, formats) })
}

func renderFormats(w io.Writer, formats []format.Format) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tOVERS\tPLAYERS\tMAX OVERS/BOWLER")
	for _, f := range formats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", f.Name, f.OversLimit, f.TeamSize, f.MaxOversPerBowler)
	}
	tw.Flush()
}
