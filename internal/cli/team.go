package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/crease/internal/api"
)

// NewTeamCommand creates the team command group.
func NewTeamCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage teams and rosters",
	}
	cmd.AddCommand(newTeamCreateCommand(rootOpts))
	cmd.AddCommand(newTeamListCommand(rootOpts))
	cmd.AddCommand(newTeamDeleteCommand(rootOpts))
	return cmd
}

func newTeamCreateCommand(opts *RootOptions) *cobra.Command {
	var players []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a team with its roster",
		Long: `Create a team. Players are listed in batting order.

Examples:
  crease team create Rovers -p Ana -p Bea -p Cal
  crease team create "United XI" --player "Dee Smith" --player "Eli Jones"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			team, err := opts.client().CreateTeam(commandContext(cmd), args[0], players)
			if err != nil {
				return out.Fail("create team", err)
			}
			return out.Success(team, func(w io.Writer) { renderTeam(w, team) })
		},
	}
	cmd.Flags().StringArrayVarP(&players, "player", "p", nil, "player name (repeatable)")
	return cmd
}

func newTeamListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List teams",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			teams, err := opts.client().ListTeams(commandContext(cmd))
			if err != nil {
				return out.Fail("list teams", err)
			}
			return out.Success(teams, func(w io.Writer) {
				if len(teams) == 0 {
					fmt.Fprintln(w, "No teams.")
				}
				for _, t := range teams {
					renderTeam(w, t)
				}
			})
		},
	}
}

func newTeamDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <team-id>",
		Short: "Delete a team",
		Long: `Delete a team. Deleting a team that does not exist succeeds; a team
that still plays in a match is refused with RESOURCE_IN_USE.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)
			if err := opts.client().DeleteTeam(commandContext(cmd), args[0]); err != nil {
				return out.Fail("delete team", err)
			}
			return out.Success(api.Deleted{ID: args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted team %s\n", args[0])
			})
		},
	}
}
