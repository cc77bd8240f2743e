// Command crease runs the live cricket scoring server and its operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/crease/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crease:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
