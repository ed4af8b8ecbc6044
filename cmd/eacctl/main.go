package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/eacctl/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Command output has already been printed; the error only
		// carries the exit status, except for cobra-level failures
		// (bad flags) that never reached a command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
