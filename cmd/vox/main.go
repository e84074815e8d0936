package main

import (
	"fmt"
	"os"

	"github.com/chrisjrex/voxcli/internal/cli"
	"github.com/chrisjrex/voxcli/internal/errs"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errs.HintOf(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(errs.ExitCode(err))
	}
}
