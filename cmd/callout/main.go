package main

import (
	"fmt"
	"io"
	"os"

	"github.com/brendan.keane/callout/internal/cli"
	"github.com/brendan.keane/callout/internal/errors"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := cli.NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if debug, _ := root.PersistentFlags().GetBool("debug"); debug {
			log.Error().Fields(errors.DebugInfo(err)).Msg("command failed")
		}
		fmt.Fprintf(stderr, "Error: %s\n", errors.UserMessage(err))
		return 1
	}
	return 0
}
