// Command lightlayer maps addressable lights into virtual layers and drives
// them from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lightlayer/internal/cli"
)

// Exit codes. An interrupted run exits like a shell job killed by SIGINT.
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

func execute(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = setup(c, &verbose)

	return root.ExecuteContext(ctx)
}

// setup runs before every subcommand, after flags are parsed. The log level
// has to be final before the hooks capture the logger, and the hooks have to
// be in place before a command builds its engine.
func setup(c *cli.CLI, verbose *bool) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		c.RegisterHooks()
		return nil
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return exitError
	}
}
