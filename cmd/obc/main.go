package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var version = "0.1.0"

// errReported is returned by commands that already printed their
// diagnostics; main only sets the exit status.
var errReported = errors.New("errors reported")

var log = commonlog.GetLogger("obc.cli")

type globalOptions struct {
	verbose int
	logFile string
	noColor bool
}

func (o *globalOptions) colored() bool {
	return !o.noColor && !color.NoColor
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:           "obc",
		Short:         "An Oberon-2 front end",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if opts.logFile != "" {
				path = &opts.logFile
			}
			commonlog.Configure(opts.verbose, path)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to a file instead of stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "print diagnostics without color")

	rootCmd.AddCommand(newParseCmd(&opts))
	rootCmd.AddCommand(newCheckCmd(&opts))
	rootCmd.AddCommand(newModulesCmd())
	rootCmd.AddCommand(newGrammarCmd())
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "obc:", err)
		}
		os.Exit(1)
	}
}
