package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "hellobench",
		Short:   "A Hello World HTTP service with a built-in performance test",
		Version: version,
		Long: `hellobench serves "Hello World!" over HTTP and load-tests it.

The perf command provisions a target (in-process, a static URL or a docker
image), runs a fixed worker/iteration plan against GET /, and fails when any
threshold is violated:

  p99 < 1000ms, p95 < 800ms, errors == 0, throughput > 50/s`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			_ = cmd.Help()
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newPerfCmd())
	root.AddCommand(newCheckCmd())
	return root
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// Execute runs the root command and prints any error once to its error stream.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(RootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
