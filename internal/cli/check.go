package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/hellobench/internal/performance"
	"github.com/wesleyorama2/hellobench/internal/performance/assertion"
	"github.com/wesleyorama2/hellobench/internal/performance/output"
	"github.com/wesleyorama2/hellobench/internal/performance/report"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <report.json>",
		Short: "Re-evaluate the thresholds against a saved JSON report",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}

	cmd.Flags().BoolP("quiet", "q", false, "Print only PASSED or FAILED")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")

	summary, err := report.ReadSummary(args[0])
	if err != nil {
		return err
	}

	result := &performance.Result{
		ID:         summary.ID,
		Name:       summary.Name,
		Target:     summary.Target,
		StartTime:  summary.StartTime,
		Statistics: summary.Statistics,
		Assertions: assertion.Evaluate(summary.Statistics),
		Error:      summary.Error,
	}
	if summary.Error != "" {
		result.Err = errors.New(summary.Error)
	}

	console := output.NewConsole(output.ConsoleConfig{
		Writer:  cmd.OutOrStdout(),
		Quiet:   quiet,
		NoColor: noColor,
	})
	console.PrintSummary(result)

	if err := result.Assertions.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPerfFailed, err)
	}
	if summary.Error != "" {
		return fmt.Errorf("%w: run aborted: %s", ErrPerfFailed, summary.Error)
	}
	return nil
}
