package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/hellobench/internal/config"
	"github.com/wesleyorama2/hellobench/internal/logger"
	"github.com/wesleyorama2/hellobench/internal/performance"
	"github.com/wesleyorama2/hellobench/internal/performance/output"
	"github.com/wesleyorama2/hellobench/internal/performance/report"
	"github.com/wesleyorama2/hellobench/internal/performance/runner"
)

// ErrPerfFailed is returned when a run aborted or violated a threshold.
var ErrPerfFailed = errors.New("performance test failed")

func newPerfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perf",
		Short: "Load-test the greeting endpoint and check the thresholds",
		Long: `Run the performance test: every worker issues its iterations of GET /
sequentially, all workers run concurrently.

In-process target (default):
  hellobench perf

Already running service:
  hellobench perf --url http://localhost:8080/

Container image (requires docker):
  hellobench perf --image hello-world:latest --workers 20 --iterations 50

Exit status is 1 if the run aborted or any threshold was violated.`,
		Args: cobra.NoArgs,
		RunE: runPerf,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file")
	cmd.Flags().String("url", "", "Target URL (skips provisioning)")
	cmd.Flags().String("image", "", "Container image to provision with docker")
	cmd.Flags().Int("workers", 0, "Number of concurrent workers")
	cmd.Flags().Int("iterations", 0, "Requests per worker")
	cmd.Flags().DurationP("timeout", "t", 0, "Overall run timeout")
	cmd.Flags().StringP("output", "o", "", "Report directory (default \""+config.DefaultReportDir+"\")")
	cmd.Flags().BoolP("quiet", "q", false, "Print only PASSED or FAILED")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().Bool("no-report", false, "Do not write HTML and JSON reports")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	return cmd
}

func runPerf(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyPerfFlags(cmd, cfg); err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noReport, _ := cmd.Flags().GetBool("no-report")

	// Keep stdout for the console; logs go to stderr.
	log, closeLog := logger.NewWithWriter(&cfg.Logging, cmd.ErrOrStderr())
	defer closeLog()

	console := output.NewConsole(output.ConsoleConfig{
		Writer:  cmd.OutOrStdout(),
		Quiet:   quiet,
		NoColor: noColor,
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := performance.Run(ctx, performance.Options{
		Config:   cfg,
		Logger:   log,
		Progress: console.Update,
		OnStart: func(targetURL string, rc runner.Config) {
			console.PrintHeader(cfg.Name, targetURL, rc)
		},
	})
	if result == nil {
		return runErr
	}

	console.PrintSummary(result)

	if !noReport {
		paths, err := report.WriteSelected(result, cfg.Report.Dir, cfg.Report.HTMLEnabled(), cfg.Report.JSONEnabled())
		if err != nil {
			log.Error("failed to write reports", zap.Error(err))
		}
		console.PrintReports(paths)
	}

	if !result.Passed() {
		return fmt.Errorf("%w: %w", ErrPerfFailed, errors.Join(result.Err, result.Assertions.Err()))
	}
	return nil
}

// applyPerfFlags overrides file values with explicitly set flags.
func applyPerfFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("url") {
		u, _ := flags.GetString("url")
		cfg.LoadTest.TargetURL = u
		cfg.Provision.Mode = config.ProvisionStatic
		cfg.Provision.URL = u
	}
	if flags.Changed("image") {
		img, _ := flags.GetString("image")
		cfg.Provision.Mode = config.ProvisionDocker
		cfg.Provision.Image = img
	}
	if flags.Changed("workers") {
		cfg.LoadTest.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("iterations") {
		cfg.LoadTest.Iterations, _ = flags.GetInt("iterations")
	}
	if flags.Changed("timeout") {
		d, _ := flags.GetDuration("timeout")
		cfg.LoadTest.Timeout = config.Duration(d)
	}
	if flags.Changed("output") {
		cfg.Report.Dir, _ = flags.GetString("output")
	}

	if flags.Changed("url") && flags.Changed("image") {
		return fmt.Errorf("--url and --image are mutually exclusive")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
