// Package performance runs the greeting performance test end to end:
// provision a target, drive the load plan against it, evaluate the fixed
// thresholds and release the target.
package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wesleyorama2/hellobench/internal/config"
	"github.com/wesleyorama2/hellobench/internal/performance/assertion"
	"github.com/wesleyorama2/hellobench/internal/performance/metrics"
	"github.com/wesleyorama2/hellobench/internal/performance/runner"
	"github.com/wesleyorama2/hellobench/internal/provision"
)

// Options configures a performance run.
type Options struct {
	// Config supplies the load plan and provisioning (default: config.Default())
	Config *config.Config

	// Provisioner overrides the one selected by Config.Provision
	Provisioner provision.Provisioner

	// Logger receives run, runner and provisioner logs (default: no-op)
	Logger *zap.Logger

	// Progress, when set, is called periodically while the load test runs
	Progress func(runner.Progress)

	// ProgressInterval is the pause between Progress calls (default: 500ms)
	ProgressInterval time.Duration

	// OnStart, when set, is called once the target is ready
	OnStart func(targetURL string, cfg runner.Config)
}

// Result is the outcome of one performance run.
type Result struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Target     string              `json:"target"`
	StartTime  time.Time           `json:"startTime"`
	EndTime    time.Time           `json:"endTime"`
	Duration   time.Duration       `json:"duration"`
	LoadTest   runner.Config       `json:"loadTest"`
	Statistics *metrics.Statistics `json:"statistics"`
	Assertions *assertion.Report   `json:"assertions"`

	// Error is the abort message, if the run was cut short
	Error string `json:"error,omitempty"`

	// Err is the abort error; match it with errors.Is against runner sentinels
	Err error `json:"-"`
}

// Passed is true only when the run completed and every threshold held.
func (r *Result) Passed() bool {
	if r == nil || r.Err != nil || r.Assertions == nil {
		return false
	}
	return r.Assertions.Passed()
}

// Run provisions a target, runs the load test against it and evaluates the
// thresholds. The target is always released before Run returns.
//
// A provisioning or configuration failure returns a nil Result. An aborted
// load test returns both the Result (with partial statistics and evaluated
// thresholds) and the abort error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	p := opts.Provisioner
	if p == nil {
		var err error
		p, err = provision.New(cfg.Provision, log.Named("provision"))
		if err != nil {
			return nil, fmt.Errorf("failed to create provisioner: %w", err)
		}
	}

	target, err := p.Provision(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to provision target: %w", err)
	}
	defer func() {
		if err := target.Release(context.Background()); err != nil {
			log.Warn("failed to release target", zap.String("url", target.BaseURL), zap.Error(err))
		}
	}()

	runnerOpts := []runner.Option{runner.WithLogger(log.Named("runner"))}
	if opts.Progress != nil {
		interval := opts.ProgressInterval
		if interval <= 0 {
			interval = 500 * time.Millisecond
		}
		runnerOpts = append(runnerOpts, runner.WithProgress(interval, opts.Progress))
	}

	r, err := runner.New(cfg.RunnerConfig(target.BaseURL), runnerOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid load test: %w", err)
	}

	result := &Result{
		ID:       uuid.NewString(),
		Name:     cfg.Name,
		Target:   target.BaseURL,
		LoadTest: r.Config(),
	}

	log.Info("performance run starting",
		zap.String("id", result.ID),
		zap.String("target", target.BaseURL),
		zap.Int("workers", result.LoadTest.Workers),
		zap.Int("iterations", result.LoadTest.Iterations))
	if opts.OnStart != nil {
		opts.OnStart(target.BaseURL, result.LoadTest)
	}

	result.StartTime = time.Now()
	stats, runErr := r.Run(ctx)
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	result.Statistics = stats
	result.Assertions = assertion.Evaluate(stats)
	if runErr != nil {
		result.Err = runErr
		result.Error = runErr.Error()
	}

	fields := []zap.Field{
		zap.String("id", result.ID),
		zap.Bool("passed", result.Passed()),
		zap.Duration("duration", result.Duration),
	}
	if stats != nil {
		fields = append(fields,
			zap.Int64("count", stats.Count),
			zap.Int64("errors", stats.Errors),
			zap.Float64("throughput", stats.Throughput),
			zap.Duration("p99", stats.Latency.P99))
	}
	log.Info("performance run finished", fields...)

	return result, runErr
}
