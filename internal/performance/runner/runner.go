// Package runner drives a fixed number of sequential GET requests per worker
// against a target and aggregates the outcome.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wesleyorama2/hellobench/internal/performance/metrics"
)

const (
	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 2 * time.Minute

	// DefaultRequestTimeout bounds a single request.
	DefaultRequestTimeout = 10 * time.Second
)

// Config describes one load-test run. It is not modified once Run starts.
type Config struct {
	// Workers is the number of concurrent workers
	Workers int `json:"workers" yaml:"workers"`

	// Iterations is the number of sequential requests per worker
	Iterations int `json:"iterations" yaml:"iterations"`

	// TargetURL receives every GET request
	TargetURL string `json:"targetUrl" yaml:"targetUrl"`

	// Timeout bounds the whole run (default: 2m)
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// RequestTimeout bounds each request (default: 10s)
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
}

// TotalRequests returns Workers * Iterations.
func (c Config) TotalRequests() int64 {
	return int64(c.Workers) * int64(c.Iterations)
}

// Validate validates the runner configuration.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return &ValidationError{Field: "workers", Message: "workers must be >= 1"}
	}
	if c.Iterations < 1 {
		return &ValidationError{Field: "iterations", Message: "iterations must be >= 1"}
	}
	if c.TargetURL == "" {
		return &ValidationError{Field: "targetUrl", Message: "target URL is required"}
	}
	u, err := url.Parse(c.TargetURL)
	if err != nil {
		return &ValidationError{Field: "targetUrl", Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "targetUrl", Message: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &ValidationError{Field: "targetUrl", Message: "host is required"}
	}
	if c.Timeout < 0 {
		return &ValidationError{Field: "timeout", Message: "timeout must be >= 0"}
	}
	if c.RequestTimeout < 0 {
		return &ValidationError{Field: "requestTimeout", Message: "requestTimeout must be >= 0"}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return c
}

// Progress is reported periodically while a run is in flight.
type Progress struct {
	Done    int64         `json:"done"`
	Total   int64         `json:"total"`
	Errors  int64         `json:"errors"`
	Elapsed time.Duration `json:"elapsed"`
}

// Fraction returns Done / Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// Option configures a Runner.
type Option func(*Runner)

// WithHTTPClient replaces the pooled client built from the config.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Runner) {
		r.client = client
	}
}

// WithLogger sets the runner's logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithProgress calls fn every interval during a run and once at the end.
func WithProgress(interval time.Duration, fn func(Progress)) Option {
	return func(r *Runner) {
		r.progressInterval = interval
		r.progressFn = fn
	}
}

// Runner executes the per-worker iteration plan described by a Config.
type Runner struct {
	config Config
	client *http.Client
	log    *zap.Logger

	progressInterval time.Duration
	progressFn       func(Progress)

	running atomic.Bool
}

// New creates a runner after validating cfg and applying defaults.
func New(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid runner config: %w", err)
	}
	cfg = cfg.withDefaults()

	r := &Runner{config: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = newHTTPClient(cfg)
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r, nil
}

// Config returns the effective configuration, defaults included.
func (r *Runner) Config() Config {
	return r.config
}

// Run spawns the workers and blocks until every iteration finished or the
// run timeout elapsed. The finalized statistics are always returned; the
// error is non-nil only for harness-level failures and then is an *AbortError.
func (r *Runner) Run(ctx context.Context) (*metrics.Statistics, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("runner is already running")
	}
	defer r.running.Store(false)

	total := r.config.TotalRequests()
	recorder := metrics.NewRecorderWithConfig(metrics.RecorderConfig{
		ExpectedSamples: int(total),
	})

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	r.log.Info("load test started",
		zap.String("target", r.config.TargetURL),
		zap.Int("workers", r.config.Workers),
		zap.Int("iterations", r.config.Iterations),
		zap.Duration("timeout", r.config.Timeout))

	start := time.Now()
	stopProgress := r.startProgress(recorder, total, start)

	var wg sync.WaitGroup
	for w := 0; w < r.config.Workers; w++ {
		wg.Add(1)
		go r.runWorker(runCtx, &wg, w, recorder)
	}
	wg.Wait()

	elapsed := time.Since(start)
	stopProgress()
	stats := recorder.Finalize(elapsed)

	r.log.Info("load test finished",
		zap.Int64("samples", stats.Count),
		zap.Int64("errors", stats.Errors),
		zap.Duration("elapsed", elapsed),
		zap.Float64("throughput", stats.Throughput))

	if stats.Count < total && runCtx.Err() != nil {
		cause := runCtx.Err()
		if errors.Is(cause, context.DeadlineExceeded) {
			cause = ErrTimeout
		}
		r.log.Warn("load test aborted", zap.Error(cause), zap.Int64("completed", stats.Count), zap.Int64("planned", total))
		return stats, &AbortError{Cause: cause}
	}

	if stats.Count > 0 && stats.TransportErrors == stats.Count {
		r.log.Warn("no request reached the target", zap.String("target", r.config.TargetURL))
		return stats, &AbortError{Cause: fmt.Errorf("%w: %s", ErrTargetUnreachable, r.config.TargetURL)}
	}

	return stats, nil
}

// runWorker issues the worker's requests one after another.
func (r *Runner) runWorker(ctx context.Context, wg *sync.WaitGroup, id int, recorder *metrics.Recorder) {
	defer wg.Done()

	for i := 0; i < r.config.Iterations; i++ {
		if ctx.Err() != nil {
			return
		}

		sample := r.execute(ctx, id)

		// A request cut short by the run timeout is not a sample.
		if sample.Err != nil && ctx.Err() != nil {
			return
		}
		recorder.Record(sample)
	}
}

// execute performs one GET and measures it until the body is drained.
func (r *Runner) execute(ctx context.Context, worker int) metrics.Sample {
	sample := metrics.Sample{Worker: worker}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.TargetURL, nil)
	if err != nil {
		sample.Err = fmt.Errorf("failed to build request: %w", err)
		return sample
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		sample.Latency = time.Since(start)
		sample.Err = err
		r.log.Debug("request failed", zap.Int("worker", worker), zap.Error(err))
		return sample
	}

	n, err := io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	sample.Latency = time.Since(start)
	sample.StatusCode = resp.StatusCode
	sample.Bytes = n
	if err != nil {
		sample.Err = fmt.Errorf("failed to read response body: %w", err)
		sample.StatusCode = 0
	}

	return sample
}

// startProgress launches the progress reporter and returns its stop function.
func (r *Runner) startProgress(recorder *metrics.Recorder, total int64, start time.Time) func() {
	if r.progressFn == nil {
		return func() {}
	}

	interval := r.progressInterval
	if interval <= 0 {
		interval = time.Second
	}

	report := func() {
		p := recorder.Progress()
		r.progressFn(Progress{
			Done:    p.Count,
			Total:   total,
			Errors:  p.Errors,
			Elapsed: time.Since(start),
		})
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				report()
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
		report()
	}
}

// newHTTPClient builds the client shared by all workers.
func newHTTPClient(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        1000,
		MaxIdleConnsPerHost: cfg.Workers,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: transport,
	}
}
