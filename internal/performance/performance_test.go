package performance_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wesleyorama2/hellobench/internal/config"
	"github.com/wesleyorama2/hellobench/internal/performance"
	"github.com/wesleyorama2/hellobench/internal/performance/report"
	"github.com/wesleyorama2/hellobench/internal/performance/runner"
	"github.com/wesleyorama2/hellobench/internal/provision"
)

// Environment variables that select the target of the performance suite.
const (
	envTargetURL = "HELLOBENCH_TARGET_URL"
	envImage     = "HELLOBENCH_IMAGE"
	envReportDir = "HELLOBENCH_REPORT_DIR"
)

// TestHelloWorldPerformance runs the full load plan (10 workers x 100
// iterations) against the greeting endpoint and checks each threshold.
func TestHelloWorldPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	cfg := config.Default()
	switch {
	case os.Getenv(envTargetURL) != "":
		cfg.Provision.Mode = config.ProvisionStatic
		cfg.Provision.URL = os.Getenv(envTargetURL)
	case os.Getenv(envImage) != "":
		cfg.Provision.Mode = config.ProvisionDocker
		cfg.Provision.Image = os.Getenv(envImage)
	}
	require.NoError(t, cfg.Validate())

	result, err := performance.Run(context.Background(), performance.Options{
		Config: cfg,
		Logger: zaptest.NewLogger(t),
	})
	require.NotNil(t, result, "run did not produce a result: %v", err)

	dir := os.Getenv(envReportDir)
	if dir == "" {
		dir = filepath.Join("..", "..", config.DefaultReportDir)
	}
	paths, werr := report.Write(result, dir)
	require.NoError(t, werr)
	t.Logf("reports written: %v", paths)

	require.NoError(t, err, "load test aborted")
	assert.Equal(t, int64(1000), result.Statistics.Count)

	for _, res := range result.Assertions.Results {
		res := res
		t.Run(res.Name, func(t *testing.T) {
			assert.True(t, res.Passed, res.Message)
		})
	}
}

func greetingServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, "Hello World!")
	}))
	t.Cleanup(srv.Close)
	return srv
}

// countingProvisioner wraps Static and counts releases.
type countingProvisioner struct {
	url      string
	released int32
	err      error
}

func (p *countingProvisioner) Provision(ctx context.Context) (*provision.Target, error) {
	if p.err != nil {
		return nil, p.err
	}
	return provision.NewTarget(p.url, func(ctx context.Context) error {
		atomic.AddInt32(&p.released, 1)
		return nil
	}), nil
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Name = "small"
	cfg.LoadTest.Workers = 2
	cfg.LoadTest.Iterations = 5
	return cfg
}

func TestRun_Passes(t *testing.T) {
	srv := greetingServer(t, http.StatusOK)
	p := &countingProvisioner{url: srv.URL}

	var started string
	var progressCalls int32
	result, err := performance.Run(context.Background(), performance.Options{
		Config:           smallConfig(),
		Provisioner:      p,
		Logger:           zaptest.NewLogger(t),
		Progress:         func(runner.Progress) { atomic.AddInt32(&progressCalls, 1) },
		ProgressInterval: time.Millisecond,
		OnStart:          func(url string, cfg runner.Config) { started = url },
	})
	require.NoError(t, err)

	assert.True(t, result.Passed())
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "small", result.Name)
	assert.Equal(t, srv.URL, result.Target)
	assert.Equal(t, srv.URL, started)
	assert.Equal(t, int64(10), result.Statistics.Count)
	assert.Equal(t, 2, result.LoadTest.Workers)
	assert.False(t, result.EndTime.Before(result.StartTime))
	assert.Len(t, result.Assertions.Results, 4)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.released))
}

func TestRun_ServerErrorsFailAssertions(t *testing.T) {
	srv := greetingServer(t, http.StatusInternalServerError)
	p := &countingProvisioner{url: srv.URL}

	result, err := performance.Run(context.Background(), performance.Options{
		Config:      smallConfig(),
		Provisioner: p,
	})
	require.NoError(t, err)

	assert.False(t, result.Passed())
	assert.Equal(t, int64(10), result.Statistics.Errors)

	names := map[string]bool{}
	for _, v := range result.Assertions.Violations() {
		names[v.Name] = true
	}
	assert.True(t, names["errors"])
	assert.True(t, names["throughput"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.released))
}

func TestRun_UnreachableTarget(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := &countingProvisioner{url: url}
	result, err := performance.Run(context.Background(), performance.Options{
		Config:      smallConfig(),
		Provisioner: p,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, runner.ErrRunAborted)
	assert.ErrorIs(t, err, runner.ErrTargetUnreachable)

	require.NotNil(t, result)
	assert.False(t, result.Passed())
	assert.Equal(t, result.Statistics.Count, result.Statistics.Errors)
	assert.Zero(t, result.Statistics.Throughput)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.released))
}

func TestRun_ProvisionFailure(t *testing.T) {
	p := &countingProvisioner{err: errors.New("no docker")}

	result, err := performance.Run(context.Background(), performance.Options{Provisioner: p})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "no docker")
}

func TestRun_LocalProvisioner(t *testing.T) {
	cfg := smallConfig()
	cfg.Provision.Mode = config.ProvisionLocal

	result, err := performance.Run(context.Background(), performance.Options{Config: cfg})
	require.NoError(t, err)
	assert.True(t, result.Passed(), "%v", result.Assertions.Err())
	assert.Equal(t, int64(12)*10, result.Statistics.Bytes)
}

func TestResult_PassedNil(t *testing.T) {
	var r *performance.Result
	assert.False(t, r.Passed())
	assert.False(t, (&performance.Result{}).Passed())
}
