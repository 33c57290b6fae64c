package runner_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wesleyorama2/hellobench/internal/performance/runner"
)

// createRunnerTestServer creates a test HTTP server that counts requests.
func createRunnerTestServer(handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	var count atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		handler(w, r)
	}))
	return srv, &count
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Hello World!"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  runner.Config
		wantErr string
	}{
		{"valid", runner.Config{Workers: 1, Iterations: 1, TargetURL: "http://localhost:8080/"}, ""},
		{"zero workers", runner.Config{Workers: 0, Iterations: 1, TargetURL: "http://localhost/"}, "workers"},
		{"zero iterations", runner.Config{Workers: 1, Iterations: 0, TargetURL: "http://localhost/"}, "iterations"},
		{"missing url", runner.Config{Workers: 1, Iterations: 1}, "targetUrl"},
		{"bad scheme", runner.Config{Workers: 1, Iterations: 1, TargetURL: "ftp://localhost/"}, "targetUrl"},
		{"no host", runner.Config{Workers: 1, Iterations: 1, TargetURL: "http:///path"}, "targetUrl"},
		{"negative timeout", runner.Config{Workers: 1, Iterations: 1, TargetURL: "http://x/", Timeout: -time.Second}, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *runner.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Field)
		})
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	r, err := runner.New(runner.Config{Workers: 2, Iterations: 3, TargetURL: "http://localhost/"})
	require.NoError(t, err)

	cfg := r.Config()
	assert.Equal(t, runner.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, runner.DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, int64(6), cfg.TotalRequests())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := runner.New(runner.Config{Workers: 0, Iterations: 1, TargetURL: "http://localhost/"})
	require.Error(t, err)
}

func TestRunner_TenWorkersHundredIterations(t *testing.T) {
	srv, count := createRunnerTestServer(okHandler)
	defer srv.Close()

	r, err := runner.New(runner.Config{
		Workers:    10,
		Iterations: 100,
		TargetURL:  srv.URL + "/",
	}, runner.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1000), stats.Count)
	assert.Equal(t, int64(1000), stats.Successes)
	assert.Equal(t, int64(0), stats.Errors)
	assert.Equal(t, int64(1000), count.Load())
	assert.Equal(t, int64(1000*len("Hello World!")), stats.Bytes)
	assert.Greater(t, stats.Throughput, 0.0)
	assert.Greater(t, stats.Elapsed, time.Duration(0))
	assert.LessOrEqual(t, stats.Latency.P95, stats.Latency.P99)
}

func TestRunner_WorkersRunConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv, _ := createRunnerTestServer(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	r, err := runner.New(runner.Config{Workers: 5, Iterations: 4, TargetURL: srv.URL})
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)

	assert.Greater(t, peak.Load(), int32(1), "workers never overlapped")
	assert.LessOrEqual(t, peak.Load(), int32(5), "more requests in flight than workers")
}

func TestRunner_NonSuccessStatusIsRecordedNotFatal(t *testing.T) {
	var n atomic.Int64
	srv, _ := createRunnerTestServer(func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1)%4 == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	r, err := runner.New(runner.Config{Workers: 2, Iterations: 20, TargetURL: srv.URL})
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(40), stats.Count)
	assert.Equal(t, int64(10), stats.Errors)
	assert.Equal(t, int64(30), stats.Successes)
	assert.Equal(t, stats.Count, stats.Successes+stats.Errors)
	assert.Equal(t, int64(10), stats.ErrorKinds["http 500"])
}

func TestRunner_UnreachableTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(okHandler))
	url := srv.URL
	srv.Close()

	r, err := runner.New(runner.Config{Workers: 3, Iterations: 5, TargetURL: url, RequestTimeout: time.Second})
	require.NoError(t, err)

	stats, err := r.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, runner.ErrRunAborted), "error should match ErrRunAborted: %v", err)
	assert.True(t, errors.Is(err, runner.ErrTargetUnreachable), "error should match ErrTargetUnreachable: %v", err)

	require.NotNil(t, stats)
	assert.Equal(t, int64(15), stats.Count)
	assert.Equal(t, stats.Count, stats.Errors)
	assert.Equal(t, 0.0, stats.Throughput)
}

func TestRunner_TimeoutAbortsWithPartialStatistics(t *testing.T) {
	srv, _ := createRunnerTestServer(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	r, err := runner.New(runner.Config{
		Workers:    2,
		Iterations: 1000,
		TargetURL:  srv.URL,
		Timeout:    300 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	stats, err := r.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, runner.ErrRunAborted))
	assert.True(t, errors.Is(err, runner.ErrTimeout))
	assert.False(t, errors.Is(err, runner.ErrTargetUnreachable))

	var abort *runner.AbortError
	require.ErrorAs(t, err, &abort)

	require.NotNil(t, stats)
	assert.Less(t, stats.Count, int64(2000))
	assert.Equal(t, int64(0), stats.Errors, "requests cut by the timeout must not be recorded")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunner_ParentCancellation(t *testing.T) {
	srv, _ := createRunnerTestServer(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	r, err := runner.New(runner.Config{Workers: 2, Iterations: 1000, TargetURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err = r.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, runner.ErrRunAborted))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_Progress(t *testing.T) {
	srv, _ := createRunnerTestServer(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	var mu sync.Mutex
	var updates []runner.Progress

	r, err := runner.New(
		runner.Config{Workers: 2, Iterations: 25, TargetURL: srv.URL},
		runner.WithProgress(10*time.Millisecond, func(p runner.Progress) {
			mu.Lock()
			updates = append(updates, p)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, updates)

	last := updates[len(updates)-1]
	assert.Equal(t, int64(50), last.Done)
	assert.Equal(t, int64(50), last.Total)
	assert.Equal(t, 1.0, last.Fraction())
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Done, updates[i-1].Done)
	}
}

func TestRunner_CustomHTTPClient(t *testing.T) {
	var ua atomic.Value
	srv, _ := createRunnerTestServer(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	client := &http.Client{Transport: uaTransport{base: http.DefaultTransport, ua: "hellobench-test"}}
	r, err := runner.New(runner.Config{Workers: 1, Iterations: 1, TargetURL: srv.URL}, runner.WithHTTPClient(client))
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hellobench-test", ua.Load())
}

type uaTransport struct {
	base http.RoundTripper
	ua   string
}

func (t uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.ua)
	return t.base.RoundTrip(req)
}
