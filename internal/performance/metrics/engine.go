// Package metrics aggregates load-test samples into finalized statistics.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Sample is one measured request/response cycle.
type Sample struct {
	Worker     int
	Latency    time.Duration
	StatusCode int
	Bytes      int64
	// Err is a transport-level failure; StatusCode is 0 when it is set.
	Err error
}

// Failed reports whether the sample counts as an error.
func (s Sample) Failed() bool {
	return s.Err != nil || s.StatusCode < 200 || s.StatusCode >= 300
}

// Recorder collects samples from concurrent workers.
//
// # Thread Safety
//
// Recorder is safe for concurrent use. Counters, the raw latency slice and
// the HDR histogram all move under one mutex so that Count always equals
// Successes + Errors for any observer.
type Recorder struct {
	mu sync.Mutex

	// HDR histogram in microseconds, used for mean and standard deviation.
	// Range: 1 microsecond to 1 hour, 3 significant figures.
	hist *hdrhistogram.Histogram

	// Raw latencies, kept for exact percentiles.
	latencies []time.Duration

	count     int64
	successes int64
	errors    int64
	transport int64
	bytes     int64

	errorKinds map[string]int64
	buckets    *BucketStore

	startTime time.Time
	finalized bool
	config    RecorderConfig
}

// RecorderConfig contains configuration for a Recorder.
type RecorderConfig struct {
	// BucketInterval is the width of time-series buckets (default: 1s)
	BucketInterval time.Duration

	// ExpectedSamples pre-sizes the latency slice (optional)
	ExpectedSamples int

	// HistogramMin is the minimum recordable value in microseconds (default: 1)
	HistogramMin int64

	// HistogramMax is the maximum recordable value in microseconds (default: 1 hour)
	HistogramMax int64

	// HistogramSigFigs is the number of significant figures (default: 3)
	HistogramSigFigs int
}

// DefaultRecorderConfig returns the default configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		BucketInterval:   time.Second,
		HistogramMin:     1,
		HistogramMax:     3600000000, // 1 hour in microseconds
		HistogramSigFigs: 3,
	}
}

// NewRecorder creates a recorder with default configuration.
func NewRecorder() *Recorder {
	return NewRecorderWithConfig(DefaultRecorderConfig())
}

// NewRecorderWithConfig creates a recorder with custom configuration.
func NewRecorderWithConfig(config RecorderConfig) *Recorder {
	defaults := DefaultRecorderConfig()
	if config.BucketInterval <= 0 {
		config.BucketInterval = defaults.BucketInterval
	}
	if config.HistogramMin <= 0 {
		config.HistogramMin = defaults.HistogramMin
	}
	if config.HistogramMax <= config.HistogramMin {
		config.HistogramMax = defaults.HistogramMax
	}
	if config.HistogramSigFigs <= 0 {
		config.HistogramSigFigs = defaults.HistogramSigFigs
	}

	now := time.Now()
	return &Recorder{
		hist:       hdrhistogram.New(config.HistogramMin, config.HistogramMax, config.HistogramSigFigs),
		latencies:  make([]time.Duration, 0, config.ExpectedSamples),
		errorKinds: make(map[string]int64),
		buckets:    NewBucketStore(now, config.BucketInterval),
		startTime:  now,
		config:     config,
	}
}

// Record adds a sample. It returns false if the recorder was already finalized,
// in which case the sample is dropped.
func (r *Recorder) Record(s Sample) bool {
	micros := s.Latency.Microseconds()
	if micros < r.config.HistogramMin {
		micros = r.config.HistogramMin
	}
	if micros > r.config.HistogramMax {
		micros = r.config.HistogramMax
	}
	failed := s.Failed()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return false
	}

	_ = r.hist.RecordValue(micros)
	r.latencies = append(r.latencies, s.Latency)
	r.count++
	r.bytes += s.Bytes
	if failed {
		r.errors++
		if s.Err != nil {
			r.transport++
		}
		r.errorKinds[ClassifyError(s)]++
	} else {
		r.successes++
	}
	r.buckets.Record(time.Now(), s.Latency, failed)

	return true
}

// Progress is a point-in-time view of the counters, usable while the run is live.
type Progress struct {
	Count     int64         `json:"count"`
	Successes int64         `json:"successes"`
	Errors    int64         `json:"errors"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Progress returns the current counters.
func (r *Recorder) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Progress{
		Count:     r.count,
		Successes: r.successes,
		Errors:    r.errors,
		Elapsed:   time.Since(r.startTime),
	}
}

// Finalize freezes the recorder and returns the read-only statistics.
// elapsed is the wall-clock duration of the run used for throughput.
// Calling Finalize again returns a fresh copy of the same statistics.
func (r *Recorder) Finalize(elapsed time.Duration) *Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finalized = true

	sorted := make([]time.Duration, len(r.latencies))
	copy(sorted, r.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	kinds := make(map[string]int64, len(r.errorKinds))
	for k, v := range r.errorKinds {
		kinds[k] = v
	}

	stats := &Statistics{
		Count:           r.count,
		Successes:       r.successes,
		Errors:          r.errors,
		TransportErrors: r.transport,
		Bytes:           r.bytes,
		Elapsed:         elapsed,
		Throughput:      throughput(r.successes, elapsed),
		ErrorKinds:      kinds,
		Series:          r.buckets.Buckets(),
		sorted:          sorted,
	}

	stats.Latency = LatencyStats{Count: int64(len(sorted))}
	if len(sorted) > 0 {
		stats.Latency.Min = sorted[0]
		stats.Latency.Max = sorted[len(sorted)-1]
		stats.Latency.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
		stats.Latency.StdDev = time.Duration(r.hist.StdDev() * float64(time.Microsecond))
		stats.Latency.P50 = NearestRank(sorted, 50)
		stats.Latency.P90 = NearestRank(sorted, 90)
		stats.Latency.P95 = NearestRank(sorted, 95)
		stats.Latency.P99 = NearestRank(sorted, 99)
	}

	return stats
}

func throughput(successes int64, elapsed time.Duration) float64 {
	if elapsed <= 0 || successes == 0 {
		return 0
	}
	return float64(successes) / elapsed.Seconds()
}
