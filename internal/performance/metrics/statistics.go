package metrics

import (
	"errors"
	"fmt"
	"math"
	"net"
	"syscall"
	"time"
)

// Statistics is the finalized, read-only aggregate of a load-test run.
type Statistics struct {
	Count           int64            `json:"count"`
	Successes       int64            `json:"successes"`
	Errors          int64            `json:"errors"`
	TransportErrors int64            `json:"transportErrors"`
	Bytes           int64            `json:"bytes"`
	Elapsed         time.Duration    `json:"elapsed"`
	Throughput      float64          `json:"throughput"`
	Latency         LatencyStats     `json:"latency"`
	ErrorKinds      map[string]int64 `json:"errorKinds,omitempty"`
	Series          []Bucket         `json:"series,omitempty"`

	sorted []time.Duration
}

// LatencyStats contains latency statistics.
type LatencyStats struct {
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stdDev"`
	P50    time.Duration `json:"p50"`
	P90    time.Duration `json:"p90"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
	Count  int64         `json:"count"`
}

// Percentile returns the nearest-rank percentile p (0-100] over every
// recorded latency. It returns 0 for statistics without raw samples.
func (s *Statistics) Percentile(p float64) time.Duration {
	return NearestRank(s.sorted, p)
}

// ErrorRate returns Errors / Count, or 0 when nothing was recorded.
func (s *Statistics) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Count)
}

// NearestRank returns the value at rank ceil(p/100 * N) of an ascending
// slice, with the rank clamped to [1, N]. An empty slice yields 0.
func NearestRank(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	rank := int(math.Ceil(p * float64(n) / 100))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}

// ClassifyError names the cause of a failed sample for the error tally.
func ClassifyError(s Sample) string {
	if s.Err == nil {
		return fmt.Sprintf("http %d", s.StatusCode)
	}

	var netErr net.Error
	switch {
	case errors.Is(s.Err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(s.Err, syscall.ECONNRESET):
		return "connection reset"
	case errors.As(s.Err, &netErr) && netErr.Timeout():
		return "timeout"
	default:
		return "transport error"
	}
}
