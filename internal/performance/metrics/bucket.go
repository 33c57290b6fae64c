package metrics

import (
	"time"
)

// Bucket aggregates the samples that completed within one interval.
type Bucket struct {
	// Offset is the bucket start relative to the run start
	Offset time.Duration `json:"offset"`

	Requests    int64         `json:"requests"`
	Errors      int64         `json:"errors"`
	MeanLatency time.Duration `json:"meanLatency"`
	MaxLatency  time.Duration `json:"maxLatency"`

	latencySum time.Duration
}

// RPS returns the bucket's request rate given its interval.
func (b Bucket) RPS(interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}
	return float64(b.Requests) / interval.Seconds()
}

// BucketStore keeps fixed-width time buckets indexed from a start time.
// It is not safe for concurrent use; Recorder guards it.
type BucketStore struct {
	start    time.Time
	interval time.Duration
	buckets  []Bucket
}

// NewBucketStore creates a store whose first bucket begins at start.
func NewBucketStore(start time.Time, interval time.Duration) *BucketStore {
	return &BucketStore{start: start, interval: interval}
}

// Record adds one sample completed at ts.
func (s *BucketStore) Record(ts time.Time, latency time.Duration, failed bool) {
	idx := int(ts.Sub(s.start) / s.interval)
	if idx < 0 {
		idx = 0
	}
	for len(s.buckets) <= idx {
		s.buckets = append(s.buckets, Bucket{Offset: time.Duration(len(s.buckets)) * s.interval})
	}

	b := &s.buckets[idx]
	b.Requests++
	if failed {
		b.Errors++
	}
	b.latencySum += latency
	b.MeanLatency = b.latencySum / time.Duration(b.Requests)
	if latency > b.MaxLatency {
		b.MaxLatency = latency
	}
}

// Buckets returns a copy of all buckets in time order.
func (s *BucketStore) Buckets() []Bucket {
	out := make([]Bucket, len(s.buckets))
	copy(out, s.buckets)
	return out
}

// Interval returns the bucket width.
func (s *BucketStore) Interval() time.Duration {
	return s.interval
}
