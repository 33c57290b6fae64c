// Package assertion evaluates the pass/fail thresholds of a finished load test.
package assertion

import (
	"errors"
	"fmt"
	"time"

	"github.com/wesleyorama2/hellobench/internal/performance/metrics"
)

// Operator compares a measured value against a limit.
type Operator string

const (
	LessThan    Operator = "<"
	GreaterThan Operator = ">"
	Equal       Operator = "=="
)

func (op Operator) compare(actual, limit float64) bool {
	switch op {
	case LessThan:
		return actual < limit
	case GreaterThan:
		return actual > limit
	case Equal:
		return actual == limit
	default:
		return false
	}
}

// Threshold is one predicate over the finalized statistics.
type Threshold struct {
	Name     string
	Unit     string
	Operator Operator
	Limit    float64
	measure  func(*metrics.Statistics) float64
}

// Expression renders the threshold, e.g. "p99 < 1000ms".
func (t Threshold) Expression() string {
	return fmt.Sprintf("%s %s %g%s", t.Name, t.Operator, t.Limit, t.Unit)
}

// Thresholds returns the four fixed predicates of the performance test.
func Thresholds() []Threshold {
	return []Threshold{
		{
			Name:     "p99",
			Unit:     "ms",
			Operator: LessThan,
			Limit:    1000,
			measure:  func(s *metrics.Statistics) float64 { return millis(s.Latency.P99) },
		},
		{
			Name:     "p95",
			Unit:     "ms",
			Operator: LessThan,
			Limit:    800,
			measure:  func(s *metrics.Statistics) float64 { return millis(s.Latency.P95) },
		},
		{
			Name:     "errors",
			Operator: Equal,
			Limit:    0,
			measure:  func(s *metrics.Statistics) float64 { return float64(s.Errors) },
		},
		{
			Name:     "throughput",
			Unit:     "/s",
			Operator: GreaterThan,
			Limit:    50,
			measure:  func(s *metrics.Statistics) float64 { return s.Throughput },
		},
	}
}

// Result is the outcome of one threshold.
type Result struct {
	Name       string   `json:"name"`
	Expression string   `json:"expression"`
	Operator   Operator `json:"operator"`
	Limit      float64  `json:"limit"`
	Measured   float64  `json:"measured"`
	Unit       string   `json:"unit,omitempty"`
	Passed     bool     `json:"passed"`
	Message    string   `json:"message,omitempty"`
}

// Value renders the measured value with its unit.
func (r Result) Value() string {
	return formatValue(r.Measured, r.Unit)
}

// Report holds every threshold result of one evaluation.
type Report struct {
	Results []Result `json:"results"`
}

// Passed reports whether every threshold held.
func (r *Report) Passed() bool {
	return len(r.Violations()) == 0
}

// Violations returns the failed results in evaluation order.
func (r *Report) Violations() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// Err joins one error per violation, or returns nil when all passed.
func (r *Report) Err() error {
	var errs []error
	for _, v := range r.Violations() {
		errs = append(errs, errors.New(v.Message))
	}
	return errors.Join(errs...)
}

// Evaluate checks every fixed threshold against stats. All thresholds are
// evaluated; a nil stats fails each one.
func Evaluate(stats *metrics.Statistics) *Report {
	return EvaluateThresholds(stats, Thresholds())
}

// EvaluateThresholds checks the given thresholds against stats.
func EvaluateThresholds(stats *metrics.Statistics, thresholds []Threshold) *Report {
	report := &Report{Results: make([]Result, 0, len(thresholds))}

	for _, th := range thresholds {
		res := Result{
			Name:       th.Name,
			Expression: th.Expression(),
			Operator:   th.Operator,
			Limit:      th.Limit,
			Unit:       th.Unit,
		}

		if stats == nil {
			res.Message = fmt.Sprintf("%s: no statistics available", th.Name)
			report.Results = append(report.Results, res)
			continue
		}

		res.Measured = th.measure(stats)
		res.Passed = th.Operator.compare(res.Measured, th.Limit)
		if !res.Passed {
			res.Message = fmt.Sprintf("%s is %s, threshold: %s", th.Name, res.Value(), th.Expression())
		}
		report.Results = append(report.Results, res)
	}

	return report
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func formatValue(v float64, unit string) string {
	switch unit {
	case "ms":
		return fmt.Sprintf("%.2fms", v)
	case "/s":
		return fmt.Sprintf("%.2f/s", v)
	default:
		return fmt.Sprintf("%g", v)
	}
}
