package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/hellobench/internal/performance"
	"github.com/wesleyorama2/hellobench/internal/performance/metrics"
)

// jsonReport is the on-disk shape of a JSON report.
type jsonReport struct {
	*performance.Result
	Passed bool `json:"passed"`
}

// Summary is the part of a JSON report needed to re-check thresholds.
type Summary struct {
	ID         string
	Name       string
	Target     string
	StartTime  time.Time
	Passed     bool
	Error      string
	Statistics *metrics.Statistics
}

// GenerateJSON renders result as an indented JSON document.
func GenerateJSON(result *performance.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("result cannot be nil")
	}
	data, err := json.MarshalIndent(jsonReport{Result: result, Passed: result.Passed()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// WriteJSON writes the JSON report for result to path.
func WriteJSON(result *performance.Result, path string) error {
	data, err := GenerateJSON(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

// ReadSummary reads a JSON report written by WriteJSON.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return ParseSummary(data)
}

// ParseSummary extracts the summary fields from JSON report data.
func ParseSummary(data []byte) (*Summary, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("report is not valid JSON")
	}

	doc := gjson.ParseBytes(data)
	st := doc.Get("statistics")
	if !st.Exists() || st.Type == gjson.Null {
		return nil, fmt.Errorf("report has no statistics")
	}

	summary := &Summary{
		ID:     doc.Get("id").String(),
		Name:   doc.Get("name").String(),
		Target: doc.Get("target").String(),
		Passed: doc.Get("passed").Bool(),
		Error:  doc.Get("error").String(),
		Statistics: &metrics.Statistics{
			Count:           st.Get("count").Int(),
			Successes:       st.Get("successes").Int(),
			Errors:          st.Get("errors").Int(),
			TransportErrors: st.Get("transportErrors").Int(),
			Bytes:           st.Get("bytes").Int(),
			Elapsed:         time.Duration(st.Get("elapsed").Int()),
			Throughput:      st.Get("throughput").Float(),
			Latency: metrics.LatencyStats{
				Min:    time.Duration(st.Get("latency.min").Int()),
				Max:    time.Duration(st.Get("latency.max").Int()),
				Mean:   time.Duration(st.Get("latency.mean").Int()),
				StdDev: time.Duration(st.Get("latency.stdDev").Int()),
				P50:    time.Duration(st.Get("latency.p50").Int()),
				P90:    time.Duration(st.Get("latency.p90").Int()),
				P95:    time.Duration(st.Get("latency.p95").Int()),
				P99:    time.Duration(st.Get("latency.p99").Int()),
				Count:  st.Get("latency.count").Int(),
			},
		},
	}
	if ts := doc.Get("startTime"); ts.Exists() {
		summary.StartTime = ts.Time()
	}

	if kinds := st.Get("errorKinds"); kinds.IsObject() {
		summary.Statistics.ErrorKinds = make(map[string]int64)
		kinds.ForEach(func(key, value gjson.Result) bool {
			summary.Statistics.ErrorKinds[key.String()] = value.Int()
			return true
		})
	}

	return summary, nil
}
