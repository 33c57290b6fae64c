// Command generate-sample-report writes HTML and JSON reports for a
// synthetic run, for previewing report changes without a load test.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/wesleyorama2/hellobench/internal/config"
	"github.com/wesleyorama2/hellobench/internal/performance"
	"github.com/wesleyorama2/hellobench/internal/performance/assertion"
	"github.com/wesleyorama2/hellobench/internal/performance/metrics"
	"github.com/wesleyorama2/hellobench/internal/performance/report"
)

func main() {
	outputDir := "sample-report"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}

	paths, err := report.Write(createSampleResult(rand.New(rand.NewSource(42))), outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, p := range paths {
		fmt.Printf("Sample report generated: %s\n", p)
	}
}

// createSampleResult records 10 workers x 100 iterations of exponentially
// distributed latencies with a handful of 503s.
func createSampleResult(rng *rand.Rand) *performance.Result {
	cfg := config.Default()
	load := cfg.RunnerConfig("http://127.0.0.1:8080/")

	rec := metrics.NewRecorderWithConfig(metrics.RecorderConfig{
		BucketInterval:  100 * time.Millisecond,
		ExpectedSamples: int(load.TotalRequests()),
	})

	start := time.Now()
	for w := 0; w < load.Workers; w++ {
		for i := 0; i < load.Iterations; i++ {
			latency := time.Duration(2+rng.ExpFloat64()*6) * time.Millisecond
			status := 200
			if rng.Intn(250) == 0 {
				status = 503
			}
			rec.Record(metrics.Sample{Worker: w, Latency: latency, StatusCode: status, Bytes: 12})
		}
	}
	stats := rec.Finalize(3 * time.Second)

	return &performance.Result{
		ID:         uuid.NewString(),
		Name:       cfg.Name + " (sample)",
		Target:     load.TargetURL,
		StartTime:  start,
		EndTime:    start.Add(stats.Elapsed),
		Duration:   stats.Elapsed,
		LoadTest:   load,
		Statistics: stats,
		Assertions: assertion.Evaluate(stats),
	}
}

