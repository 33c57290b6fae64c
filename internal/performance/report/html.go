package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/wesleyorama2/hellobench/internal/performance"
	"github.com/wesleyorama2/hellobench/internal/performance/metrics"
)

// Chart geometry in SVG user units.
const (
	chartWidth  = 960
	chartHeight = 220
	chartPad    = 30
)

// ReportData contains all data needed to render the HTML report.
type ReportData struct {
	*performance.Result
	Passed bool
	Chart  Chart
}

// Chart is a bar chart of requests per bucket.
type Chart struct {
	Width    int
	Height   int
	Bars     []ChartBar
	MaxValue float64
	Interval time.Duration
}

// ChartBar is one bucket in the chart.
type ChartBar struct {
	X, Y, W, H float64
	Label      string
	Failed     bool
}

// GenerateHTML generates an HTML report and returns it as a string.
func GenerateHTML(result *performance.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("result cannot be nil")
	}

	tmpl, err := template.New("report").Funcs(templateFuncs()).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	data := ReportData{
		Result: result,
		Passed: result.Passed(),
		Chart:  buildChart(result.Statistics),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// WriteHTML generates the HTML report for result and writes it to path.
func WriteHTML(result *performance.Result, path string) error {
	html, err := GenerateHTML(result)
	if err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}
	return nil
}

func buildChart(stats *metrics.Statistics) Chart {
	c := Chart{Width: chartWidth, Height: chartHeight, Interval: time.Second}
	if stats == nil || len(stats.Series) == 0 {
		return c
	}
	if len(stats.Series) > 1 {
		c.Interval = stats.Series[1].Offset - stats.Series[0].Offset
	}

	for _, b := range stats.Series {
		if v := b.RPS(c.Interval); v > c.MaxValue {
			c.MaxValue = v
		}
	}
	if c.MaxValue == 0 {
		return c
	}

	plotW := float64(chartWidth - 2*chartPad)
	plotH := float64(chartHeight - 2*chartPad)
	slot := plotW / float64(len(stats.Series))
	for i, b := range stats.Series {
		rps := b.RPS(c.Interval)
		h := rps / c.MaxValue * plotH
		c.Bars = append(c.Bars, ChartBar{
			X:      chartPad + float64(i)*slot + slot*0.1,
			Y:      chartPad + plotH - h,
			W:      slot * 0.8,
			H:      h,
			Label:  fmt.Sprintf("%s: %.1f req/s, %d errors", formatDuration(b.Offset), rps, b.Errors),
			Failed: b.Errors > 0,
		})
	}
	return c
}

// templateFuncs returns the template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDuration": formatDuration,
		"formatNumber":   formatNumber,
		"formatLatency":  formatLatency,
		"formatBytes":    formatBytes,
		"successRate":    successRate,
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var out []byte
	for i := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, str[i])
	}
	return string(out)
}

// formatLatency formats a latency duration in a human-readable way.
func formatLatency(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	if d < time.Millisecond {
		us := float64(d.Nanoseconds()) / 1000.0
		if us < 100 {
			return fmt.Sprintf("%.1fµs", us)
		}
		return fmt.Sprintf("%dµs", int(us))
	}
	if d < time.Second {
		ms := float64(d.Microseconds()) / 1000.0
		if ms < 10 {
			return fmt.Sprintf("%.2fms", ms)
		}
		if ms < 100 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// successRate returns the percentage of successful samples.
func successRate(s *metrics.Statistics) float64 {
	if s == nil || s.Count == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Count) * 100
}
