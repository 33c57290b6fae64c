// Package output renders performance runs to the console.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/wesleyorama2/hellobench/internal/performance"
	"github.com/wesleyorama2/hellobench/internal/performance/runner"
)

const (
	clearLine   = "\r\033[2K"
	ruleWidth   = 56
	barWidth    = 30
	barFilled   = "█"
	barEmpty    = "░"
	ruleGlyph   = "━"
	passedGlyph = "✓"
	failedGlyph = "✗"
)

// ConsoleConfig contains configuration for Console.
type ConsoleConfig struct {
	Writer      io.Writer
	Quiet       bool
	NoColor     bool
	ForceColors bool
	ForceTTY    bool
}

// Console prints the header, live progress and summary of a run.
type Console struct {
	writer    io.Writer
	isTTY     bool
	useColors bool
	quiet     bool

	mu       sync.Mutex
	liveLine bool

	bold   *color.Color
	dim    *color.Color
	cyan   *color.Color
	blue   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

// NewConsole creates a console writer. Colors are used only on a TTY with
// NO_COLOR unset, unless forced.
func NewConsole(config ConsoleConfig) *Console {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}

	isTTY := config.ForceTTY || isTerminal(config.Writer)
	useColors := !config.NoColor && (config.ForceColors || (isTTY && supportsColors()))

	c := &Console{
		writer:    config.Writer,
		isTTY:     isTTY,
		useColors: useColors,
		quiet:     config.Quiet,
		bold:      color.New(color.Bold),
		dim:       color.New(color.Faint),
		cyan:      color.New(color.FgCyan),
		blue:      color.New(color.FgBlue),
		green:     color.New(color.FgGreen),
		yellow:    color.New(color.FgYellow),
		red:       color.New(color.FgRed),
	}
	for _, col := range []*color.Color{c.bold, c.dim, c.cyan, c.blue, c.green, c.yellow, c.red} {
		if useColors {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// PrintHeader prints the run header.
func (c *Console) PrintHeader(name, target string, cfg runner.Config) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rule := c.cyan.Sprint(strings.Repeat(ruleGlyph, ruleWidth))
	c.writeln(rule)
	c.writeln(c.bold.Sprintf("%s - Running", name))
	c.writeln(rule)
	c.writeln(fmt.Sprintf("Target:      %s", c.cyan.Sprint(target)))
	c.writeln(fmt.Sprintf("Load plan:   %d workers x %d iterations (%s requests)",
		cfg.Workers, cfg.Iterations, formatNumber(cfg.TotalRequests())))
	c.writeln(fmt.Sprintf("Timeout:     %s", formatDuration(cfg.Timeout)))
	c.writeln("")
}

// Update shows the current progress. On a TTY the line is redrawn in place;
// otherwise one line is printed per call.
func (c *Console) Update(p runner.Progress) {
	if c.quiet {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isTTY {
		c.write(clearLine + c.renderProgress(p))
		c.liveLine = true
		return
	}

	c.writeln(fmt.Sprintf("[%s] Progress: %.0f%% | Reqs: %d/%d | Errors: %d",
		formatDuration(p.Elapsed), p.Fraction()*100, p.Done, p.Total, p.Errors))
}

func (c *Console) renderProgress(p runner.Progress) string {
	frac := p.Fraction()
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * barWidth)
	bar := "[" + strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barWidth-filled) + "]"

	errs := c.green.Sprint(p.Errors)
	if p.Errors > 0 {
		errs = c.red.Sprint(p.Errors)
	}

	return fmt.Sprintf("Progress: %s %s | %s/%s reqs | errors %s | %s",
		c.green.Sprint(bar),
		c.bold.Sprintf("%3.0f%%", frac*100),
		formatNumber(p.Done), formatNumber(p.Total),
		errs,
		c.dim.Sprint(formatDuration(p.Elapsed)))
}

// PrintSummary prints the final result. In quiet mode only PASSED/FAILED is printed.
func (c *Console) PrintSummary(result *performance.Result) {
	passed := result.Passed()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.liveLine {
		c.write(clearLine)
		c.liveLine = false
	}

	if c.quiet {
		if passed {
			c.writeln(c.green.Sprint("PASSED"))
		} else {
			c.writeln(c.red.Sprint("FAILED"))
		}
		return
	}

	status := c.green.Sprint("Completed " + passedGlyph)
	if !passed {
		status = c.red.Sprint("Failed " + failedGlyph)
	}

	rule := c.cyan.Sprint(strings.Repeat(ruleGlyph, ruleWidth))
	c.writeln(rule)
	c.writeln(fmt.Sprintf("%s - %s", c.bold.Sprint(result.Name), status))
	c.writeln(rule)
	c.writeln("")

	c.writeln(fmt.Sprintf("Run ID:        %s", result.ID))
	c.writeln(fmt.Sprintf("Duration:      %s", c.cyan.Sprint(formatDuration(result.Duration))))
	if result.Error != "" {
		c.writeln(fmt.Sprintf("Aborted:       %s", c.red.Sprint(result.Error)))
	}

	if s := result.Statistics; s != nil {
		c.writeln(fmt.Sprintf("Total Reqs:    %s", c.cyan.Sprint(formatNumber(s.Count))))
		c.writeln(fmt.Sprintf("Throughput:    %s", c.cyan.Sprintf("%.1f req/s", s.Throughput)))

		successRate := 1.0 - s.ErrorRate()
		rateColor := c.green
		if successRate < 0.99 {
			rateColor = c.yellow
		}
		if successRate < 0.95 {
			rateColor = c.red
		}
		c.writeln(fmt.Sprintf("Success Rate:  %s", rateColor.Sprintf("%.1f%%", successRate*100)))
		c.writeln("")

		c.writeln(c.bold.Sprint("Latency Distribution:"))
		c.writeln(fmt.Sprintf("  Min:       %s", c.blue.Sprint(formatLatency(s.Latency.Min))))
		c.writeln(fmt.Sprintf("  Mean:      %s", c.blue.Sprint(formatLatency(s.Latency.Mean))))
		c.writeln(fmt.Sprintf("  P50:       %s", c.blue.Sprint(formatLatency(s.Latency.P50))))
		c.writeln(fmt.Sprintf("  P90:       %s", c.blue.Sprint(formatLatency(s.Latency.P90))))
		c.writeln(fmt.Sprintf("  P95:       %s", c.blue.Sprint(formatLatency(s.Latency.P95))))
		c.writeln(fmt.Sprintf("  P99:       %s", c.blue.Sprint(formatLatency(s.Latency.P99))))
		c.writeln(fmt.Sprintf("  Max:       %s", c.blue.Sprint(formatLatency(s.Latency.Max))))

		if len(s.ErrorKinds) > 0 {
			c.writeln("")
			c.writeln(c.bold.Sprint("Errors:"))
			for _, kind := range sortedKeys(s.ErrorKinds) {
				c.writeln(fmt.Sprintf("  %-20s %s", kind, c.red.Sprint(s.ErrorKinds[kind])))
			}
		}
		c.writeln("")
	}

	if result.Assertions != nil {
		c.writeln(c.bold.Sprint("Thresholds:"))
		for _, r := range result.Assertions.Results {
			mark := c.green.Sprint(passedGlyph)
			if !r.Passed {
				mark = c.red.Sprint(failedGlyph)
			}
			c.writeln(fmt.Sprintf("  %s %-20s (actual: %s)", mark, r.Expression, r.Value()))
		}
		c.writeln("")
	}
}

// PrintReports lists the written report files.
func (c *Console) PrintReports(paths []string) {
	if c.quiet || len(paths) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.writeln(c.bold.Sprint("Reports:"))
	for _, p := range paths {
		c.writeln("  " + c.dim.Sprint(p))
	}
}

func (c *Console) write(s string) {
	fmt.Fprint(c.writer, s)
}

func (c *Console) writeln(s string) {
	fmt.Fprintln(c.writer, s)
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %02dm %02ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// formatLatency formats a latency with unit-appropriate precision.
func formatLatency(d time.Duration) string {
	switch {
	case d == 0:
		return "0ms"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
