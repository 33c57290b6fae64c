package report

// htmlTemplate is the self-contained report page.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Name}} - Performance Test Report</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f8fafc;
            --text-primary: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
            --accent-primary: #3b82f6;
            --accent-success: #22c55e;
            --accent-error: #ef4444;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container { max-width: 1100px; margin: 0 auto; padding: 2rem; }

        header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 2rem;
        }

        header .meta { color: var(--text-secondary); font-size: 0.9rem; }
        header .meta span { margin-right: 1.5rem; }

        .status {
            padding: 0.5rem 1.25rem;
            border-radius: 999px;
            font-weight: 600;
            color: #ffffff;
        }
        .status.pass { background: var(--accent-success); }
        .status.fail { background: var(--accent-error); }

        .abort {
            background: #fef2f2;
            border: 1px solid var(--accent-error);
            color: var(--accent-error);
            padding: 1rem;
            border-radius: 8px;
            margin-bottom: 2rem;
        }

        .cards {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
            gap: 1rem;
            margin-bottom: 2rem;
        }

        .card, section {
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            box-shadow: var(--shadow);
            padding: 1.25rem;
        }

        .card .label { color: var(--text-secondary); font-size: 0.8rem; text-transform: uppercase; }
        .card .value { font-size: 1.6rem; font-weight: 600; }
        .card .unit { font-size: 0.9rem; color: var(--text-secondary); margin-left: 0.25rem; }

        section { margin-bottom: 2rem; }
        section h2 { font-size: 1.1rem; margin-bottom: 1rem; }

        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid var(--border-color); }
        th { color: var(--text-secondary); font-weight: 500; font-size: 0.85rem; }
        td.pass { color: var(--accent-success); font-weight: 600; }
        td.fail { color: var(--accent-error); font-weight: 600; }

        svg rect.bar { fill: var(--accent-primary); }
        svg rect.bar.failed { fill: var(--accent-error); }
        svg line.axis { stroke: var(--border-color); }
        svg text { fill: var(--text-secondary); font-size: 11px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <div>
                <h1>{{.Name}}</h1>
                <div class="meta">
                    <span>Run {{.ID}}</span>
                    <span>{{.StartTime.Format "2006-01-02 15:04:05"}}</span>
                    <span>{{formatDuration .Duration}}</span>
                    <span>{{.Target}}</span>
                </div>
            </div>
            <div class="status {{if .Passed}}pass{{else}}fail{{end}}">
                {{if .Passed}}✓ PASSED{{else}}✗ FAILED{{end}}
            </div>
        </header>

        {{if .Error}}
        <div class="abort">Run aborted: {{.Error}}</div>
        {{end}}

        {{with .Statistics}}
        <div class="cards">
            <div class="card">
                <div class="label">Requests</div>
                <div class="value">{{formatNumber .Count}}</div>
            </div>
            <div class="card">
                <div class="label">Throughput</div>
                <div class="value">{{printf "%.1f" .Throughput}}<span class="unit">req/s</span></div>
            </div>
            <div class="card">
                <div class="label">Errors</div>
                <div class="value">{{formatNumber .Errors}}</div>
            </div>
            <div class="card">
                <div class="label">Success Rate</div>
                <div class="value">{{printf "%.2f" (successRate .)}}<span class="unit">%</span></div>
            </div>
            <div class="card">
                <div class="label">P95</div>
                <div class="value">{{formatLatency .Latency.P95}}</div>
            </div>
            <div class="card">
                <div class="label">Received</div>
                <div class="value">{{formatBytes .Bytes}}</div>
            </div>
        </div>

        <section>
            <h2>Latency</h2>
            <table>
                <tr><th>Min</th><th>Mean</th><th>P50</th><th>P90</th><th>P95</th><th>P99</th><th>Max</th><th>StdDev</th></tr>
                <tr>
                    <td>{{formatLatency .Latency.Min}}</td>
                    <td>{{formatLatency .Latency.Mean}}</td>
                    <td>{{formatLatency .Latency.P50}}</td>
                    <td>{{formatLatency .Latency.P90}}</td>
                    <td>{{formatLatency .Latency.P95}}</td>
                    <td>{{formatLatency .Latency.P99}}</td>
                    <td>{{formatLatency .Latency.Max}}</td>
                    <td>{{formatLatency .Latency.StdDev}}</td>
                </tr>
            </table>
        </section>

        {{if .ErrorKinds}}
        <section>
            <h2>Errors</h2>
            <table>
                <tr><th>Kind</th><th>Count</th></tr>
                {{range $kind, $n := .ErrorKinds}}
                <tr><td>{{$kind}}</td><td>{{formatNumber $n}}</td></tr>
                {{end}}
            </table>
        </section>
        {{end}}
        {{end}}

        {{with .Assertions}}
        <section>
            <h2>Thresholds</h2>
            <table>
                <tr><th></th><th>Threshold</th><th>Measured</th><th>Message</th></tr>
                {{range .Results}}
                <tr>
                    <td class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}✓{{else}}✗{{end}}</td>
                    <td>{{.Expression}}</td>
                    <td>{{.Value}}</td>
                    <td>{{.Message}}</td>
                </tr>
                {{end}}
            </table>
        </section>
        {{end}}

        {{if .Chart.Bars}}
        <section>
            <h2>Requests per {{formatDuration .Chart.Interval}}</h2>
            <svg viewBox="0 0 {{.Chart.Width}} {{.Chart.Height}}" width="100%" role="img">
                <line class="axis" x1="30" y1="{{.Chart.Height}}" x2="{{.Chart.Width}}" y2="{{.Chart.Height}}"></line>
                <text x="0" y="24">{{printf "%.0f" .Chart.MaxValue}}</text>
                {{range .Chart.Bars}}
                <rect class="bar{{if .Failed}} failed{{end}}" x="{{printf "%.1f" .X}}" y="{{printf "%.1f" .Y}}" width="{{printf "%.1f" .W}}" height="{{printf "%.1f" .H}}">
                    <title>{{.Label}}</title>
                </rect>
                {{end}}
            </svg>
        </section>
        {{end}}

        <section>
            <h2>Load Plan</h2>
            <table>
                <tr><th>Workers</th><th>Iterations</th><th>Total Requests</th><th>Timeout</th><th>Request Timeout</th></tr>
                <tr>
                    <td>{{.LoadTest.Workers}}</td>
                    <td>{{.LoadTest.Iterations}}</td>
                    <td>{{formatNumber .LoadTest.TotalRequests}}</td>
                    <td>{{formatDuration .LoadTest.Timeout}}</td>
                    <td>{{formatDuration .LoadTest.RequestTimeout}}</td>
                </tr>
            </table>
        </section>
    </div>
</body>
</html>
`
