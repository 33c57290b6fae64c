// Package report writes HTML and JSON reports for performance results.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wesleyorama2/hellobench/internal/performance"
)

// File names used inside a report directory.
const (
	HTMLFile = "index.html"
	JSONFile = "report.json"
)

// Write writes the HTML and JSON reports into dir, creating it if needed,
// and returns the written paths.
func Write(result *performance.Result, dir string) ([]string, error) {
	return WriteSelected(result, dir, true, true)
}

// WriteSelected writes the enabled reports into dir.
func WriteSelected(result *performance.Result, dir string, html, json bool) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("result cannot be nil")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	var paths []string
	if html {
		path := filepath.Join(dir, HTMLFile)
		if err := WriteHTML(result, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if json {
		path := filepath.Join(dir, JSONFile)
		if err := WriteJSON(result, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
