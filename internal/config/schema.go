// Package config provides configuration loading and validation for the
// greeting server and its performance test.
package config

import (
	"time"

	"github.com/wesleyorama2/hellobench/internal/logger"
)

// Config is the root configuration.
//
// Example YAML:
//
//	name: "hello-world"
//	server:
//	  addr: ":8080"
//	loadTest:
//	  workers: 10
//	  iterations: 100
//	  timeout: 2m
//	provision:
//	  mode: docker
//	  image: hello-world
//	report:
//	  dir: build/perf-report
type Config struct {
	// Name of the test (for reporting)
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Server configures the greeting HTTP server
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Logging configures the structured logger
	Logging logger.Config `json:"logging,omitempty" yaml:"logging,omitempty"`

	// LoadTest configures the load-test runner
	LoadTest LoadTestConfig `json:"loadTest,omitempty" yaml:"loadTest,omitempty"`

	// Provision selects how the target URL is obtained
	Provision ProvisionConfig `json:"provision,omitempty" yaml:"provision,omitempty"`

	// Report controls report output
	Report ReportConfig `json:"report,omitempty" yaml:"report,omitempty"`
}

// ServerConfig contains greeting server settings.
type ServerConfig struct {
	Addr         string   `json:"addr,omitempty" yaml:"addr,omitempty"`
	ReadTimeout  Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	IdleTimeout  Duration `json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty"`
}

// LoadTestConfig describes the worker/iteration plan.
type LoadTestConfig struct {
	// Workers is the number of concurrent workers
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Iterations is the number of sequential requests per worker
	Iterations int `json:"iterations,omitempty" yaml:"iterations,omitempty"`

	// TargetURL, when set, is used as-is and provisioning is skipped
	TargetURL string `json:"targetUrl,omitempty" yaml:"targetUrl,omitempty"`

	// Timeout bounds the whole run
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// RequestTimeout bounds each request
	RequestTimeout Duration `json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty"`
}

// Provision modes.
const (
	ProvisionLocal  = "local"
	ProvisionStatic = "static"
	ProvisionDocker = "docker"
)

// ProvisionConfig selects and configures the target provisioner.
type ProvisionConfig struct {
	// Mode is one of "local", "static", "docker"
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// URL is the target for static mode
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Image is the container image for docker mode
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// ContainerPort is the port the image listens on
	ContainerPort int `json:"containerPort,omitempty" yaml:"containerPort,omitempty"`

	// StartupTimeout bounds waiting for the target to answer
	StartupTimeout Duration `json:"startupTimeout,omitempty" yaml:"startupTimeout,omitempty"`
}

// ReportConfig controls which reports are written and where.
type ReportConfig struct {
	Dir  string `json:"dir,omitempty" yaml:"dir,omitempty"`
	HTML *bool  `json:"html,omitempty" yaml:"html,omitempty"`
	JSON *bool  `json:"json,omitempty" yaml:"json,omitempty"`
}

// HTMLEnabled reports whether the HTML report is written (default: true).
func (r ReportConfig) HTMLEnabled() bool {
	return r.HTML == nil || *r.HTML
}

// JSONEnabled reports whether the JSON report is written (default: true).
func (r ReportConfig) JSONEnabled() bool {
	return r.JSON == nil || *r.JSON
}

// Duration is a time.Duration that can be unmarshaled from JSON/YAML strings.
type Duration time.Duration

// GetDuration returns the duration or a default if empty.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	if s == "" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}
