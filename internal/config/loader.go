package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/hellobench/internal/greeting"
	"github.com/wesleyorama2/hellobench/internal/logger"
	"github.com/wesleyorama2/hellobench/internal/performance/runner"
)

// Default load plan: 10 workers x 100 iterations.
const (
	DefaultName           = "hello-world"
	DefaultAddr           = ":8080"
	DefaultWorkers        = 10
	DefaultIterations     = 100
	DefaultContainerPort  = 8080
	DefaultStartupTimeout = 60 * time.Second
	DefaultReportDir      = "build/perf-report"
)

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// LoadConfig loads a configuration from a file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// The document is checked against the config schema, defaults are applied,
// and the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses configuration data.
//
// The format is determined by the file extension in path, or defaults to YAML
// if the path is empty or has an unknown extension.
func ParseConfig(data []byte, path string) (*Config, error) {
	isJSON := strings.ToLower(filepath.Ext(path)) == ".json"

	var doc interface{}
	if isJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("config does not match schema: %w", err)
	}

	var cfg Config
	if isJSON {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = logger.DefaultConfig().Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logger.DefaultConfig().Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = logger.DefaultConfig().Output
	}

	if cfg.LoadTest.Workers == 0 {
		cfg.LoadTest.Workers = DefaultWorkers
	}
	if cfg.LoadTest.Iterations == 0 {
		cfg.LoadTest.Iterations = DefaultIterations
	}
	if cfg.LoadTest.Timeout == 0 {
		cfg.LoadTest.Timeout = Duration(runner.DefaultTimeout)
	}
	if cfg.LoadTest.RequestTimeout == 0 {
		cfg.LoadTest.RequestTimeout = Duration(runner.DefaultRequestTimeout)
	}

	if cfg.Provision.Mode == "" {
		switch {
		case cfg.LoadTest.TargetURL != "" || cfg.Provision.URL != "":
			cfg.Provision.Mode = ProvisionStatic
		case cfg.Provision.Image != "":
			cfg.Provision.Mode = ProvisionDocker
		default:
			cfg.Provision.Mode = ProvisionLocal
		}
	}
	if cfg.Provision.URL == "" {
		cfg.Provision.URL = cfg.LoadTest.TargetURL
	}
	if cfg.Provision.ContainerPort == 0 {
		cfg.Provision.ContainerPort = DefaultContainerPort
	}
	if cfg.Provision.StartupTimeout == 0 {
		cfg.Provision.StartupTimeout = Duration(DefaultStartupTimeout)
	}

	if cfg.Report.Dir == "" {
		cfg.Report.Dir = DefaultReportDir
	}
}

// RunnerConfig returns the runner configuration aimed at targetURL.
func (c *Config) RunnerConfig(targetURL string) runner.Config {
	return runner.Config{
		Workers:        c.LoadTest.Workers,
		Iterations:     c.LoadTest.Iterations,
		TargetURL:      targetURL,
		Timeout:        time.Duration(c.LoadTest.Timeout),
		RequestTimeout: time.Duration(c.LoadTest.RequestTimeout),
	}
}

// GreetingServerConfig returns the HTTP server settings.
func (c *Config) GreetingServerConfig() greeting.ServerConfig {
	return greeting.ServerConfig{
		ReadTimeout:  time.Duration(c.Server.ReadTimeout),
		WriteTimeout: time.Duration(c.Server.WriteTimeout),
		IdleTimeout:  time.Duration(c.Server.IdleTimeout),
	}
}
