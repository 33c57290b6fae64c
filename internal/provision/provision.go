// Package provision supplies the base URL a load test runs against and
// tears the target down afterwards.
package provision

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wesleyorama2/hellobench/internal/config"
	"github.com/wesleyorama2/hellobench/internal/greeting"
)

// ErrNotReady is returned when a target never answers its readiness probe.
var ErrNotReady = errors.New("target not ready")

// Target is a reachable base URL plus the function that releases it.
type Target struct {
	BaseURL string

	release func(ctx context.Context) error
	once    sync.Once
	err     error
}

// NewTarget returns a target whose Release calls release once.
func NewTarget(baseURL string, release func(ctx context.Context) error) *Target {
	return &Target{BaseURL: baseURL, release: release}
}

// Release tears the target down. Calling it more than once is safe.
func (t *Target) Release(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.once.Do(func() {
		if t.release != nil {
			t.err = t.release(ctx)
		}
	})
	return t.err
}

// Provisioner makes a target available.
type Provisioner interface {
	Provision(ctx context.Context) (*Target, error)
}

// New returns the provisioner selected by cfg.Mode.
func New(cfg config.ProvisionConfig, log *zap.Logger) (Provisioner, error) {
	if log == nil {
		log = zap.NewNop()
	}

	startup := cfg.StartupTimeout.GetDuration(config.DefaultStartupTimeout)

	switch cfg.Mode {
	case config.ProvisionStatic:
		return NewStatic(cfg.URL)
	case config.ProvisionLocal, "":
		return &Local{
			Service:        greeting.NewService(),
			StartupTimeout: startup,
			Logger:         log,
		}, nil
	case config.ProvisionDocker:
		if cfg.Image == "" {
			return nil, fmt.Errorf("docker provisioning requires an image")
		}
		port := cfg.ContainerPort
		if port == 0 {
			port = config.DefaultContainerPort
		}
		return &Docker{
			Image:          cfg.Image,
			ContainerPort:  port,
			StartupTimeout: startup,
			Logger:         log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown provision mode: %s", cfg.Mode)
	}
}

// Static hands out a URL that is already running.
type Static struct {
	URL string
}

// NewStatic validates rawURL and returns a Static provisioner for it.
func NewStatic(rawURL string) (*Static, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid target URL %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid target URL %q: host is required", rawURL)
	}
	return &Static{URL: rawURL}, nil
}

// Provision returns the configured URL; its release is a no-op.
func (s *Static) Provision(ctx context.Context) (*Target, error) {
	return NewTarget(s.URL, nil), nil
}

func releaseTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, 30*time.Second)
}
