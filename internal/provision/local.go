package provision

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/wesleyorama2/hellobench/internal/greeting"
)

// Local runs the greeting server in-process on a loopback port.
type Local struct {
	Service        greeting.Service
	Server         greeting.ServerConfig
	StartupTimeout time.Duration
	Logger         *zap.Logger

	listen func(network, addr string) (net.Listener, error)
}

var errServerExited = errors.New("local server exited during startup")

// Provision starts the server on 127.0.0.1:0 and waits until it answers.
func (l *Local) Provision(ctx context.Context) (*Target, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	service := l.Service
	if service == nil {
		service = greeting.NewService()
	}

	listen := l.listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	srv := greeting.NewServer(service, log.Named("greeting"), l.Server)
	startCtx, cancelStart := context.WithCancelCause(ctx)
	defer cancelStart(nil)

	done := make(chan error, 1)
	go func() {
		err := srv.Serve(ln)
		cancelStart(fmt.Errorf("%w: %v", errServerExited, err))
		done <- err
	}()

	baseURL := fmt.Sprintf("http://%s/", ln.Addr().String())
	release := func(ctx context.Context) error {
		ctx, cancel := releaseTimeout(ctx)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop local server: %w", err)
		}
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timeout := l.StartupTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := WaitReady(startCtx, nil, baseURL, timeout, 20*time.Millisecond); err != nil {
		if cause := context.Cause(startCtx); errors.Is(cause, errServerExited) {
			return nil, cause
		}
		_ = release(context.Background())
		return nil, err
	}

	log.Info("local target ready", zap.String("url", baseURL))
	return NewTarget(baseURL, release), nil
}
