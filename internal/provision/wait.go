package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultPollInterval is the pause between readiness probes.
const DefaultPollInterval = 250 * time.Millisecond

// WaitReady polls GET url until it answers 200 or timeout elapses.
func WaitReady(ctx context.Context, client *http.Client, url string, timeout, interval time.Duration) error {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		err := probe(ctx, client, url)
		if err == nil {
			return nil
		}
		// A probe cut short by the deadline says nothing about the target.
		if lastErr == nil || ctx.Err() == nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s after %v: %v", ErrNotReady, url, timeout, lastErr)
		case <-ticker.C:
		}
	}
}

func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
