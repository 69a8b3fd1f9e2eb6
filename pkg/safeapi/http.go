// Package safeapi talks to the services a Safe hash verification depends on:
// the Safe Transaction Service for queued transactions and the
// Etherscan-compatible explorers for contract ABIs.
package safeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"

	"github.com/luxfi/safehash/pkg/logger"
	"github.com/luxfi/safehash/pkg/metrics"
)

const CodeNetwork = "NETWORK_ERROR"

// NetworkError reports a failed or unusable response from a remote service.
type NetworkError struct {
	Service string
	// Status is the HTTP status, zero when no response was received.
	Status int
	Msg    string
	Err    error
}

func (e *NetworkError) Error() string {
	msg := e.Service + ": " + e.Msg
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Code() string { return CodeNetwork }

// Temporary reports whether a retry may succeed.
func (e *NetworkError) Temporary() bool {
	return e.Status == 0 || e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// retryPolicy configures how remote calls are retried.
type retryPolicy struct {
	attempts uint
	delay    time.Duration
}

var defaultRetry = retryPolicy{attempts: 3, delay: 250 * time.Millisecond}

// getter performs retried JSON GETs against one service.
type getter struct {
	service    string
	httpClient *http.Client
	retry      retryPolicy
	metrics    *metrics.Metrics
}

func (g *getter) getJSON(ctx context.Context, network, url string, out interface{}) error {
	return retry.Do(
		func() error { return g.getOnce(ctx, network, url, out) },
		retry.Context(ctx),
		retry.Attempts(g.retry.attempts),
		retry.Delay(g.retry.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var netErr *NetworkError
			return errors.As(err, &netErr) && netErr.Temporary()
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Retrying request", "service", g.service, "attempt", n+1, "error", err.Error())
		}),
	)
}

func (g *getter) getOnce(ctx context.Context, network, url string, out interface{}) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &NetworkError{Service: g.service, Msg: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.metrics.RecordUpstream(g.service, network, 0, time.Since(start))
		return &NetworkError{Service: g.service, Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()
	g.metrics.RecordUpstream(g.service, network, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return &NetworkError{Service: g.service, Status: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Service: g.service, Status: resp.StatusCode, Msg: "failed to decode response", Err: err}
	}
	return nil
}
