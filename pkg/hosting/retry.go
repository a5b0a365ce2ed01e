package hosting

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"syscall"
	"time"
)

const (
	defaultRetryAttempts = 3
	defaultBaseDelay     = 1 * time.Second
	defaultMaxDelay      = 30 * time.Second
)

// RetryConfig defines how API requests are retried.
type RetryConfig struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before the first retry, doubled each time
	MaxDelay    time.Duration // cap for any single wait, including rate limit waits
	RetryOn     []int         // status codes worth retrying
}

// DefaultRetryConfig retries rate limiting and gateway failures. A plain 500
// is not retried because repository creation may already have happened.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: defaultRetryAttempts,
		BaseDelay:   defaultBaseDelay,
		MaxDelay:    defaultMaxDelay,
		RetryOn: []int{
			http.StatusTooManyRequests,    // 429
			http.StatusBadGateway,         // 502
			http.StatusServiceUnavailable, // 503
			http.StatusGatewayTimeout,     // 504
		},
	}
}

func (rc RetryConfig) shouldRetry(resp *http.Response) bool {
	for _, code := range rc.RetryOn {
		if code == resp.StatusCode {
			return true
		}
	}
	// GitHub signals an exhausted primary rate limit with 403.
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// delay is exponential backoff with ±10% jitter, overridden by the server's
// Retry-After or rate limit reset when present. Never above MaxDelay.
func (rc RetryConfig) delay(attempt int, resp *http.Response, now time.Time) time.Duration {
	d := rc.BaseDelay * time.Duration(1<<uint(attempt))
	d += time.Duration(float64(d) * 0.1 * (rand.Float64()*2 - 1)) //nolint:gosec // jitter only
	if resp != nil {
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
			d = time.Duration(s) * time.Second
		} else if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			if wait := time.Unix(reset, 0).Sub(now); wait > 0 {
				d = wait
			}
		}
	}
	if d < 0 {
		d = rc.BaseDelay
	}
	if d > rc.MaxDelay {
		d = rc.MaxDelay
	}
	return d
}

// retryTransport retries requests that never reached the server or were
// rejected by rate limiting.
type retryTransport struct {
	base   http.RoundTripper
	config RetryConfig
	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetryTransport(base http.RoundTripper, cfg RetryConfig) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{base: base, config: cfg, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempts := t.config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; ; attempt++ {
		resp, err := t.base.RoundTrip(req)
		last := attempt+1 >= attempts
		switch {
		case err != nil && (last || !isConnectionRefused(err)):
			return resp, err
		case err == nil && (last || !t.config.shouldRetry(resp)):
			return resp, nil
		}
		if req.Body != nil && req.GetBody == nil {
			return resp, err
		}

		wait := t.config.delay(attempt, resp, time.Now())
		if resp != nil {
			resp.Body.Close()
		}
		if err := t.sleep(req.Context(), wait); err != nil {
			return nil, err
		}

		if req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, berr
			}
			req = req.Clone(req.Context())
			req.Body = body
		}
	}
}

// isConnectionRefused reports failures where the request was never sent.
func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
