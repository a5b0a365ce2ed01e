package hosting

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestRetryTransport(t *testing.T) {
	t.Run("retries rate limiting and resends the body", func(t *testing.T) {
		var calls atomic.Int32
		var (
			mu     sync.Mutex
			bodies []string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(b))
			mu.Unlock()
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		var waits []time.Duration
		rt := newRetryTransport(nil, DefaultRetryConfig())
		rt.sleep = noSleep(&waits)

		req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"name":"widget"}`))
		require.NoError(t, err)
		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, []string{`{"name":"widget"}`, `{"name":"widget"}`}, bodies)
		assert.Equal(t, []time.Duration{2 * time.Second}, waits)
	})

	t.Run("does not retry validation failures", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		var waits []time.Duration
		rt := newRetryTransport(nil, DefaultRetryConfig())
		rt.sleep = noSleep(&waits)

		req, _ := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader("{}"))
		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
		assert.Empty(t, waits)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		var waits []time.Duration
		rt := newRetryTransport(nil, DefaultRetryConfig())
		rt.sleep = noSleep(&waits)

		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := rt.RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, int32(3), calls.Load())
		assert.Len(t, waits, 2)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		rt := newRetryTransport(nil, DefaultRetryConfig())
		rt.sleep = func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		_, err := rt.RoundTrip(req)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetryConfigDelay(t *testing.T) {
	rc := DefaultRetryConfig()
	now := time.Unix(1_700_000_000, 0)

	t.Run("exponential with jitter", func(t *testing.T) {
		d := rc.delay(1, nil, now)
		assert.InDelta(t, float64(2*time.Second), float64(d), float64(200*time.Millisecond))
	})

	t.Run("rate limit reset", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{}}
		resp.Header.Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(5*time.Second).Unix(), 10))
		assert.Equal(t, 5*time.Second, rc.delay(0, resp, now))
	})

	t.Run("capped", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{}}
		resp.Header.Set("Retry-After", "3600")
		assert.Equal(t, rc.MaxDelay, rc.delay(0, resp, now))
	})
}

func TestRetryConfigShouldRetry(t *testing.T) {
	rc := DefaultRetryConfig()
	limited := &http.Response{StatusCode: http.StatusForbidden, Header: http.Header{}}
	limited.Header.Set("X-RateLimit-Remaining", "0")
	denied := &http.Response{StatusCode: http.StatusForbidden, Header: http.Header{}}

	assert.True(t, rc.shouldRetry(limited))
	assert.False(t, rc.shouldRetry(denied))
	assert.True(t, rc.shouldRetry(&http.Response{StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, rc.shouldRetry(&http.Response{StatusCode: http.StatusInternalServerError}))
}
