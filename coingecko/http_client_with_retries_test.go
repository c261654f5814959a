package coingecko

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStatusHandler struct {
	mu       sync.Mutex
	statuses []string
	retries  int
}

func (h *recordingStatusHandler) OnRequest(status string) {
	h.mu.Lock()
	h.statuses = append(h.statuses, status)
	h.mu.Unlock()
}

func (h *recordingStatusHandler) OnRetry() {
	h.mu.Lock()
	h.retries++
	h.mu.Unlock()
}

func fastRetryOptions() RetryOptions {
	opts := DefaultRetryOptions()
	opts.BaseBackoff = 10 * time.Millisecond
	return opts
}

func TestExecuteRequest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	handler := &recordingStatusHandler{}
	client := NewHTTPClientWithRetries(fastRetryOptions(), handler, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, body, duration, err := client.ExecuteRequest(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, `{"status":"ok"}`, string(body))
	assert.Greater(t, duration, time.Duration(0))
	assert.Equal(t, []string{"success"}, handler.statuses)
	assert.Equal(t, 0, handler.retries)
}

func TestExecuteRequest_RetriesOnServerError(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	handler := &recordingStatusHandler{}
	client := NewHTTPClientWithRetries(fastRetryOptions(), handler, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, body, _, err := client.ExecuteRequest(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 3, attempts)
	assert.Equal(t, `{"status":"ok"}`, string(body))
	assert.Equal(t, 2, handler.retries)
}

func TestExecuteRequest_RetriesOnRateLimit(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	handler := &recordingStatusHandler{}
	client := NewHTTPClientWithRetries(fastRetryOptions(), handler, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, _, _, err := client.ExecuteRequest(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 2, attempts)
	assert.Equal(t, []string{"rate_limited", "success"}, handler.statuses)
}

func TestExecuteRequest_NoRetryOnClientError(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	handler := &recordingStatusHandler{}
	client := NewHTTPClientWithRetries(fastRetryOptions(), handler, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, _, _, err := client.ExecuteRequest(req)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, []string{"error"}, handler.statuses)
}

func TestExecuteRequest_AllAttemptsExhausted(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	opts := fastRetryOptions()
	client := NewHTTPClientWithRetries(opts, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, _, _, err := client.ExecuteRequest(req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
	assert.Equal(t, opts.MaxRetries, attempts)
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	base := 100 * time.Millisecond

	assert.Equal(t, base, calculateBackoffWithJitter(base, 0))

	// Exponential growth: attempt n falls in [base*2^(n-1), base*2^(n-1)*1.5)
	for attempt := 1; attempt <= 3; attempt++ {
		backoff := calculateBackoffWithJitter(base, attempt)
		floor := base * time.Duration(1<<uint(attempt-1))
		assert.GreaterOrEqual(t, backoff, floor)
		assert.Less(t, backoff, floor+floor/2)
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(http.StatusTooManyRequests))
	assert.True(t, isRetryableError(http.StatusInternalServerError))
	assert.True(t, isRetryableError(http.StatusBadGateway))
	assert.True(t, isRetryableError(http.StatusServiceUnavailable))
	assert.True(t, isRetryableError(http.StatusGatewayTimeout))
	assert.False(t, isRetryableError(http.StatusNotFound))
	assert.False(t, isRetryableError(http.StatusUnauthorized))
}
