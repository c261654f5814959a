package coingecko

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// HTTPStatusHandler receives the outcome of every HTTP attempt
type HTTPStatusHandler interface {
	// OnRequest handles a request with its status result
	OnRequest(status string)
	// OnRetry handles retry events
	OnRetry()
}

// RetryOptions configures retry behavior for HTTP requests
type RetryOptions struct {
	MaxRetries        int
	BaseBackoff       time.Duration
	LogPrefix         string
	ConnectionTimeout time.Duration // Timeout for establishing connection
	RequestTimeout    time.Duration // Total request timeout including reading response
}

// DefaultRetryOptions returns default retry options
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:        3,
		BaseBackoff:       1000 * time.Millisecond,
		LogPrefix:         "HTTP",
		ConnectionTimeout: 10 * time.Second,
		RequestTimeout:    30 * time.Second,
	}
}

// HTTPClientWithRetries wraps an HTTP client with retry and rate limiting
type HTTPClientWithRetries struct {
	client         *http.Client
	opts           RetryOptions
	statusHandler  HTTPStatusHandler
	limiterManager *RateLimiterManager
}

// NewHTTPClientWithRetries creates a new HTTP client with retry capabilities.
// handler and limiterManager may be nil.
func NewHTTPClientWithRetries(opts RetryOptions, handler HTTPStatusHandler, limiterManager *RateLimiterManager) *HTTPClientWithRetries {
	client := &http.Client{
		Timeout: opts.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.ConnectionTimeout,
			}).DialContext,
		},
	}

	return &HTTPClientWithRetries{
		client:         client,
		opts:           opts,
		statusHandler:  handler,
		limiterManager: limiterManager,
	}
}

// ExecuteRequest executes an HTTP request with retry logic
func (c *HTTPClientWithRetries) ExecuteRequest(req *http.Request) (*http.Response, []byte, time.Duration, error) {
	var lastErr error

	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("%s: Retry %d/%d after error: %v",
				c.opts.LogPrefix, attempt, c.opts.MaxRetries-1, lastErr)

			if c.statusHandler != nil {
				c.statusHandler.OnRetry()
			}

			time.Sleep(calculateBackoffWithJitter(c.opts.BaseBackoff, attempt))
		}

		if c.limiterManager != nil {
			limiter := c.limiterManager.GetLimiterForURL(req.URL)
			if limiter != nil {
				if err := limiter.Wait(req.Context()); err != nil {
					lastErr = fmt.Errorf("rate limiter wait failed: %w", err)
					if c.statusHandler != nil {
						c.statusHandler.OnRequest("error")
					}
					break
				}
			}
		}

		requestStart := time.Now()
		resp, err := c.client.Do(req)
		requestDuration := time.Since(requestStart)

		if err != nil {
			lastErr = fmt.Errorf("request failed after %.2fs: %v", requestDuration.Seconds(), err)
			if c.statusHandler != nil {
				c.statusHandler.OnRequest("error")
			}
			continue
		}

		responseBody, err := processResponse(resp, requestDuration)
		if err != nil {
			if isRetryableError(resp.StatusCode) {
				lastErr = err
				resp.Body.Close()
				if c.statusHandler != nil {
					c.statusHandler.OnRequest("rate_limited")
				}
				continue
			}

			resp.Body.Close()
			if c.statusHandler != nil {
				c.statusHandler.OnRequest("error")
			}
			return nil, nil, requestDuration, err
		}

		if c.statusHandler != nil {
			c.statusHandler.OnRequest("success")
		}
		return resp, responseBody, requestDuration, nil
	}

	return nil, nil, 0, fmt.Errorf("all %d attempts failed, last error: %v",
		c.opts.MaxRetries, lastErr)
}

// calculateBackoffWithJitter calculates backoff duration with jitter for retries
func calculateBackoffWithJitter(baseBackoff time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return baseBackoff
	}

	multiplier := uint(1) << uint(attempt-1)
	backoff := time.Duration(float64(baseBackoff) * float64(multiplier))
	jitter := time.Duration(rand.Int63n(int64(backoff / 2)))
	return backoff + jitter
}

// processResponse reads and validates the HTTP response
func processResponse(resp *http.Response, requestDuration time.Duration) ([]byte, error) {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			return nil, fmt.Errorf("rate limit exceeded (status %d), retry after %s: %s",
				resp.StatusCode, retryAfter, string(body))
		}

		return nil, fmt.Errorf("API request failed with status %d after %.2fs: %s",
			resp.StatusCode, requestDuration.Seconds(), string(body))
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	return responseBody, nil
}

// isRetryableError determines if a given HTTP status code should trigger a retry
func isRetryableError(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}
