// Package http wraps the standard client with the transport policy shared by
// every upstream statistics API: per-host rate limiting and retry with
// exponential backoff. Rate limits on the free tiers of these APIs are low,
// so the limiter is not optional.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client is an HTTP client with rate limiting and retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new rate-limited HTTP client.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 2
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 45 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		maxElapsed: opts.MaxRetryTimeout,
	}
}

// DoRequest performs the request, retrying transient failures. Client errors
// (4xx) are permanent: retrying an invalid key or series ID only burns quota.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	operation := func() error {
		// A retried POST needs a fresh body.
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Body = body
		}
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusOK {
			return nil
		}
		resp.Body.Close()
		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(statusErr)
		}
		return statusErr
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

// HTTPStatusError reports a non-200 response status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
