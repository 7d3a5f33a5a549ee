package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// storageAPIVersion is the x-ms-version sent on every request.
const storageAPIVersion = "2023-11-03"

// Client is an authenticated, rate-limited HTTP client for the ADLS
// Gen2 DFS endpoint.
type Client struct {
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter
	httpClient    *http.Client
}

// NewClient creates a storage client using the given token provider.
func NewClient(tokenProvider driven.TokenProvider) *Client {
	return &Client{
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(),
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Do performs a rate-limited request. The caller owns the response body.
// 429 responses feed the limiter's backoff before being returned.
func (c *Client) Do(ctx context.Context, method, url string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-ms-version", storageAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if IsRateLimited(resp.StatusCode) {
		c.rateLimiter.RecordRateLimitError(retryAfterSeconds(resp))
	}

	return resp, nil
}

// ErrorFromResponse translates a non-2xx response into a sentinel error,
// draining the body so the connection can be reused.
func ErrorFromResponse(resp *http.Response) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	code := resp.Header.Get("x-ms-error-code")
	if wrapped := WrapError(resp.StatusCode, code); wrapped != nil {
		return fmt.Errorf("storage request failed: status %d (%s): %w", resp.StatusCode, code, wrapped)
	}
	return fmt.Errorf("storage request failed: status %d (%s)", resp.StatusCode, code)
}

func retryAfterSeconds(resp *http.Response) int {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
