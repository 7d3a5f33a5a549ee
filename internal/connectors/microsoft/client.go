package microsoft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/harbourview/driftsync/internal/core/ports/driven"
)

// GraphBaseURL is the Microsoft Graph API v1.0 endpoint.
const GraphBaseURL = "https://graph.microsoft.com/v1.0"

// Client is an authenticated, rate-limited HTTP client for Microsoft
// Graph. Tokens are resolved per request so refreshed credentials are
// picked up mid-sync.
type Client struct {
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter
	httpClient    *http.Client
}

// NewClient creates a Graph client using the given token provider.
func NewClient(tokenProvider driven.TokenProvider) *Client {
	return &Client{
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(),
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Get performs a rate-limited GET. The caller owns the response body.
// 429 responses feed the limiter's backoff before being returned.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if IsRateLimited(resp.StatusCode) {
		c.rateLimiter.RecordRateLimitError(retryAfterSeconds(resp))
	}

	return resp, nil
}

// GetJSON performs a GET and decodes a JSON body into v.
// Non-2xx statuses are translated via WrapError.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		if wrapped := WrapError(resp.StatusCode); wrapped != nil {
			return fmt.Errorf("graph request failed: status %d: %w", resp.StatusCode, wrapped)
		}
		return fmt.Errorf("graph request failed: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// retryAfterSeconds parses the Retry-After header, 0 when absent.
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
