// Package caller performs the outbound HTTP actions the triggers fire.
// A call succeeds only on HTTP 200; everything else is an error the caller
// logs and moves past. There is no retry.
package caller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Caller performs a fire-and-forget GET request.
type Caller interface {
	Get(ctx context.Context, url string) error
}

// HTTPCaller performs real HTTP requests.
type HTTPCaller struct {
	client *http.Client
}

// NewHTTP creates an HTTPCaller with the given request timeout.
func NewHTTP(timeout time.Duration) *HTTPCaller {
	return &HTTPCaller{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request against url. Any status other than 200 counts
// as a failure.
func (c *HTTPCaller) Get(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}
