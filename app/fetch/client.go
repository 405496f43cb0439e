package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// StatusError reports a request that completed at the transport layer but
// returned a non-successful status code.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request returned non-successful status code: %d", e.Code)
}

// Client fetches raw feed text over HTTP. Only a 200 response is treated as
// success; transient network failures are retried with exponential backoff,
// non-200 responses are not.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var body string

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&StatusError{Code: resp.StatusCode, Status: resp.Status})
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		body = string(data)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	if err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx)); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return body, nil
}
