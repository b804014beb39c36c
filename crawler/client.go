// Copyright 2024 The OpenIndex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps a pooled *http.Client with the session user-agent,
// a request-rate limit, and bounded retries on throttling and server
// errors. The wrapped client is also what gets injected into the
// parser for its sub-fetches.
type Client struct {
	httpClient *http.Client
	userAgent  string
	retries    int
	limiter    *rate.Limiter
}

// userAgentTransport stamps the session user-agent on every request,
// including the parser's own sub-fetches.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewClient builds the crawl's HTTP client from the config.
func NewClient(cfg *Config) *Client {
	transport := &http.Transport{
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			Transport: &userAgentTransport{
				base:      transport,
				userAgent: cfg.UserAgent,
			},
		},
		userAgent: cfg.UserAgent,
		retries:   cfg.Retries,
		limiter:   limiter,
	}
}

// HTTPClient exposes the underlying client for injection into the
// parser.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// retryableStatus reports whether a response status is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// FetchHTML GETs a listing page and returns its body as text. Every
// attempt waits on the session rate limit; responses with retryable
// statuses are retried with linear backoff on top of it. The caller's
// context cancels the request, the limiter wait and the backoff sleep.
func (c *Client) FetchHTML(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if retryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("GET %s: status %s", url, resp.Status)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("GET %s: status %s", url, resp.Status)
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		return string(body), nil
	}
	return "", fmt.Errorf("giving up after %d attempts: %w", c.retries+1, lastErr)
}
