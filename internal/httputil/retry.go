// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP transport shared by every
// stage that talks to an external source.
package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

// RetryBaseDelay is the linear backoff unit used when the config leaves
// RetryDelay unset. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const defaultMaxAttempts = 3

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Code, e.URL)
}

// Client performs GET requests with bounded retry. A network error, a
// non-2xx status or an unreadable body triggers another attempt; the delay
// before attempt i+1 is i × the base delay. After MaxAttempts the error of
// the final attempt is returned.
type Client struct {
	HTTP        *http.Client
	UserAgent   string
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *slog.Logger
}

// NewClient builds a Client from the shared HTTP settings.
func NewClient(cfg types.HTTPConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		HTTP:        &http.Client{Timeout: cfg.Timeout},
		UserAgent:   cfg.UserAgent,
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryDelay,
		Logger:      logger,
	}
}

// GetText fetches url and returns the body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	var body string
	err := c.do(ctx, url, func(r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		body = string(data)
		return nil
	})
	return body, err
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return c.do(ctx, url, func(r io.Reader) error {
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("decoding JSON: %w", err)
		}
		return nil
	})
}

func (c *Client) do(ctx context.Context, url string, read func(io.Reader) error) error {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := c.BaseDelay
	if base <= 0 {
		base = RetryBaseDelay
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = c.once(ctx, url, read)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		backoff := time.Duration(attempt) * base
		c.logger().Debug("request failed, retrying",
			"url", url, "attempt", attempt, "max_attempts", attempts, "backoff", backoff, "error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) once(ctx context.Context, url string, read func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, URL: url}
	}
	return read(resp.Body)
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Fetcher is the read surface stages depend on. *Client implements it.
type Fetcher interface {
	GetText(ctx context.Context, url string) (string, error)
	GetJSON(ctx context.Context, url string, v any) error
}
