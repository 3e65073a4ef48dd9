package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/colthorp/garmin-mcp-go/internal/core"
)

// Client is the HTTP transport for the Garmin Connect API, authenticated with
// an OAuth2 bearer token.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	logger      *slog.Logger
	sleep       func(context.Context, time.Duration) error
}

var _ Transport = (*Client)(nil)

// NewClient creates a transport for the given access token.
func NewClient(cfg core.UpstreamConfig, accessToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		accessToken: accessToken,
		baseURL:     cfg.APIBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: retries,
		logger:     logger.With(slog.String("component", "api")),
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do performs a request and returns the response body.
// Retries on HTTP 5xx or 429 responses with exponential back-off.
func (c *Client) Do(ctx context.Context, method, endpoint string, params map[string]string, body any) ([]byte, error) {
	urlStr := c.baseURL + endpoint
	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		urlStr = fmt.Sprintf("%s?%s", urlStr, q.Encode())
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	c.logger.Debug("request", slog.String("method", method), slog.String("url", urlStr))

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", core.UserAgent)
		req.Header.Set("DI-Backend", "connectapi.garmin.com")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				wait := backoff(attempt)
				c.logger.Debug("retrying after connection error", slog.Int("attempt", attempt), slog.Duration("wait", wait))
				if err := c.sleep(ctx, wait); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: string(data)}
			if attempt < c.maxRetries {
				wait := backoff(attempt)
				if resp.StatusCode == http.StatusTooManyRequests {
					if ra := resp.Header.Get("Retry-After"); ra != "" {
						if secs, err := strconv.Atoi(ra); err == nil {
							wait = time.Duration(secs) * time.Second
						}
					}
				}
				c.logger.Debug("retrying", slog.Int("attempt", attempt), slog.Int("status", resp.StatusCode), slog.Duration("wait", wait))
				if err := c.sleep(ctx, wait); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		if resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(data)}
		}

		c.logger.Debug("response", slog.Int("status", resp.StatusCode), slog.Int("bytes", len(data)))
		if resp.StatusCode == http.StatusNoContent || len(data) == 0 {
			return nil, nil
		}
		return data, nil
	}

	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}
