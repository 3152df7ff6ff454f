package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"skaladash/internal/envelope"

	"github.com/google/uuid"
)

const maxResponseBytes = 4 << 20

// Client talks to the trading backend. Every call returns exactly one
// envelope.Outcome; transport errors never reach the caller.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     *slog.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTP.Timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// NewClient builds a client whose requests carry the cookies held by jar.
// Pass the session store here so the credential follows login and logout.
func NewClient(baseURL string, jar http.CookieJar, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string) envelope.Outcome {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) envelope.Outcome {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Delete(ctx context.Context, path string, body any) envelope.Outcome {
	return c.Do(ctx, http.MethodDelete, path, body)
}

// Do issues one request. There is no retry here: one call, one request.
func (c *Client) Do(ctx context.Context, method, path string, in any) envelope.Outcome {
	requestID := uuid.NewString()
	start := time.Now()
	status, raw, err := c.roundTrip(ctx, method, path, requestID, in)
	if err != nil {
		c.log.Warn("backend request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"duration", time.Since(start),
			"err", err,
		)
		return envelope.TransportFailure("")
	}
	c.log.Debug("backend request",
		"method", method,
		"path", path,
		"request_id", requestID,
		"status", status,
		"duration", time.Since(start),
	)
	out := envelope.Decode(raw)
	if status >= 300 && out.Kind == envelope.KindTransport {
		c.log.Warn("backend returned non-envelope error",
			"method", method,
			"path", path,
			"request_id", requestID,
			"status", status,
			"body", snippet(raw),
		)
	}
	return out
}

func (c *Client) roundTrip(ctx context.Context, method, path, requestID string, in any) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	if len(raw) == 0 && resp.StatusCode >= 300 {
		return resp.StatusCode, nil, errors.New(resp.Status)
	}
	return resp.StatusCode, raw, nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}
