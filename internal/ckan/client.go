package ckan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ckan-publisher/internal/common/logger"
	"github.com/ckan-publisher/pkg/ckan/models"
)

const (
	defaultHTTPTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an unparseable response ends up in an error.
	maxErrorBody = 512
)

// Doer executes HTTP requests. *http.Client satisfies it; tests swap in fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the action API of a single CKAN instance. The API key is
// passed per call, so one Client can serve several publishers.
type Client struct {
	baseURL string
	http    Doer
	logger  logger.Logger
	now     func() time.Time
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.http = d
	}
}

// WithTimeout sets the timeout of the default HTTP client.
// It has no effect when combined with WithDoer.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClock overrides the source of "today" for date fields.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a client for the CKAN instance at baseURL, e.g.
// "https://data.example.org". A trailing slash is dropped.
func New(baseURL string, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Nop()
	}
	defaultClient := &http.Client{
		Timeout: defaultHTTPTimeout,
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    defaultClient,
		logger:  log.With("component", "ckan"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	// A caller-supplied Doer keeps its own settings.
	if c.http == Doer(defaultClient) && c.timeout > 0 {
		defaultClient.Timeout = c.timeout
	}
	return c
}

// BaseURL returns the instance URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) today() models.Date {
	return models.NewDate(c.now())
}

// call POSTs payload to the action at path and returns the raw "result" of a
// successful envelope, which may be empty or null. Every failure, including
// transport errors and malformed bodies, comes back as *APIError. Callers
// that read the result check its presence themselves.
func (c *Client) call(ctx context.Context, op, apiKey, path string, payload interface{}) (json.RawMessage, error) {
	url := c.baseURL + path

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &APIError{Operation: op, Message: fmt.Sprintf("%s: encoding request: %v", op, err), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Operation: op, Message: fmt.Sprintf("%s: creating request: %v", op, err), Err: err}
	}
	req.Header.Set("Content-type", "application/json")
	req.Header.Set("Authorization", apiKey)

	c.logger.Debug("Calling CKAN action", "operation", op, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", "operation", op, "url", url, "error", err)
		return nil, &APIError{Operation: op, Message: fmt.Sprintf("%s: executing request to %s: %v", op, url, err), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s: reading response: %v", op, err), Err: err}
	}

	// CKAN reports action failures as non-2xx statuses with a regular
	// envelope, so the status code alone decides nothing.
	var envelope models.Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.logger.Error("API returned a malformed response",
			"operation", op,
			"status_code", resp.StatusCode,
			"url", url,
			"response_body", truncate(raw))
		return nil, &APIError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: malformed response (status %d): %s", op, resp.StatusCode, truncate(raw)),
			Err:        err,
		}
	}

	if !envelope.Success {
		msg := ""
		if envelope.Error != nil {
			msg = envelope.Error.Message
		}
		if msg == "" {
			msg = op + ": Undefined error."
		}
		c.logger.Error("API returned success=false",
			"operation", op,
			"status_code", resp.StatusCode,
			"url", url,
			"message", msg)
		return nil, &APIError{Operation: op, StatusCode: resp.StatusCode, Message: msg}
	}

	return envelope.Result, nil
}

// hasResult reports whether a successful action returned a usable result.
func hasResult(result json.RawMessage) bool {
	return len(result) > 0 && string(result) != "null"
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
