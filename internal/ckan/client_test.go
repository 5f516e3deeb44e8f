package ckan

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckan-publisher/internal/common/logger"
)

const testAPIKey = "secret-key"

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

type cannedResponse struct {
	status int
	body   string
}

// fakeDoer replays canned responses in order and records every request.
type fakeDoer struct {
	mu        sync.Mutex
	responses []cannedResponse
	requests  []capturedRequest
	err       error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(req.Body)
	f.requests = append(f.requests, capturedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   string(body),
	})
	if f.err != nil {
		return nil, f.err
	}

	idx := len(f.requests) - 1
	if idx >= len(f.responses) {
		return nil, errors.New("no canned response left")
	}
	r := f.responses[idx]
	return &http.Response{
		StatusCode: r.status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

func ok(body string) cannedResponse {
	return cannedResponse{status: http.StatusOK, body: body}
}

func fixedClock() time.Time {
	return time.Date(2024, time.May, 6, 15, 4, 5, 0, time.UTC)
}

func newTestClient(doer *fakeDoer) *Client {
	return New("https://ckan.example.org", logger.Nop(), WithDoer(doer), WithClock(fixedClock))
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	c := New("https://ckan.example.org/", nil)
	assert.Equal(t, "https://ckan.example.org", c.BaseURL())
}

func TestWithTimeoutAppliesToDefaultClient(t *testing.T) {
	c := New("https://ckan.example.org", nil, WithTimeout(5*time.Second))

	hc, ok := c.http.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, hc.Timeout)

	hc, ok = New("https://ckan.example.org", nil).http.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, defaultHTTPTimeout, hc.Timeout)
}

func TestWithTimeoutLeavesInjectedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := New("https://ckan.example.org", nil, WithTimeout(5*time.Second), WithDoer(shared))
	assert.Same(t, shared, c.http)
	assert.Equal(t, time.Minute, shared.Timeout)

	c = New("https://ckan.example.org", nil, WithDoer(shared), WithTimeout(5*time.Second))
	assert.Same(t, shared, c.http)
	assert.Equal(t, time.Minute, shared.Timeout)
}

func TestRequestsCarryRawAPIKeyAndJSONContentType(t *testing.T) {
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = capturedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: string(body)}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "result": {"id": "res-1", "package_id": "pkg-1"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.Nop(), WithTimeout(5*time.Second))
	id, err := c.ResolveDatasetIDForResource(context.Background(), testAPIKey, "res-1")
	require.NoError(t, err)

	assert.Equal(t, "pkg-1", id)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/action/resource_show", got.Path)
	assert.Equal(t, testAPIKey, got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"id": "res-1"}`, got.Body)
}

func TestCKANFailureStatusStillUsesEnvelope(t *testing.T) {
	doer := &fakeDoer{responses: []cannedResponse{{
		status: http.StatusForbidden,
		body:   `{"success": false, "error": {"__type": "Authorization Error", "message": "Access denied"}}`,
	}}}

	_, err := newTestClient(doer).ResolveDatasetIDForResource(context.Background(), testAPIKey, "res-1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Access denied", apiErr.Message)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestMalformedResponseIsAPIError(t *testing.T) {
	cases := map[string]string{
		"html":           `<html>Bad Gateway</html>`,
		"empty":          ``,
		"success no key": `{"success": true}`,
		"null result":    `{"success": true, "result": null}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			doer := &fakeDoer{responses: []cannedResponse{{status: http.StatusBadGateway, body: body}}}

			_, err := newTestClient(doer).ResolveDatasetIDForResource(context.Background(), testAPIKey, "res-1")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "ResolveDatasetIDForResource", apiErr.Operation)
		})
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	doer := &fakeDoer{err: boom}

	_, err := newTestClient(doer).ResolveDatasetIDForResource(context.Background(), testAPIKey, "res-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAPIErrorFallbackMessage(t *testing.T) {
	err := &APIError{Operation: "UpdateResource"}
	assert.Equal(t, "UpdateResource: Undefined error.", err.Error())

	inner := errors.New("eof")
	err = &APIError{Operation: "UpdateResource", Err: inner}
	assert.Equal(t, "UpdateResource: eof", err.Error())
	assert.ErrorIs(t, err, inner)
}

func decodeBody(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	return m
}
