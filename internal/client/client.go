// ABOUTME: HTTP client for the recordgate /auth and /data endpoints
// ABOUTME: The session token is returned to the caller and passed back explicitly

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// ErrNoAPIKey is returned by Authenticate when the client has no API key.
var ErrNoAPIKey = errors.New("no API key configured")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Detail     string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the server rejected the presented credential.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client talks to a recordgate server.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a client for the server at baseURL authenticating with apiKey.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Authenticate exchanges the client's API key for a session token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", nil)
	if err != nil {
		return "", fmt.Errorf("building auth request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding auth response: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("auth response carried no token")
	}
	return resp.Token, nil
}

// Query runs a filter with the given session token and returns the raw JSON
// result: an array of records, or a single record or null when the server
// renders the first match only.
func (c *Client) Query(ctx context.Context, token string, filter map[string]string) (json.RawMessage, error) {
	values := url.Values{}
	for field, value := range filter {
		values.Set(field, value)
	}

	target := c.baseURL + "/data"
	if len(values) > 0 {
		target += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building query request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// QueryRecords runs Query and decodes the result as a list of records. A
// single-record result becomes a list of one; null becomes an empty list.
func (c *Client) QueryRecords(ctx context.Context, token string, filter map[string]string) ([]map[string]any, error) {
	raw, err := c.Query(ctx, token, filter)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "null":
		return []map[string]any{}, nil
	case strings.HasPrefix(trimmed, "{"):
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decoding query response: %w", err)
		}
		return []map[string]any{rec}, nil
	default:
		recs := []map[string]any{}
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, fmt.Errorf("decoding query response: %w", err)
		}
		return recs, nil
	}
}

// do sends req and returns the body of a 2xx response, or an *APIError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(body, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}
	return body, nil
}
