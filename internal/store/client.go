package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	tokenHeader     = "token"
	formContentType = "application/x-www-form-urlencoded"
	maxBodySize     = 4 << 20
)

// Version is sent in the User-Agent header.
var Version = "dev"

// TransportError reports a request that failed at the network level or
// returned a status other than 200.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues authenticated requests against the store API.
type Client struct {
	baseURL string
	token   string
	httpCli *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpCli: &http.Client{Timeout: timeout},
	}
}

// Get fetches path relative to the base URL and returns the body of a 200 response.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, "")
}

// Post sends a form-encoded body to path and returns the body of a 200 response.
func (c *Client) Post(ctx context.Context, path, form string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, form)
}

func (c *Client) do(ctx context.Context, method, path, form string) ([]byte, error) {
	endpoint := c.baseURL + strings.TrimLeft(path, "/")

	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader(form)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cs-agent/"+Version)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", formContentType)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}
	return raw, nil
}
