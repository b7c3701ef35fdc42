// Package client calls a running craftcanvas server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

// MalformedResponseError reports a response whose content type or shape is
// not what the endpoint promises.
type MalformedResponseError struct {
	StatusCode  int
	ContentType string
	Err         error
}

func (e *MalformedResponseError) Error() string {
	ct := e.ContentType
	if ct == "" {
		ct = "none"
	}
	return fmt.Sprintf("malformed response (HTTP %d, content type %s): %v", e.StatusCode, ct, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// HTTPError is a well-formed error response from the server.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client talks to the /generate endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the server at baseURL. A full run makes eight
// model calls, so the default timeout is generous.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateResponse struct {
	HTML  *string `json:"html"`
	CSS   *string `json:"css"`
	JS    *string `json:"js"`
	Error string  `json:"error"`
}

// Generate posts prompt and returns the artifact triple.
func (c *Client) Generate(ctx context.Context, prompt string) (*orchestrator.Artifacts, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, fmt.Errorf("client: marshal request: %w", err)
	}
	var out generateResponse
	if err := c.do(ctx, http.MethodPost, "/generate", body, &out); err != nil {
		return nil, err
	}
	if out.HTML == nil || out.CSS == nil || out.JS == nil {
		return nil, &MalformedResponseError{
			StatusCode:  http.StatusOK,
			ContentType: "application/json",
			Err:         fmt.Errorf("response lacks html, css or js"),
		}
	}
	return &orchestrator.Artifacts{HTML: *out.HTML, CSS: *out.CSS, JS: *out.JS}, nil
}

// Status returns the liveness message from GET /generate.
func (c *Client) Status(ctx context.Context) (string, error) {
	var out struct {
		Message *string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/generate", nil, &out); err != nil {
		return "", err
	}
	if out.Message == nil {
		return "", &MalformedResponseError{StatusCode: http.StatusOK, ContentType: "application/json", Err: fmt.Errorf("response lacks message")}
	}
	return *out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, result any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if mt, _, _ := mime.ParseMediaType(contentType); mt != "application/json" {
		return &MalformedResponseError{
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			Err:         fmt.Errorf("expected application/json, body starts %q", snippet(respBody)),
		}
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &e); err != nil || e.Error == "" {
			return &MalformedResponseError{StatusCode: resp.StatusCode, ContentType: contentType, Err: fmt.Errorf("error response without message: %w", errOrEmpty(err))}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &MalformedResponseError{StatusCode: resp.StatusCode, ContentType: contentType, Err: err}
	}
	return nil
}

func errOrEmpty(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("empty error field")
}

func snippet(b []byte) string {
	const n = 64
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
