// Package httpjson provides thin JSON helpers over net/http for calling
// ginkit-style APIs.
package httpjson

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ginkit/internal/codec"
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 4 << 10

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client sends JSON requests relative to a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header
	codec      codec.Codec
}

// Option configures a Client.
type Option func(*Client)

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// WithBearerToken sets the Authorization header.
func WithBearerToken(token string) Option {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithCodec replaces the JSON codec.
func WithCodec(cd codec.Codec) Option {
	return func(c *Client) { c.codec = cd }
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		header:     make(http.Header),
		codec:      codec.JSON,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetString returns the response body of a GET request as text.
func (c *Client) GetString(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(data), nil
}

// Get sends a GET request and decodes the response into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return send[T](ctx, c, http.MethodGet, path, nil)
}

// Post encodes body, sends it with POST and decodes the response into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return send[T](ctx, c, http.MethodPost, path, body)
}

// Put encodes body, sends it with PUT and decodes the response into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return send[T](ctx, c, http.MethodPut, path, body)
}

// Delete sends a DELETE request and discards the response body.
func Delete(ctx context.Context, c *Client, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// PostForm sends form as application/x-www-form-urlencoded and decodes
// the response into T.
func PostForm[T any](ctx context.Context, c *Client, path string, form url.Values) (T, error) {
	var zero T
	resp, err := c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return zero, err
	}
	return Decode[T](c, resp)
}

// Decode reads and closes resp.Body, decoding it into T.
func Decode[T any](c *Client, resp *http.Response) (T, error) {
	defer func() { _ = resp.Body.Close() }()
	out, err := codec.Decode[T](c.codec, resp.Body)
	if err != nil {
		return out, fmt.Errorf("decoding %s response: %w", resp.Request.URL.Path, err)
	}
	return out, nil
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	var reader io.Reader
	contentType := ""
	if body != nil {
		data, err := c.codec.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = c.codec.ContentType()
	}

	resp, err := c.do(ctx, method, path, reader, contentType)
	if err != nil {
		return zero, err
	}
	return Decode[T](c, resp)
}

// do sends the request and converts non-2xx responses into *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", c.codec.ContentType())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	return resp, nil
}
