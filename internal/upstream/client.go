// Package upstream handles outbound calls to the third-party API: a small
// HTTP client, an ordered-fallback driver, and the user lookup built on it.
package upstream

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gamebridge/kick-relay/internal/logger"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Response is a fully read upstream response
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Success reports whether the status code is 2xx.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the response's Content-Type header.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType())
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Client executes upstream requests and returns fully read responses.
// No retries: a failed call is the caller's problem.
type Client struct {
	client *http.Client
}

// NewClient creates a new upstream client with default configuration
func NewClient() *Client {
	return &Client{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetTimeout sets the timeout for the HTTP client
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Do executes the request and reads the whole body
func (c *Client) Do(req *http.Request) (*Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Header:     resp.Header,
	}, nil
}
