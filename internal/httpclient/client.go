package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// HttpClientWrapper wraps http.Client with the conditional GET used by feed
// subscribers
type HttpClientWrapper interface {
	DoGET(ctx context.Context, url string, etag string) (*Response, error)
}

// Response is a successful or not-modified reply
type Response struct {
	StatusCode  int
	ETag        string
	ContentType string
	Body        []byte
}

// NotModified reports whether the server answered 304
func (r *Response) NotModified() bool {
	return r.StatusCode == http.StatusNotModified
}

// StatusError is returned for replies other than 200 and 304
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d (%s)", e.StatusCode, e.Status)
}

type httpClientWrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// resolveURL resolves a URL string against the base URL
func (c *httpClientWrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", urlStr, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// NewHttpClientWrapper creates a new client wrapper with logging
func NewHttpClientWrapper(client *http.Client, baseURL url.URL, logger *slog.Logger) (HttpClientWrapper, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClientWrapper{client: client, baseURL: baseURL, logger: logger}, nil
}
