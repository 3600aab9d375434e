package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DoGET fetches url. A non-empty etag is sent as If-None-Match, and a 304
// reply comes back as a Response with NotModified set.
func (c *httpClientWrapper) DoGET(ctx context.Context, urlStr string, etag string) (*Response, error) {
	c.logger.Debug("starting GET request",
		"url", urlStr,
		"etag", etag)

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		c.logger.Debug("failed to resolve URL", "url", urlStr, "error", err)
		return nil, fmt.Errorf("failed to resolve URL %q: %w", urlStr, err)
	}

	c.logger.Debug("resolved URL", "url", resolvedURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolvedURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return nil, fmt.Errorf("failed to send GET request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("received response", "status", resp.Status)

	result := &Response{
		StatusCode:  resp.StatusCode,
		ETag:        resp.Header.Get("ETag"),
		ContentType: resp.Header.Get("Content-Type"),
	}

	switch resp.StatusCode {
	case http.StatusNotModified:
		if result.ETag == "" {
			result.ETag = etag
		}
		return result, nil
	case http.StatusOK:
	default:
		c.logger.Debug("unexpected status code",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if result.Body, err = io.ReadAll(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("GET request complete",
		"status", resp.Status,
		"etag", result.ETag,
		"length", len(result.Body))
	return result, nil
}
