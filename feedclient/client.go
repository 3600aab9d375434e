// Package feedclient reads schedules from a feed served by package server.
package feedclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cyp0633/libcaldate/date"
	"github.com/cyp0633/libcaldate/internal/httpclient"
	"github.com/cyp0633/libcaldate/recurrence"
	"github.com/cyp0633/libcaldate/storage"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// ErrNotModified is returned by Get when the schedule still has the given ETag
var ErrNotModified = errors.New("schedule not modified")

// Client fetches a schedule feed
type Client struct {
	httpClient httpclient.HttpClientWrapper
	logger     *slog.Logger
}

type config struct {
	client   *http.Client
	logger   *slog.Logger
	username string
	password string
}

// Option configures a Client
type Option func(*config)

// WithHTTPClient sets the underlying http.Client
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.client = client }
}

// WithLogger sets the logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBasicAuth sends credentials with every request
func WithBasicAuth(username, password string) Option {
	return func(c *config) {
		c.username = username
		c.password = password
	}
}

// New creates a client for the feed at feedURL, e.g. http://host/feed/
func New(feedURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(feedURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid feed URL %q", feedURL)
	}
	if base.Path == "" || base.Path[len(base.Path)-1] != '/' {
		base.Path += "/"
	}

	cfg := &config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(cfg)
	}

	client := cfg.client
	if cfg.username != "" {
		var inner http.RoundTripper
		if client != nil {
			inner = client.Transport
		}
		client = &http.Client{Transport: httpclient.NewBasicAuthTransport(cfg.username, cfg.password, inner, cfg.logger)}
	}

	wrapper, err := httpclient.NewHttpClientWrapper(client, *base, cfg.logger)
	if err != nil {
		return nil, err
	}
	return &Client{httpClient: wrapper, logger: cfg.logger}, nil
}

// Feed fetches every schedule, or only those occurring in tr when it is
// not nil.
func (c *Client) Feed(ctx context.Context, tr *storage.TimeRange) ([]*storage.Schedule, error) {
	target := "./"
	if tr != nil {
		q := url.Values{}
		q.Set("start", tr.Start.String())
		q.Set("end", tr.End.String())
		target += "?" + q.Encode()
	}

	resp, err := c.httpClient.DoGET(ctx, target, "")
	if err != nil {
		return nil, c.wrap(err)
	}

	cal, err := ical.NewDecoder(bytes.NewReader(resp.Body)).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	events := cal.Events()
	schedules := make([]*storage.Schedule, 0, len(events))
	for i := range events {
		sc, err := storage.EventToSchedule(&events[i])
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sc)
	}
	c.logger.Debug("fetched feed", "count", len(schedules))
	return schedules, nil
}

// Get fetches one schedule. When etag is not empty and the server still has
// it, ErrNotModified is returned.
func (c *Client) Get(ctx context.Context, id, etag string) (*storage.Schedule, error) {
	resp, err := c.httpClient.DoGET(ctx, url.PathEscape(id)+".ics", etag)
	if err != nil {
		return nil, c.wrap(err)
	}
	if resp.NotModified() {
		return nil, ErrNotModified
	}

	sc, err := storage.ICSToSchedule(string(resp.Body))
	if err != nil {
		return nil, err
	}
	sc.ETag = resp.ETag
	return sc, nil
}

// GetXCal fetches one schedule through its xCal representation
func (c *Client) GetXCal(ctx context.Context, id string) (date.SimpleDate, mo.Option[recurrence.Repetition], error) {
	resp, err := c.httpClient.DoGET(ctx, url.PathEscape(id)+".xml", "")
	if err != nil {
		return date.SimpleDate{}, mo.None[recurrence.Repetition](), c.wrap(err)
	}
	return recurrence.UnmarshalXCal(string(resp.Body))
}

// wrap turns a 404 into a storage not_found error
func (c *Client) wrap(err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return &storage.Error{Type: storage.ErrNotFound, Message: "schedule not found", Err: err}
	}
	return err
}
