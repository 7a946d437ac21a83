// Package neynar is a small read-only client for the Farcaster social-graph API.
package neynar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultBaseURL = "https://api.neynar.com/v1/farcaster"
	apiKeyHeader   = "api_key"
)

var (
	ErrMissingAPIKey = errors.New("neynar: api key is required")
	ErrEmptyResult   = errors.New("neynar: empty result")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("neynar: %s returned status %d", e.Endpoint, e.Code)
}

type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	logger  *slog.Logger

	timeout    time.Duration
	hasTimeout bool
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero means none. A client passed
// through WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.hasTimeout = true
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("neynar: parse base url: %w", err)
	}

	c := &Client{
		baseURL: u,
		apiKey:  apiKey,
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasTimeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}

	return c, nil
}

// Followers returns the first page of accounts following fid.
func (c *Client) Followers(ctx context.Context, fid int64, limit int) ([]Follow, error) {
	return c.follows(ctx, "/followers", fid, limit)
}

// Following returns the first page of accounts fid follows.
func (c *Client) Following(ctx context.Context, fid int64, limit int) ([]Follow, error) {
	return c.follows(ctx, "/following", fid, limit)
}

// User resolves a profile by fid.
func (c *Client) User(ctx context.Context, fid int64) (*User, error) {
	query := url.Values{}
	query.Set("fid", strconv.FormatInt(fid, 10))

	req, err := c.newRequest(ctx, "/user", query)
	if err != nil {
		return nil, err
	}

	resp, err := do[UserResponse](c, req)
	if err != nil {
		return nil, err
	}
	if resp.Result == nil || resp.Result.User == nil {
		return nil, fmt.Errorf("user %d: %w", fid, ErrEmptyResult)
	}

	u := resp.Result.User
	if u.FID == 0 {
		u.FID = fid
	}
	return u, nil
}

func (c *Client) follows(ctx context.Context, endpoint string, fid int64, limit int) ([]Follow, error) {
	query := url.Values{}
	query.Set("fid", strconv.FormatInt(fid, 10))
	query.Set("limit", strconv.Itoa(limit))

	req, err := c.newRequest(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	follows, err := do[[]Follow](c, req)
	if err != nil {
		return nil, err
	}
	return *follows, nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, query url.Values) (*http.Request, error) {
	reqURL := c.baseURL.JoinPath(endpoint)
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("neynar: build request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("content-type", "application/json")

	return req, nil
}

func do[T any](c *Client, req *http.Request) (*T, error) {
	endpoint := req.URL.Path

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("neynar: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("neynar: read %s body: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("neynar request failed",
			"endpoint", endpoint,
			"status", resp.StatusCode)
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(body)}
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("neynar: decode %s: %w", endpoint, err)
	}

	return &result, nil
}
