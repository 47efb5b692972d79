// Package jira is a small client for the Jira Cloud platform and Agile REST APIs.
package jira

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

	"github.com/rs/zerolog"
)

// DefaultStoryPointFields are tried in order when reading an issue's estimate.
var DefaultStoryPointFields = []string{"customfield_20826", "customfield_10016"}

const (
	defaultTimeout = 30 * time.Second
	pageSize       = 50
	issuePageSize  = 100
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira api status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from Jira.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Options configure a Client.
type Options struct {
	Host             string // "acme.atlassian.net" or a full base URL
	Email            string
	APIToken         string
	StoryPointFields []string
	Timeout          time.Duration
	HTTPClient       *http.Client
	Logger           zerolog.Logger
}

// Client talks to a single Jira site using basic auth.
type Client struct {
	baseURL  string
	email    string
	token    string
	spFields []string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient builds a client for the given site.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	fields := opts.StoryPointFields
	if len(fields) == 0 {
		fields = DefaultStoryPointFields
	}

	return &Client{
		baseURL:  BaseURL(opts.Host),
		email:    opts.Email,
		token:    opts.APIToken,
		spFields: fields,
		http:     httpClient,
		log:      opts.Logger.With().Str("component", "jira").Logger(),
	}
}

// BaseURL turns a bare host into an https URL. Full URLs are kept as given.
func BaseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}

func (c *Client) apiURL(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// getJSON performs an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if c.baseURL == "" {
		return errors.New("jira: empty base URL")
	}

	u := c.apiURL(path, q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("jira request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("jira request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
