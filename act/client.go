// Package act is a client for the W3ACT curation tool's REST exports.
// W3ACT authenticates with a form login and a session cookie rather than
// tokens, so the client captures the cookie from the login redirect and
// replays it on every export request.
package act

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ukwa-discovery/title-export/config"
	"github.com/ukwa-discovery/title-export/models"
)

// Client talks to a single W3ACT instance.
type Client struct {
	baseURL    string
	email      string
	password   string
	frequency  string
	userAgent  string
	httpClient *http.Client

	cookie string
}

// NewClient builds an unauthenticated client from cfg. Call Login before
// fetching exports.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.ActBaseURL == "" {
		return nil, fmt.Errorf("w3act base URL is required")
	}
	if cfg.ActEmail == "" || cfg.ActPassword == "" {
		return nil, fmt.Errorf("w3act credentials are required")
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		// The login endpoint answers with a redirect carrying the
		// session cookie; we need that first response, not the target.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.ActBaseURL, "/"),
		email:      cfg.ActEmail,
		password:   cfg.ActPassword,
		frequency:  cfg.ExportFrequency,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}, nil
}

// Login authenticates and stores the session cookie.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{}
	form.Set("email", c.email)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrLoginFailed{Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	cookie := resp.Header.Get("Set-Cookie")
	if cookie == "" {
		return ErrLoginFailed{Err: fmt.Errorf("no session cookie in response (status %d)", resp.StatusCode)}
	}
	c.cookie = cookie

	slog.Debug("w3act login succeeded", slog.String("base_url", c.baseURL))
	return nil
}

// Targets fetches the target export for the configured frequency.
func (c *Client) Targets(ctx context.Context) ([]*models.Target, error) {
	return c.LDExport(ctx, c.frequency)
}

// LDExport fetches legal-deposit targets for a crawl frequency
// ("daily", "weekly", ..., or "all").
func (c *Client) LDExport(ctx context.Context, frequency string) ([]*models.Target, error) {
	var targets []*models.Target
	if err := c.getJSON(ctx, "/ld/"+frequency, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// ByExport fetches by-permission targets for a crawl frequency.
func (c *Client) ByExport(ctx context.Context, frequency string) ([]*models.Target, error) {
	var targets []*models.Target
	if err := c.getJSON(ctx, "/by/"+frequency, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// WatchedTargets returns the targets flagged for document harvesting.
func (c *Client) WatchedTargets(ctx context.Context) ([]*models.Target, error) {
	all, err := c.LDExport(ctx, "all")
	if err != nil {
		return nil, err
	}
	watched := make([]*models.Target, 0, len(all))
	for _, target := range all {
		if target != nil && target.Watched {
			watched = append(watched, target)
		}
	}
	return watched, nil
}

// Collections fetches the collection export.
func (c *Client) Collections(ctx context.Context) ([]*models.Collection, error) {
	var collections []*models.Collection
	if err := c.getJSON(ctx, "/api/collections", &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// Subjects fetches the subject export.
func (c *Client) Subjects(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if err := c.getJSON(ctx, "/api/subjects", &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return ErrStatus{Path: path, Code: resp.StatusCode}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return ErrMalformedExport{Path: path, Err: err}
	}

	slog.Debug("w3act export fetched",
		slog.String("path", path),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}
