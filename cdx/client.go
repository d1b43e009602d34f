// Package cdx looks up first-capture dates in a web-archive capture
// index via the OpenWayback urlquery XML interface.
package cdx

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ukwa-discovery/title-export/config"
)

// Client queries a single CDX server. A small LRU memoizes positive
// answers so repeated lookups of the same canonical URL within a run do
// not hit the index again.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      *lru.Cache[string, string]
}

// NewClient builds a capture-index client from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.CdxBaseURL == "" {
		return nil, fmt.Errorf("cdx base URL is required")
	}

	cache, err := lru.New[string, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
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
	}

	return &Client{
		baseURL:    cfg.CdxBaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		cache:      cache,
	}, nil
}

// FirstCapture returns the 14-digit YYYYMMDDHHMMSS timestamp of the
// first known capture of target, or "" if the index has no entry. An
// error means the index could not be consulted at all; callers decide
// whether that is fatal.
func (c *Client) FirstCapture(ctx context.Context, target string) (string, error) {
	if cached, ok := c.cache.Get(target); ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("q", "type:urlquery url:"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build capture index request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("query capture index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The index answers 404 for unknown URLs.
		slog.Debug("capture index miss",
			slog.String("url", target),
			slog.Int("status", resp.StatusCode),
		)
		return "", nil
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse capture index response: %w", err)
	}

	node := xmlquery.FindOne(doc, "//capturedate")
	if node == nil {
		return "", nil
	}
	captured := strings.TrimSpace(node.InnerText())
	if captured == "" {
		return "", nil
	}

	c.cache.Add(target, captured)
	return captured, nil
}
