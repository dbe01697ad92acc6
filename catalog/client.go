// Package catalog talks to the Rebrickable catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/andrewpaige1/brickstat-api/apierr"
)

// SetMetadata is the subset of a catalog set record the API uses.
type SetMetadata struct {
	SetNum   string `json:"set_num"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
	ThemeID  *int   `json:"theme_id"`
	NumParts int    `json:"num_parts"`
	ImageURL string `json:"set_img_url"`
}

// Theme is a catalog taxonomy node.
type Theme struct {
	ID       int    `json:"id"`
	ParentID *int   `json:"parent_id"`
	Name     string `json:"name"`
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RPS and Burst bound outbound calls to stay under the upstream rate limit.
	RPS   float64
	Burst int
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client fetches sets and themes. Themes are memoized for the life of the
// process, including misses.
//
// The theme cache has no eviction: it grows by one entry per distinct theme
// id requested.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	log     *zap.Logger

	mu     sync.RWMutex
	themes map[int]*Theme
	group  singleflight.Group
}

func New(opts Options, log *zap.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	base := opts.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	log = log.Named("catalog")
	log.Info("catalog client created",
		zap.String("base_url", base),
		zap.Duration("timeout", hc.Timeout),
		zap.Float64("rps", float64(limit)),
		zap.Int("burst", burst))

	return &Client{
		http:    hc,
		baseURL: base,
		apiKey:  opts.APIKey,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
		themes:  make(map[int]*Theme),
	}
}

// FetchSet looks a set up by catalog number. An unknown set yields an error
// wrapping apierr.ErrNotFound; any other failure is an *apierr.UpstreamError.
// Calls are never retried.
func (c *Client) FetchSet(ctx context.Context, setNum string) (*SetMetadata, error) {
	var s SetMetadata
	if err := c.get(ctx, "sets/"+url.PathEscape(setNum)+"/", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FetchTheme resolves a theme id. A theme the catalog does not know is
// logged and returned as (nil, nil); other failures are returned as errors
// and are not cached.
//
// Concurrent misses for one id share a single upstream call. That call runs
// detached from any one caller's cancellation, bounded by the client timeout;
// each caller stops waiting when its own ctx is done.
func (c *Client) FetchTheme(ctx context.Context, themeID int) (*Theme, error) {
	if t, ok := c.cachedTheme(themeID); ok {
		return t, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.Itoa(themeID), func() (any, error) {
		if t, ok := c.cachedTheme(themeID); ok {
			return t, nil
		}

		var t Theme
		err := c.get(shared, "themes/"+strconv.Itoa(themeID)+"/", &t)
		if errors.Is(err, apierr.ErrNotFound) {
			c.log.Warn("theme not found", zap.Int("theme_id", themeID))
			c.storeTheme(themeID, nil)
			return (*Theme)(nil), nil
		}
		if err != nil {
			return nil, err
		}

		c.storeTheme(themeID, &t)
		return &t, nil
	})

	select {
	case <-ctx.Done():
		return nil, &apierr.UpstreamError{Err: fmt.Errorf("theme %d: %w", themeID, ctx.Err())}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Theme), nil
	}
}

// CachedThemes reports how many theme ids are memoized.
func (c *Client) CachedThemes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.themes)
}

func (c *Client) cachedTheme(id int) (*Theme, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.themes[id]
	return t, ok
}

func (c *Client) storeTheme(id int, t *Theme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.themes[id] = t
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &apierr.UpstreamError{Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &apierr.UpstreamError{Err: err}
	}
	req.Header.Set("Authorization", "key "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("catalog request failed", zap.String("path", path), zap.Error(err))
		return &apierr.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("catalog request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("catalog %s: %w", path, apierr.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("catalog returned an error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return &apierr.UpstreamError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("catalog %s: %s", path, strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apierr.UpstreamError{Err: fmt.Errorf("decode catalog %s: %w", path, err)}
	}
	return nil
}
