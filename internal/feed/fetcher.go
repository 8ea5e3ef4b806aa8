package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pders01/justtype/internal/config"
)

// ErrRateLimited is returned when a server asks us to back off.
var ErrRateLimited = errors.New("rate limited")

type Fetcher struct {
	client            *http.Client
	userAgent         string
	limiter           *rate.Limiter
	defaultRetryAfter time.Duration
	ignoreCache       bool
}

func NewFetcher(cfg *config.Config) *Fetcher {
	limit := rate.Inf
	if cfg.Feeds.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Feeds.RequestsPerSecond)
	}
	retryAfter := cfg.Feeds.DefaultRetryAfter
	if retryAfter <= 0 {
		retryAfter = 15 * time.Minute
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Feeds.HTTPTimeout,
		},
		userAgent:         cfg.Feeds.UserAgent,
		limiter:           rate.NewLimiter(limit, 1),
		defaultRetryAfter: retryAfter,
	}
}

// SetIgnoreCache makes Fetch skip the conditional request headers.
func (f *Fetcher) SetIgnoreCache(ignore bool) {
	f.ignoreCache = ignore
}

// Fetch requests src. It reports updated=false with a nil response when the
// server answered 304 Not Modified.
func (f *Fetcher) Fetch(ctx context.Context, src *Source) (*http.Response, bool, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	if !f.ignoreCache {
		if src.ETag != "" {
			req.Header.Set("If-None-Match", src.ETag)
		}
		if src.LastModified != "" {
			req.Header.Set("If-Modified-Since", src.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching feed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotModified:
		resp.Body.Close()
		return nil, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		wait := f.RetryAfter(resp)
		resp.Body.Close()
		src.RetryAt = time.Now().Add(wait)
		return nil, false, fmt.Errorf("%w: retry after %s", ErrRateLimited, wait)
	case resp.StatusCode >= 400:
		resp.Body.Close()
		return nil, false, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return resp, true, nil
}

// UpdateMetadata records the validators a response carried.
func (f *Fetcher) UpdateMetadata(src *Source, resp *http.Response) {
	if etag := resp.Header.Get("ETag"); etag != "" {
		src.ETag = etag
	}

	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		src.LastModified = lastMod
	}

	src.LastFetched = time.Now()
}

// RetryAfter reads the Retry-After header as seconds or an HTTP date.
func (f *Fetcher) RetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return f.defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return f.defaultRetryAfter
}
