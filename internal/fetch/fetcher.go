package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher retrieves remote book sources over HTTP. It honors robots.txt,
// rate-limits per host, and caches successful responses.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *RobotsChecker
	limiter    *HostLimiter
	cache      *ResponseCache
}

// Options configures a Fetcher.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	MaxBytes          int64
	RequestsPerSecond float64
	Burst             int
	CacheTTL          time.Duration
}

// DefaultOptions returns conservative fetch settings.
func DefaultOptions() Options {
	return Options{
		Timeout:           30 * time.Second,
		UserAgent:         "folio/1.0 (+https://github.com/davidriles/folio)",
		MaxBytes:          20 << 20,
		RequestsPerSecond: 1,
		Burst:             3,
		CacheTTL:          15 * time.Minute,
	}
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 20 << 20
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		robots:    NewRobotsChecker(opts.UserAgent, opts.Timeout),
		limiter:   NewHostLimiter(opts.RequestsPerSecond, opts.Burst),
		cache:     NewResponseCache(opts.CacheTTL),
	}
}

// Result contains the fetched body and metadata.
type Result struct {
	Body        []byte
	ContentType string
	FinalURL    string
	Title       string
	FromCache   bool
}

// ErrDisallowed is returned when robots.txt forbids fetching a URL.
var ErrDisallowed = fmt.Errorf("fetch disallowed by robots.txt")

// Fetch retrieves the given URL, consulting the cache first.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if cached, ok := f.cache.Get(rawURL); ok {
		res := cached
		res.FromCache = true
		return &res, nil
	}

	allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrDisallowed
	}

	if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/epub+zip,application/pdf;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	result := Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
		Title:       titleFromURL(finalURL),
	}
	f.cache.Set(rawURL, result)

	return &result, nil
}

// titleFromURL derives a readable title guess from the URL path.
func titleFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	// De-slugify.
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return last
}
