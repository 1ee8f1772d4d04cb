// Package providers implements the remote side of the engine: HTTP fetching
// with per-domain rate limits, a paginated JSON API provider, and an HTML
// listing provider for sources without an API.
package providers

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"sync"
	"time"
)

// FetchConfig tunes HTTP fetching for a domain.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // default 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // default 3
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // default 1.0
	ProxyURL       string  `yaml:"proxy_url,omitempty"`
	AcceptLanguage string  `yaml:"accept_language,omitempty"`
}

// Document is the raw outcome of one fetch.
type Document struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     http.Header
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

var blockedPrefixes = func() []netip.Prefix {
	strs := []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
		"::1/128",
		"fc00::/7",
		"fe80::/10",
	}
	prefixes := make([]netip.Prefix, 0, len(strs))
	for _, s := range strs {
		if p, err := netip.ParsePrefix(s); err == nil {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}()

// safeDialContext blocks connections to private and loopback ranges, so a
// malicious continuation URL in an upstream response cannot reach internal
// services.
func safeDialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		for _, prefix := range blockedPrefixes {
			if prefix.Contains(ip.Unmap()) {
				return nil, fmt.Errorf("refusing to dial blocked address %s", ip)
			}
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}

	return d.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
}

func safeCheckRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("stopped after 10 redirects")
	}
	return nil
}

// HTTPFetcher is a plain Fetcher with no rate limiting or retries, for
// remotes that throttle on their own terms. A nil Client falls back to a
// safe default client.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with SSRF-safe dialing and sane
// transport limits.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           safeDialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
			CheckRedirect: safeCheckRedirect,
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")

	client := f.Client
	if client == nil {
		client = NewHTTPFetcher().Client
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return &Document{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
		FetchedAt:   time.Now(),
		Headers:     resp.Header,
	}, nil
}

// RateLimitedFetcher is a Fetcher with per-domain clients, ticker-based rate
// limiting and retries.
type RateLimitedFetcher struct {
	defaultConfig FetchConfig

	mu       sync.Mutex
	clients  map[string]*http.Client
	limiters map[string]*time.Ticker
}

// NewRateLimitedFetcher creates a fetcher, filling in defaults for any
// unset config fields.
func NewRateLimitedFetcher(config FetchConfig) *RateLimitedFetcher {
	if config.TimeoutSeconds == 0 {
		config.TimeoutSeconds = 30
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RateLimitRPS == 0 {
		config.RateLimitRPS = 1.0
	}
	if config.AcceptLanguage == "" {
		config.AcceptLanguage = "en-US,en;q=0.5"
	}

	return &RateLimitedFetcher{
		defaultConfig: config,
		clients:       make(map[string]*http.Client),
		limiters:      make(map[string]*time.Ticker),
	}
}

func (f *RateLimitedFetcher) forDomain(domain string) (*http.Client, *time.Ticker) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[domain]; ok {
		return client, f.limiters[domain]
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           safeDialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if f.defaultConfig.ProxyURL != "" {
		if proxyURL, err := url.Parse(f.defaultConfig.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{
		Timeout:       time.Duration(f.defaultConfig.TimeoutSeconds) * time.Second,
		Transport:     transport,
		CheckRedirect: safeCheckRedirect,
	}

	interval := time.Duration(float64(time.Second) / f.defaultConfig.RateLimitRPS)
	if interval <= 0 {
		interval = time.Second
	}

	f.clients[domain] = client
	f.limiters[domain] = time.NewTicker(interval)
	return client, f.limiters[domain]
}

// Fetch retrieves a URL, waiting on the domain's rate limiter and retrying
// transient failures with a short backoff.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	client, limiter := f.forDomain(u.Host)

	select {
	case <-limiter.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt <= f.defaultConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		doc, err := f.fetchOnce(ctx, client, rawURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", rawURL, f.defaultConfig.MaxRetries+1, lastErr)
}

func (f *RateLimitedFetcher) fetchOnce(ctx context.Context, client *http.Client, rawURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.defaultConfig.AcceptLanguage)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return &Document{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
		FetchedAt:   time.Now(),
		Headers:     resp.Header,
	}, nil
}
