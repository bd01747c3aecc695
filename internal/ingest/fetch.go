package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/tagline/internal/logging"
	"github.com/ppiankov/tagline/internal/model"
)

var (
	// ErrDisallowed is returned when robots.txt forbids fetching a URL
	ErrDisallowed = errors.New("fetch disallowed by robots.txt")
	// ErrTooLarge is returned when a response exceeds the size limit
	ErrTooLarge = errors.New("response exceeds size limit")
)

const maxAttempts = 3

// fetchSleep is swapped out in tests
var fetchSleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsRemote reports whether path names an http(s) resource
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Fetcher downloads data files
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	robots    *RobotsChecker // nil when robots.txt is ignored
	log       *zap.Logger
}

// NewFetcher creates a fetcher from the fetch config section
func NewFetcher(cfg model.FetchConfig, log *zap.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: proxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		log:       logging.OrNop(log),
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(client, cfg.UserAgent)
	}
	return f
}

// Fetch downloads rawURL, retrying transient failures
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.robots != nil && !f.robots.Allowed(ctx, rawURL) {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, retry, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || attempt == maxAttempts {
			break
		}

		backoff := time.Duration(attempt) * 500 * time.Millisecond
		f.log.Debug("retrying fetch", zap.String("url", rawURL), zap.Int("attempt", attempt), zap.Error(err))
		if err := fetchSleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// fetchOnce performs one request; retry reports whether the failure is transient
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, false, fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.maxBytes)
	}

	return body, false, nil
}

// proxyFunc uses explicit proxies when configured, else the environment
func proxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// remoteFormat infers the encoding of a URL from its path
func remoteFormat(rawURL string) Format {
	if u, err := url.Parse(rawURL); err == nil {
		return FormatOf(u.Path)
	}
	return FormatJSON
}
