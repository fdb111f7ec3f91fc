// Package httpfetch implements driven.PageFetcher over net/http with per-host
// rate limiting and defensive response validation.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

const (
	// DefaultMaxBytes caps the body read from any page.
	DefaultMaxBytes int64 = 5 << 20

	// DefaultTimeout bounds a request when the caller's context has no deadline.
	DefaultTimeout = 15 * time.Second

	maxRedirects = 5
	acceptHeader = "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.1"
)

// acceptedTypes are the non-text media types treated as pages.
var acceptedTypes = map[string]bool{
	"application/xhtml+xml": true,
}

// Fetcher retrieves third-party pages.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *HostLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes sets the largest body accepted.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithRateLimit sets the per-host request rate.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(f *Fetcher) {
		f.limiter = NewHostLimiter(RateLimitConfig{RequestsPerSecond: requestsPerSecond, BurstSize: burst})
	}
}

// New creates a page fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent: domain.DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
		limiter:   NewHostLimiter(RateLimitConfig{RequestsPerSecond: 2, BurstSize: 2}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	return f
}

// Fetch GETs rawURL and validates status, content type and size.
// Rejections are returned as *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.FetchedPage, error) {
	if !domain.ValidWebURL(rawURL) {
		return nil, &domain.FetchError{URL: rawURL, Reason: "not an http(s) url"}
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, Reason: err.Error()}
	}
	host := strings.ToLower(u.Host)

	if err := f.limiter.Wait(ctx, host); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", host, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, ctxErr)
		}
		return nil, &domain.FetchError{URL: rawURL, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.limiter.Backoff(host, retryAfter(resp.Header.Get("Retry-After")))
		logger.With("host", host).Warn("rate limited by host")
		return nil, &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Reason: "rate limited"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Reason: "read body: " + err.Error()}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &domain.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("body exceeds %d bytes", f.maxBytes),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	if !acceptedContentType(contentType) {
		return nil, &domain.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     "unsupported content type " + contentType,
		}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	logger.Debug("Fetched %s (%d bytes, %s)", finalURL, len(body), contentType)
	return &domain.FetchedPage{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

func acceptedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || acceptedTypes[mediaType]
}

// retryAfter parses a Retry-After header in seconds or HTTP-date form.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}
