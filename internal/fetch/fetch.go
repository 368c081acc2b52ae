// Package fetch retrieves raw CSV text over HTTP.
//
// A Fetcher issues exactly one range-limited GET per call, optionally through
// a proxy prefix, and never retries. The body is capped at the configured byte
// window; a resource larger than the window is silently truncated, which may
// leave a partial trailing row.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/csvgrid/internal/logging"
)

// DefaultMaxBytes is the default byte window, giving "Range: bytes=0-5132288".
const DefaultMaxBytes int64 = 5132289

// DefaultTimeout bounds a single fetch when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// Options configures a Fetcher. Zero values select defaults.
type Options struct {
	// MaxBytes is the size of the byte window requested from the server.
	MaxBytes int64

	// Timeout is applied to each request (0 uses DefaultTimeout).
	Timeout time.Duration

	// UserAgent is sent when non-empty.
	UserAgent string

	// RatePerSecond throttles outbound requests across all callers of this
	// Fetcher. Zero disables throttling.
	RatePerSecond float64

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Fetcher downloads CSV resources. It is safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	limiter   *rate.Limiter
}

// New creates a Fetcher from opts.
func New(opts Options) *Fetcher {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	f := &Fetcher{
		client:    client,
		maxBytes:  opts.MaxBytes,
		userAgent: opts.UserAgent,
	}
	if opts.RatePerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	return f
}

// MaxBytes returns the byte window.
func (f *Fetcher) MaxBytes() int64 { return f.maxBytes }

// RangeHeader returns the Range header value sent with every request.
func (f *Fetcher) RangeHeader() string {
	return "bytes=0-" + strconv.FormatInt(f.maxBytes-1, 10)
}

// EffectiveURL returns the URL actually requested. The proxy prefix is
// prepended verbatim; the proxy is trusted to parse the remainder.
func EffectiveURL(target, proxyPrefix string) string {
	return proxyPrefix + target
}

// ValidateURL checks that raw is an absolute URL with a scheme and host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("invalid url: empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid url %q: must be absolute", raw)
	}
	return nil
}

// Fetch downloads target, optionally through proxyPrefix. Any transport
// failure or non-2xx status is returned as a *NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, target, proxyPrefix string) (*RawDocument, error) {
	if err := ValidateURL(target); err != nil {
		return nil, &NetworkError{Op: "validate", URL: target, Err: err}
	}
	effective := EffectiveURL(target, proxyPrefix)
	logger := logging.WithFields(ctx, "url", target, "request_url", effective)

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: "throttle", URL: effective, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, effective, nil)
	if err != nil {
		return nil, &NetworkError{Op: "request", URL: effective, Err: err}
	}
	req.Header.Set("Range", f.RangeHeader())
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "get", URL: effective, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &NetworkError{
			Op:         "get",
			URL:        effective,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	counter := &countingReader{r: io.LimitReader(resp.Body, f.maxBytes)}
	contentType := resp.Header.Get("Content-Type")
	text, err := decodeBody(counter, contentType, logger)
	if err != nil {
		return nil, &NetworkError{Op: "read", URL: effective, Err: err}
	}

	truncated := f.moreAvailable(resp, counter.n)

	logger.Debug("fetch complete",
		"status", resp.StatusCode,
		"bytes", counter.n,
		"truncated", truncated,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &RawDocument{
		Text:        text,
		Origin:      OriginURL,
		SourceURL:   target,
		RequestURL:  effective,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Bytes:       counter.n,
		Truncated:   truncated,
		FetchedAt:   time.Now(),
	}, nil
}

// moreAvailable reports whether the resource extends past what was read.
func (f *Fetcher) moreAvailable(resp *http.Response, read int64) bool {
	if read < f.maxBytes {
		return false
	}
	if total, ok := contentRangeTotal(resp.Header.Get("Content-Range")); ok {
		return total > read
	}
	var one [1]byte
	n, _ := io.ReadFull(resp.Body, one[:])
	return n > 0
}

// contentRangeTotal parses the complete length from "bytes 0-99/1234".
func contentRangeTotal(header string) (int64, bool) {
	i := strings.LastIndexByte(header, '/')
	if i < 0 || i == len(header)-1 {
		return 0, false
	}
	total, err := strconv.ParseInt(strings.TrimSpace(header[i+1:]), 10, 64)
	if err != nil {
		return 0, false
	}
	return total, true
}
