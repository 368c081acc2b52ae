package core

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/csvgrid/internal/fetch"
	"github.com/JonMunkholm/csvgrid/internal/ingest"
	"github.com/JonMunkholm/csvgrid/internal/logging"
	"github.com/JonMunkholm/csvgrid/internal/metrics"
)

// DefaultViewTTL is how long a settled view stays readable.
const DefaultViewTTL = 5 * time.Minute

// Fetcher retrieves raw CSV text. *fetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url, proxyPrefix string) (*fetch.RawDocument, error)
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	// CacheMaxEntries bounds each cache; 0 keeps every entry.
	CacheMaxEntries int

	MaxConcurrent int
	MaxWait       time.Duration

	// ViewTTL is how long a settled view is kept before it is forgotten.
	ViewTTL time.Duration

	// LoadTimeout bounds a single Load; 0 leaves it to the caller's context.
	LoadTimeout time.Duration

	Metrics *metrics.Metrics
}

// Service loads grid data from a Source and tracks asynchronous views.
type Service struct {
	fetcher     Fetcher
	limiter     *LoadLimiter
	metrics     *metrics.Metrics
	viewTTL     time.Duration
	loadTimeout time.Duration

	fetches *memo[fetchKey, *fetch.RawDocument]
	parses  *memo[[sha256.Size]byte, ingest.Result]
	group   singleflight.Group

	mu    sync.RWMutex
	views map[string]*view
}

// NewService creates a Service that fetches through f.
func NewService(f Fetcher, opts Options) *Service {
	if opts.ViewTTL <= 0 {
		opts.ViewTTL = DefaultViewTTL
	}
	return &Service{
		fetcher:     f,
		limiter:     NewLoadLimiter(opts.MaxConcurrent, opts.MaxWait),
		metrics:     opts.Metrics,
		viewTTL:     opts.ViewTTL,
		loadTimeout: opts.LoadTimeout,
		fetches:     newMemo[fetchKey, *fetch.RawDocument](opts.CacheMaxEntries),
		parses:      newMemo[[sha256.Size]byte, ingest.Result](opts.CacheMaxEntries),
		views:       make(map[string]*view),
	}
}

// Limiter exposes the load limiter for health reporting.
func (s *Service) Limiter() *LoadLimiter { return s.limiter }

// Load resolves src to a Table. URL sources are fetched then parsed, inline
// text is parsed, and pre-parsed rows are used as given. Successful fetches and
// parses are cached; failures are not, and never disturb existing entries.
func (s *Service) Load(ctx context.Context, src Source) (*Table, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	kind := src.Kind()
	if kind == SourceRows {
		return rowsTable(src), nil
	}

	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.loadTimeout)
		defer cancel()
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	table := &Table{Kind: kind}
	text := src.RawCSV
	if kind == SourceURL {
		doc, err := s.fetch(ctx, fetchKey{url: src.URL, proxy: src.ProxyPrefix})
		if err != nil {
			return nil, err
		}
		text = doc.Text
		table.URL = src.URL
		table.Bytes = doc.Bytes
		table.Truncated = doc.Truncated
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := s.parse(ctx, text)
	if !res.OK() {
		return nil, res.Failure
	}

	table.Columns = res.Columns
	table.Rows = res.Rows
	table.LoadedAt = time.Now()
	return table, nil
}

func rowsTable(src Source) *Table {
	columns := src.Columns
	if len(columns) == 0 {
		columns = ingest.ColumnsOf(src.Rows)
	}
	return &Table{
		Kind:     SourceRows,
		Columns:  columns,
		Rows:     ingest.Align(columns, src.Rows),
		LoadedAt: time.Now(),
	}
}

// fetch returns the cached document for key or downloads it. Concurrent
// misses for the same key share one request.
func (s *Service) fetch(ctx context.Context, key fetchKey) (*fetch.RawDocument, error) {
	if doc, ok := s.fetches.get(key); ok {
		s.metrics.CacheHit(metrics.CacheFetch, true)
		return doc, nil
	}
	s.metrics.CacheHit(metrics.CacheFetch, false)

	ch := s.group.DoChan(key.String(), func() (any, error) {
		doc, err := s.fetcher.Fetch(ctx, key.url, key.proxy)
		if err != nil {
			s.metrics.ObserveFetch(0, err)
			return nil, err
		}
		s.metrics.ObserveFetch(doc.Bytes, nil)
		s.fetches.put(key, doc)
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// The shared request was bound to another caller's context.
			if res.Shared && errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				return s.fetch(ctx, key)
			}
			return nil, res.Err
		}
		return res.Val.(*fetch.RawDocument), nil
	}
}

func (s *Service) parse(ctx context.Context, text string) ingest.Result {
	sum := sha256.Sum256([]byte(text))
	if res, ok := s.parses.get(sum); ok {
		s.metrics.CacheHit(metrics.CacheParse, true)
		return res
	}
	s.metrics.CacheHit(metrics.CacheParse, false)

	start := time.Now()
	res := ingest.Parse(text)
	s.metrics.ObserveParse(time.Since(start), len(res.Rows), res.Err())

	if !res.OK() {
		logging.FromContext(ctx).Debug("parse failed", "error", res.Failure)
		return res
	}
	s.parses.put(sum, res)
	return res
}

// Invalidate drops cached data for src so the next Load refetches and
// reparses it. It reports whether anything was removed.
func (s *Service) Invalidate(src Source) bool {
	text := src.RawCSV
	removed := false

	if src.Kind() == SourceURL {
		key := fetchKey{url: src.URL, proxy: src.ProxyPrefix}
		if doc, ok := s.fetches.get(key); ok {
			text = doc.Text
		}
		removed = s.fetches.remove(key)
		s.group.Forget(key.String())
	}
	if text != "" && s.parses.remove(sha256.Sum256([]byte(text))) {
		removed = true
	}
	return removed
}

// ResetCache clears both caches.
func (s *Service) ResetCache() {
	s.fetches.clear()
	s.parses.clear()
}

// CacheStats reports cache sizes.
type CacheStats struct {
	FetchEntries int `json:"fetch_entries"`
	ParseEntries int `json:"parse_entries"`
}

func (s *Service) CacheStats() CacheStats {
	return CacheStats{
		FetchEntries: s.fetches.len(),
		ParseEntries: s.parses.len(),
	}
}
