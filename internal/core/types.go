package core

import (
	"errors"
	"time"

	"github.com/JonMunkholm/csvgrid/internal/ingest"
)

// ErrEmptySource is returned when a Source names no URL, text or rows.
var ErrEmptySource = errors.New("empty source: provide a url, csv text or rows")

// SourceKind identifies which input a Source resolves to.
type SourceKind string

const (
	SourceNone   SourceKind = "none"
	SourceRows   SourceKind = "rows"
	SourceInline SourceKind = "inline"
	SourceURL    SourceKind = "url"
)

// Source describes where grid data comes from. When more than one input is
// set, Rows wins over RawCSV, and RawCSV wins over URL.
type Source struct {
	URL         string
	ProxyPrefix string
	RawCSV      string

	// Rows bypasses fetching and parsing. Columns fixes the column order;
	// when empty it is derived from the rows in first-seen order.
	Rows    []ingest.Row
	Columns []string
}

// Kind reports which input the Source resolves to.
func (s Source) Kind() SourceKind {
	switch {
	case s.Rows != nil:
		return SourceRows
	case s.RawCSV != "":
		return SourceInline
	case s.URL != "":
		return SourceURL
	default:
		return SourceNone
	}
}

// Validate returns ErrEmptySource when the Source has nothing to load.
func (s Source) Validate() error {
	if s.Kind() == SourceNone {
		return ErrEmptySource
	}
	return nil
}

// fetchKey identifies a fetch cache entry.
type fetchKey struct {
	url   string
	proxy string
}

func (k fetchKey) String() string { return k.proxy + k.url }

// Table is a loaded, parsed grid.
type Table struct {
	Kind    SourceKind
	Columns []string
	Rows    []ingest.Row

	// Set for URL sources.
	URL       string
	Bytes     int64
	Truncated bool

	LoadedAt time.Time
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// State is the derived status of a view.
type State string

const (
	StatePending State = "pending"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// ViewState is a point-in-time snapshot of a view. State is derived from
// whether Table or Err is set, never stored separately.
type ViewState struct {
	ID        string
	Source    Source
	Table     *Table
	Err       error
	StartedAt time.Time
	DoneAt    time.Time
}

// State returns pending until the load settles, then ready or failed.
func (v ViewState) State() State {
	switch {
	case v.Err != nil:
		return StateFailed
	case v.Table != nil:
		return StateReady
	default:
		return StatePending
	}
}

// Done reports whether the view has settled.
func (v ViewState) Done() bool { return v.State() != StatePending }
