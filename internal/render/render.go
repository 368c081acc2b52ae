// Package render writes parsed tables for terminals and pipes.
package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/JonMunkholm/csvgrid/internal/ingest"
)

// Formatter writes columns and rows to w. limit caps the rows written; 0
// writes all of them.
type Formatter interface {
	Name() string
	Format(w io.Writer, columns []string, rows []ingest.Row, limit int) error
}

var formatters = map[string]Formatter{}

func register(f Formatter) { formatters[f.Name()] = f }

func init() {
	register(NewTable())
	register(NewJSON())
	register(NewCSV())
}

// ByName returns the formatter called name.
func ByName(name string) (Formatter, error) {
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %v)", name, Names())
	}
	return f, nil
}

// Names lists the registered formats, sorted.
func Names() []string {
	names := make([]string, 0, len(formatters))
	for n := range formatters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func capRows(rows []ingest.Row, limit int) []ingest.Row {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
