package render

import (
	"encoding/json"
	"io"

	"github.com/JonMunkholm/csvgrid/internal/ingest"
)

var _ Formatter = (*JSON)(nil)

// JSON writes an indented array of objects with keys in column order.
type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (jf *JSON) Name() string {
	return "json"
}

func (jf *JSON) Format(w io.Writer, columns []string, rows []ingest.Row, limit int) error {
	shown := capRows(rows, limit)
	if shown == nil {
		shown = []ingest.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(shown)
}
