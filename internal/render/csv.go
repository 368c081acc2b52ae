package render

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/csvgrid/internal/ingest"
)

var _ Formatter = (*CSV)(nil)

// CSV writes the cleaned table back out: trimmed cells, blank rows
// dropped and short rows padded.
type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

func (cf *CSV) Name() string {
	return "csv"
}

func (cf *CSV) Format(w io.Writer, columns []string, rows []ingest.Row, limit int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range capRows(rows, limit) {
		if err := cw.Write(row.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
