package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JonMunkholm/csvgrid/internal/ingest"
)

var _ Formatter = (*Table)(nil)

// Table draws an aligned text table. Numeric columns are right aligned.
type Table struct{}

func NewTable() *Table {
	return &Table{}
}

func (tf *Table) Name() string {
	return "table"
}

func (tf *Table) Format(w io.Writer, columns []string, rows []ingest.Row, limit int) error {
	shown := capRows(rows, limit)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	tableRows := make([]table.Row, 0, len(shown))
	for _, row := range shown {
		values := row.Values()
		r := make(table.Row, len(values))
		for i, v := range values {
			r[i] = v.String()
		}
		tableRows = append(tableRows, r)
	}

	t := table.NewWriter()
	t.AppendHeader(header)
	t.AppendRows(tableRows)
	if len(shown) < len(rows) {
		t.AppendFooter(table.Row{fmt.Sprintf("%d of %d rows", len(shown), len(rows))})
	}
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false

	var configs []table.ColumnConfig
	for i := range columns {
		if numericColumn(shown, i) {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.SetColumnConfigs(configs)

	if _, err := io.WriteString(w, t.Render()+"\n"); err != nil {
		return err
	}
	return nil
}

// numericColumn reports whether every non-empty value in column i is a
// number, with at least one number present.
func numericColumn(rows []ingest.Row, i int) bool {
	seen := false
	for _, row := range rows {
		values := row.Values()
		if i >= len(values) {
			continue
		}
		switch values[i].Kind {
		case ingest.KindEmpty:
		case ingest.KindNumber:
			seen = true
		default:
			return false
		}
	}
	return seen
}
