package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

// Cell is one rendered grid value. Kind is the inferred value kind
// ("number", "bool", "string" or "empty") and becomes the cell's class.
type Cell struct {
	Text string
	Kind string
}

// GridData is everything the grid view shows.
type GridData struct {
	ID        string
	Source    string
	Columns   []string
	Rows      [][]Cell
	Total     int
	Truncated bool
}

// Grid renders a loaded table. Only len(Rows) rows are drawn; Total is the
// full row count.
func Grid(d GridData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}

		if d.Source != "" {
			ew.printf(`<h1>%s</h1>`, templ.EscapeString(d.Source))
		}
		ew.printf(`<p class="meta">%d rows, %d columns`, d.Total, len(d.Columns))
		if len(d.Rows) < d.Total {
			ew.printf(`; showing first %d`, len(d.Rows))
		}
		if d.Truncated {
			ew.print(`; the file was larger than the download limit and has been cut short`)
		}
		ew.print(`</p><div class="grid-wrap"><table class="grid"><thead><tr>`)
		for _, c := range d.Columns {
			ew.printf(`<th scope="col">%s</th>`, templ.EscapeString(c))
		}
		ew.print(`</tr></thead><tbody>`)
		for _, row := range d.Rows {
			ew.print(`<tr>`)
			for _, cell := range row {
				ew.printf(`<td class="%s">%s</td>`, templ.EscapeString(cell.Kind), templ.EscapeString(cell.Text))
			}
			ew.print(`</tr>`)
		}
		ew.print(`</tbody></table></div>`)
		return ew.err
	})
}

// GridPage is the full page for a ready grid.
func GridPage(d GridData) templ.Component {
	return Page(PageOptions{Title: titleFor(d.Source)}, Grid(d))
}

// Loading is shown while a view is pending. It always renders the indicator.
func Loading(id string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="loading" role="status" aria-live="polite" data-view="%s">`+
			`<div class="spinner"></div><span>Loading CSV&hellip;</span></div>`,
			templ.EscapeString(id))
		return err
	})
}

// LoadingPage is the full page for a pending view. It refreshes itself to
// the view URL every refresh interval.
func LoadingPage(id, source string, refresh time.Duration) templ.Component {
	return Page(PageOptions{
		Title:        titleFor(source),
		RefreshURL:   "/grid/" + id,
		RefreshAfter: refresh,
	}, Loading(id))
}

// ErrorAlert renders a user-facing error.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<div class="alert" role="alert"><strong>%s</strong>`, templ.EscapeString(message))
		if action != "" {
			ew.printf(`<p>%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			ew.printf(`<span class="code">Code: %s</span>`, templ.EscapeString(code))
		}
		ew.print(`</div>`)
		return ew.err
	})
}

// ErrorPage shows an alert above the load form.
func ErrorPage(message, action, code string, form FormValues) templ.Component {
	return Page(PageOptions{Title: "csvgrid: error"}, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ErrorAlert(message, action, code).Render(ctx, w); err != nil {
			return err
		}
		return LoadForm(form).Render(ctx, w)
	}))
}

func titleFor(source string) string {
	if source == "" {
		return "csvgrid"
	}
	return "csvgrid: " + source
}

// errWriter keeps the first write error so markup can be emitted without
// checking every call.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) print(s string) {
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}
