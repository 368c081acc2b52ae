// Package templates holds the HTML components for the grid UI.
package templates

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
)

const stylesheet = `
body{font-family:system-ui,sans-serif;margin:0;background:#f8fafc;color:#0f172a}
main{max-width:1200px;margin:0 auto;padding:1.5rem}
h1{font-size:1.25rem;margin:0 0 1rem}
form.load{display:grid;gap:.5rem;margin-bottom:1.5rem}
form.load input,form.load textarea{padding:.4rem;border:1px solid #cbd5e1;border-radius:4px;font:inherit}
form.load button{justify-self:start;padding:.4rem 1rem}
.grid-wrap{overflow:auto;max-height:75vh;border:1px solid #e2e8f0;background:#fff}
table.grid{border-collapse:collapse;width:100%;font-size:.875rem}
table.grid th{position:sticky;top:0;background:#f1f5f9;text-align:left}
table.grid th,table.grid td{padding:.3rem .6rem;border-bottom:1px solid #e2e8f0;white-space:nowrap}
table.grid td.number{text-align:right;font-variant-numeric:tabular-nums}
table.grid td.empty{color:#94a3b8}
.meta{font-size:.8rem;color:#475569;margin:.5rem 0}
.loading{display:flex;align-items:center;gap:.75rem;padding:2rem}
.spinner{width:1.25rem;height:1.25rem;border:3px solid #cbd5e1;border-top-color:#2563eb;border-radius:50%;animation:spin 1s linear infinite}
@keyframes spin{to{transform:rotate(360deg)}}
.alert{border:1px solid #fecaca;background:#fef2f2;color:#991b1b;padding:1rem;border-radius:4px}
.alert .code{font-family:monospace;font-size:.8rem;color:#7f1d1d}
`

// PageOptions configures the document shell.
type PageOptions struct {
	Title string

	// RefreshURL and RefreshAfter add a meta refresh, used while a grid loads.
	RefreshURL   string
	RefreshAfter time.Duration
}

// Page wraps body in the HTML document shell.
func Page(opts PageOptions, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := opts.Title
		if title == "" {
			title = "csvgrid"
		}

		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`); err != nil {
			return err
		}
		if opts.RefreshURL != "" {
			secs := int(opts.RefreshAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			if _, err := fmt.Fprintf(w, `<meta http-equiv="refresh" content="%d;url=%s">`,
				secs, templ.EscapeString(string(templ.URL(opts.RefreshURL)))); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<title>%s</title><style>%s</style></head><body><main>`,
			templ.EscapeString(title), stylesheet); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
