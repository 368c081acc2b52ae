package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// FormValues pre-fills the load form.
type FormValues struct {
	URL   string
	Proxy string
	CSV   string
}

// LoadForm renders the URL and inline CSV forms.
func LoadForm(v FormValues) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<form class="load" method="get" action="/grid">`+
			`<label>CSV URL <input type="url" name="url" required value="%s" placeholder="https://example.com/data.csv"></label>`+
			`<label>Proxy prefix <input type="text" name="proxy" value="%s" placeholder="https://proxy.example/?url="></label>`+
			`<button type="submit">Load</button></form>`+
			`<form class="load" method="post" action="/grid">`+
			`<label>Or paste CSV <textarea name="csv" rows="6">%s</textarea></label>`+
			`<button type="submit">Show</button></form>`,
			templ.EscapeString(v.URL),
			templ.EscapeString(v.Proxy),
			templ.EscapeString(v.CSV),
		)
		return err
	})
}

// Home is the landing page.
func Home(v FormValues) templ.Component {
	return Page(PageOptions{Title: "csvgrid"}, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>csvgrid</h1>`); err != nil {
			return err
		}
		return LoadForm(v).Render(ctx, w)
	}))
}
