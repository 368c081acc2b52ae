package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestGrid_EscapesContent(t *testing.T) {
	out := render(t, Grid(GridData{
		Columns: []string{"<b>name</b>"},
		Rows:    [][]Cell{{{Text: "<script>x</script>", Kind: "string"}}},
		Total:   1,
	}))

	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") {
		t.Errorf("unescaped content in %s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;name&lt;/b&gt;") {
		t.Errorf("header not rendered: %s", out)
	}
}

func TestGrid_ShowsRowCounts(t *testing.T) {
	out := render(t, Grid(GridData{
		Columns:   []string{"a"},
		Rows:      [][]Cell{{{Text: "1", Kind: "number"}}},
		Total:     250,
		Truncated: true,
	}))

	for _, want := range []string{"250 rows", "showing first 1", "cut short", `<td class="number">1</td>`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestLoadingPage_AlwaysShowsIndicator(t *testing.T) {
	out := render(t, LoadingPage("abc", "https://example.com/a.csv", 2*time.Second))

	if !strings.Contains(out, `class="spinner"`) {
		t.Error("loading indicator missing")
	}
	if !strings.Contains(out, `content="2;url=/grid/abc"`) {
		t.Errorf("refresh meta missing: %s", out)
	}
}

func TestErrorPage(t *testing.T) {
	out := render(t, ErrorPage("The CSV file was not found", "Check the URL", "NET002", FormValues{URL: "https://x/\"a"}))

	for _, want := range []string{`role="alert"`, "NET002", "Check the URL", `value="https://x/&#34;a"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestHome(t *testing.T) {
	out := render(t, Home(FormValues{}))
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %.40s", out)
	}
	if !strings.Contains(out, `action="/grid"`) {
		t.Error("form missing")
	}
}
