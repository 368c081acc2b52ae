package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/csvgrid/internal/core"
	"github.com/JonMunkholm/csvgrid/internal/ingest"
	"github.com/JonMunkholm/csvgrid/internal/logging"
	"github.com/JonMunkholm/csvgrid/internal/web/templates"
)

func formValues(r *http.Request) templates.FormValues {
	return templates.FormValues{
		URL:   r.URL.Query().Get("url"),
		Proxy: r.URL.Query().Get("proxy"),
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderHTML(w, r, http.StatusOK, templates.Home(templates.FormValues{Proxy: s.cfg.Fetch.ProxyPrefix}))
}

// handleGrid starts a view for ?url=&proxy= and shows it. If the load
// settles within GRID_WAIT_TIME the grid (or error) is rendered directly,
// otherwise the loading page is shown and refreshes to /grid/{id}.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("url")) == "" {
		s.renderHTML(w, r, http.StatusOK, templates.Home(templates.FormValues{Proxy: s.cfg.Fetch.ProxyPrefix}))
		return
	}

	s.startAndShow(w, r, core.Source{
		URL:         strings.TrimSpace(q.Get("url")),
		ProxyPrefix: s.proxyFor(q.Get("proxy")),
	})
}

// handleGridSubmit shows CSV pasted into the home page form.
func (s *Server) handleGridSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.startAndShow(w, r, core.Source{RawCSV: r.PostForm.Get("csv")})
}

func (s *Server) startAndShow(w http.ResponseWriter, r *http.Request, src core.Source) {
	id, err := s.service.Start(r.Context(), src)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Grid.WaitTime)
	defer cancel()
	st, err := s.service.Wait(ctx, id)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderView(w, r, st)
}

// handleGridView shows an existing view.
func (s *Server) handleGridView(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.View(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.renderView(w, r, st)
}

// renderView draws the page for a view state. Pending always shows the
// loading indicator.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request, st core.ViewState) {
	switch st.State() {
	case core.StatePending:
		w.Header().Set("Cache-Control", "no-store")
		s.renderHTML(w, r, http.StatusOK,
			templates.LoadingPage(st.ID, sourceLabel(st.Source), s.cfg.Grid.RefreshInterval))
	case core.StateFailed:
		s.respondError(w, r, st.Err, 0)
	default:
		s.renderHTML(w, r, http.StatusOK, templates.GridPage(gridData(st, s.cfg.Grid.MaxRows)))
	}
}

func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

// proxyFor returns the request's proxy prefix or the configured default.
func (s *Server) proxyFor(requested string) string {
	if p := strings.TrimSpace(requested); p != "" {
		return p
	}
	return s.cfg.Fetch.ProxyPrefix
}

func sourceLabel(src core.Source) string {
	switch src.Kind() {
	case core.SourceURL:
		return src.URL
	case core.SourceInline:
		return "pasted CSV"
	case core.SourceRows:
		return "rows"
	default:
		return ""
	}
}

// gridData converts a ready view into template data, keeping at most
// maxRows rows.
func gridData(st core.ViewState, maxRows int) templates.GridData {
	t := st.Table
	rows := t.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	cells := make([][]templates.Cell, len(rows))
	for i, row := range rows {
		cells[i] = rowCells(row)
	}
	return templates.GridData{
		ID:        st.ID,
		Source:    sourceLabel(st.Source),
		Columns:   t.Columns,
		Rows:      cells,
		Total:     t.Len(),
		Truncated: t.Truncated,
	}
}

func rowCells(row ingest.Row) []templates.Cell {
	values := row.Values()
	out := make([]templates.Cell, len(values))
	for i, v := range values {
		out[i] = templates.Cell{Text: v.String(), Kind: v.Kind.String()}
	}
	return out
}
