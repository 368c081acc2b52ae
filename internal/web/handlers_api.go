package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/csvgrid/internal/core"
	"github.com/JonMunkholm/csvgrid/internal/ingest"
)

// maxAPIWait bounds ?wait= on GET /api/views/{id}.
const maxAPIWait = 30 * time.Second

type viewRequest struct {
	URL     string       `json:"url"`
	Proxy   string       `json:"proxy"`
	CSV     string       `json:"csv"`
	Rows    []ingest.Row `json:"rows"`
	Columns []string     `json:"columns"`
}

type viewResponse struct {
	ID        string          `json:"id"`
	Status    core.State      `json:"status"`
	Source    core.SourceKind `json:"source"`
	Columns   []string        `json:"columns,omitempty"`
	Rows      []ingest.Row    `json:"rows,omitempty"`
	RowCount  int             `json:"row_count"`
	Truncated bool            `json:"truncated,omitempty"`
	Error     *ErrorResponse  `json:"error,omitempty"`
}

func newViewResponse(st core.ViewState, limit int) viewResponse {
	resp := viewResponse{
		ID:     st.ID,
		Status: st.State(),
		Source: st.Source.Kind(),
	}
	if st.Err != nil {
		e := errorResponse(st.Err)
		resp.Error = &e
	}
	if t := st.Table; t != nil {
		resp.Columns = t.Columns
		resp.Rows = t.Rows
		resp.RowCount = t.Len()
		resp.Truncated = t.Truncated
		if limit > 0 && len(resp.Rows) > limit {
			resp.Rows = resp.Rows[:limit]
		}
	}
	return resp
}

// handleCreateView starts a view from a JSON body and answers 202 with its id.
func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, err, 0)
			return
		}
		s.respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	src := core.Source{
		URL:     req.URL,
		RawCSV:  req.CSV,
		Rows:    req.Rows,
		Columns: req.Columns,
	}
	if src.Kind() == core.SourceURL {
		src.ProxyPrefix = s.proxyFor(req.Proxy)
	}

	id, err := s.service.Start(r.Context(), src)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Location", "/api/views/"+id)
	writeJSON(w, http.StatusAccepted, viewResponse{
		ID:     id,
		Status: core.StatePending,
		Source: src.Kind(),
	})
}

// handleGetView returns a view. ?wait=2s blocks until it settles or the
// wait elapses; ?limit=N caps returned rows.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var wait time.Duration
	if v := r.URL.Query().Get("wait"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("invalid wait %q: %w", v, err), http.StatusBadRequest)
			return
		}
		wait = waitBudget(d, maxAPIWait)
	}

	var (
		st  core.ViewState
		err error
	)
	if wait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		st, err = s.service.Wait(ctx, id)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			err = nil
		}
	} else {
		st, err = s.service.View(id)
	}
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, newViewResponse(st, parseLimit(r)))
}

func (s *Server) handleCancelView(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Cancel(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type parseResponse struct {
	Columns  []string     `json:"columns"`
	Rows     []ingest.Row `json:"rows"`
	RowCount int          `json:"row_count"`
}

// handleParse parses a raw CSV body synchronously. Malformed CSV is 422
// with the failure position.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	table, err := s.service.Load(r.Context(), core.Source{RawCSV: string(body)})
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	resp := parseResponse{Columns: table.Columns, Rows: table.Rows, RowCount: table.Len()}
	if limit := parseLimit(r); limit > 0 && len(resp.Rows) > limit {
		resp.Rows = resp.Rows[:limit]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResetCache(w http.ResponseWriter, r *http.Request) {
	s.service.ResetCache()
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status      string             `json:"status"`
	ActiveViews int                `json:"active_views"`
	Loads       core.LimiterStatus `json:"loads"`
	Cache       core.CacheStats    `json:"cache"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		ActiveViews: s.service.ActiveViews(),
		Loads:       s.service.Limiter().Status(),
		Cache:       s.service.CacheStats(),
	})
}

// parseLimit reads ?limit=N; invalid or missing means no limit.
func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
