package web

// errors.go turns errors into responses. The technical error is logged with
// the request id; clients get the mapped core.UserMessage as JSON (API) or an
// error page (browser).

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvgrid/internal/core"
	"github.com/JonMunkholm/csvgrid/internal/fetch"
	"github.com/JonMunkholm/csvgrid/internal/ingest"
	"github.com/JonMunkholm/csvgrid/internal/logging"
	"github.com/JonMunkholm/csvgrid/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	// Set for CSV parse failures.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

func errorResponse(err error) ErrorResponse {
	msg := core.MapError(err)
	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	var pf *ingest.ParseFailure
	if errors.As(err, &pf) {
		resp.Line, resp.Column = pf.Line, pf.Column
	}
	return resp
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var ne *fetch.NetworkError
	var pf *ingest.ParseFailure
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrEmptySource):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrViewNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrViewCancelled):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyLoads):
		return http.StatusTooManyRequests
	case errors.As(err, &pf):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ne):
		switch {
		case ne.Op == "validate":
			return http.StatusBadRequest
		case ne.Timeout():
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it in the format the client expects.
// A zero status is derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	resp := errorResponse(err)

	logger := logging.WithFields(r.Context(), "path", r.URL.Path, "status", status, "code", resp.Code)
	if status >= 500 {
		logger.Error("request error", "error", err)
	} else {
		logger.Warn("request error", "error", err)
	}

	if wantsJSON(r) {
		writeJSON(w, status, resp)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorPage(resp.Message, resp.Action, resp.Code, formValues(r)).Render(r.Context(), w)
}

// wantsJSON reports whether the client prefers JSON over HTML.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode", "error", err)
	}
}
