package core

// Error codes reference
//
// Failures shown to users carry a short code so a report can be traced back
// to its cause. Typed errors are matched first; anything else falls through to
// case-insensitive substring patterns, first match wins.
//
// Network (NET001-NET099)
//
//	NET001 - Invalid URL: the address is not an absolute http(s) URL
//	NET002 - Not found: the server answered 404 or 410
//	NET003 - Access denied: the server answered 401 or 403
//	NET004 - Server error: any other non-success status
//	NET005 - Timed out: a deadline passed while fetching
//	NET006 - Unreachable: DNS, connection or transport failure
//
// CSV (CSV001-CSV099)
//
//	CSV001 - Unterminated quote: a quoted field never closes
//	CSV002 - No header: the input has no non-empty line
//	CSV003 - Malformed CSV: any other structural failure
//
// Source (SRC001-SRC099)
//
//	SRC001 - Empty source: neither url, csv text nor rows were given
//	SRC002 - Too large: a request body exceeded the size limit
//
// Views (VIEW001-VIEW099)
//
//	VIEW001 - Not found: the view id is unknown or has expired
//	VIEW002 - Cancelled: the view was cancelled before it finished
//
// Rate limiting (RATE001)
//
//	RATE001 - Too many requests
//
// Default (ERR000)
//
//	ERR000 - Unexpected error; check the server log for the technical error.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvgrid/internal/fetch"
	"github.com/JonMunkholm/csvgrid/internal/ingest"
)

// UserMessage is a user-facing description of a failure.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

var (
	msgInvalidURL = UserMessage{
		Message: "The URL is not valid",
		Action:  "Enter an absolute address such as https://example.com/data.csv",
		Code:    "NET001",
	}
	msgNotFound = UserMessage{
		Message: "The CSV file was not found",
		Action:  "Check the URL and that the file is still published",
		Code:    "NET002",
	}
	msgDenied = UserMessage{
		Message: "Access to the CSV file was denied",
		Action:  "Make sure the file is publicly readable or use a proxy",
		Code:    "NET003",
	}
	msgServerError = UserMessage{
		Message: "The server returned an error",
		Action:  "Try again later or check the proxy prefix",
		Code:    "NET004",
	}
	msgTimeout = UserMessage{
		Message: "Loading the CSV file timed out",
		Action:  "Try again or use a smaller file",
		Code:    "NET005",
	}
	msgUnreachable = UserMessage{
		Message: "Could not reach the server",
		Action:  "Check your connection, the URL and the proxy prefix",
		Code:    "NET006",
	}
	msgUnterminated = UserMessage{
		Message: "The CSV file has a quoted field that is never closed",
		Action:  "Check the reported line for a missing closing quote",
		Code:    "CSV001",
	}
	msgNoHeader = UserMessage{
		Message: "The CSV file has no header row",
		Action:  "Make sure the first non-empty line lists the column names",
		Code:    "CSV002",
	}
	msgMalformed = UserMessage{
		Message: "The CSV file could not be read",
		Action:  "Ensure the file is comma-separated text",
		Code:    "CSV003",
	}
	msgEmptySource = UserMessage{
		Message: "Nothing to display",
		Action:  "Provide a CSV URL, CSV text or rows",
		Code:    "SRC001",
	}
	msgTooLarge = UserMessage{
		Message: "The request body is too large",
		Action:  "Send a smaller CSV or load it by URL",
		Code:    "SRC002",
	}
	msgViewNotFound = UserMessage{
		Message: "This grid has expired",
		Action:  "Load the CSV again",
		Code:    "VIEW001",
	}
	msgViewCancelled = UserMessage{
		Message: "Loading was cancelled",
		Action:  "Load the CSV again when ready",
		Code:    "VIEW002",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors that lost their type, e.g. after crossing a
// string boundary. Order matters: specific before general.
var errorPatterns = []errorPattern{
	{"unterminated quoted field", msgUnterminated},
	{"no header found", msgNoHeader},
	{"invalid csv", msgMalformed},
	{"invalid url", msgInvalidURL},
	{"view cancelled", msgViewCancelled},
	{"view not found", msgViewNotFound},
	{"empty source", msgEmptySource},
	{"too large", msgTooLarge},
	{"rate limit", msgRateLimited},
	{"too many", msgRateLimited},
	{"deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"no such host", msgUnreachable},
	{"connection refused", msgUnreachable},
	{"connection reset", msgUnreachable},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user-facing message. A nil err maps to the zero
// UserMessage.
//
//	msg := MapError(err)
//	// msg.Code == "NET002" for a 404 response
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	// Cancellation wraps the underlying cause, so check it first.
	if errors.Is(err, ErrViewCancelled) {
		return msgViewCancelled, true
	}

	var pf *ingest.ParseFailure
	if errors.As(err, &pf) {
		return parseMessage(pf), true
	}

	var ne *fetch.NetworkError
	if errors.As(err, &ne) {
		return networkMessage(ne), true
	}

	switch {
	case errors.Is(err, ErrViewNotFound):
		return msgViewNotFound, true
	case errors.Is(err, ErrEmptySource):
		return msgEmptySource, true
	case errors.Is(err, ErrTooManyLoads):
		return msgRateLimited, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, true
	case errors.Is(err, context.Canceled):
		return msgViewCancelled, true
	}
	return UserMessage{}, false
}

func networkMessage(ne *fetch.NetworkError) UserMessage {
	switch {
	case ne.Op == "validate":
		return msgInvalidURL
	case ne.StatusCode == http.StatusNotFound || ne.StatusCode == http.StatusGone:
		return msgNotFound
	case ne.StatusCode == http.StatusUnauthorized || ne.StatusCode == http.StatusForbidden:
		return msgDenied
	case ne.StatusCode == http.StatusTooManyRequests:
		return msgRateLimited
	case ne.StatusCode != 0:
		msg := msgServerError
		msg.Message = fmt.Sprintf("The server returned an error (HTTP %d)", ne.StatusCode)
		return msg
	case ne.Timeout():
		return msgTimeout
	default:
		return msgUnreachable
	}
}

func parseMessage(pf *ingest.ParseFailure) UserMessage {
	var msg UserMessage
	switch {
	case errors.Is(pf, ingest.ErrNoHeader):
		return msgNoHeader
	case strings.Contains(pf.Message, "unterminated"):
		msg = msgUnterminated
	default:
		msg = msgMalformed
	}
	if pf.Line > 0 {
		msg.Message = fmt.Sprintf("%s (line %d)", msg.Message, pf.Line)
	}
	return msg
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message. Error
// returns the user message; Unwrap returns the technical error for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string { return e.User.Message }

func (e *UserError) Unwrap() error { return e.Technical }

// NewUserError maps err, returning nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
