package ingest

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrNoHeader is the message used when the input has no non-empty line.
var ErrNoHeader = errors.New("no header found")

// ParseFailure describes structurally malformed CSV. Line and Column are
// 1-based; zero means the position is unknown.
type ParseFailure struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (f *ParseFailure) Error() string {
	switch {
	case f.Line > 0 && f.Column > 0:
		return fmt.Sprintf("invalid csv: line %d, column %d: %s", f.Line, f.Column, f.Message)
	case f.Line > 0:
		return fmt.Sprintf("invalid csv: line %d: %s", f.Line, f.Message)
	default:
		return "invalid csv: " + f.Message
	}
}

func (f *ParseFailure) Unwrap() error { return f.Err }

// Result is the outcome of a parse: either Rows (with the header-derived
// Columns) or a failure. It is all-or-nothing; a failed Result has no rows.
type Result struct {
	Columns []string
	Rows    []Row
	Failure *ParseFailure
}

// OK reports whether the parse succeeded.
func (r Result) OK() bool { return r.Failure == nil }

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Parse converts CSV text into typed rows.
//
// The first non-empty record is the header; its cells are used verbatim as
// column names. Records whose cells are all blank are skipped. Every other
// record becomes a Row whose cells are trimmed and type-inferred with Infer,
// padded or cut to the header width.
func Parse(text string) Result {
	sc := newScanner(text)

	var columns []string
	var rows []Row
	for {
		rec, ok, err := sc.next()
		if err != nil {
			var pf *ParseFailure
			if errors.As(err, &pf) {
				return Result{Failure: pf}
			}
			return Result{Failure: &ParseFailure{Message: err.Error(), Err: err}}
		}
		if !ok {
			break
		}
		if rec.blank() {
			continue
		}
		if columns == nil {
			columns = uniqueColumns(rec.fields)
			continue
		}

		values := make([]FieldValue, len(columns))
		for i := range columns {
			if i < len(rec.fields) {
				values[i] = Infer(rec.fields[i])
			}
		}
		rows = append(rows, Row{columns: columns, values: values})
	}

	if columns == nil {
		return Result{Failure: &ParseFailure{Message: ErrNoHeader.Error(), Err: ErrNoHeader}}
	}
	if rows == nil {
		rows = []Row{}
	}
	return Result{Columns: columns, Rows: rows}
}

// ParseReader reads r to the end and parses it. Read errors are returned
// separately from parse failures, which are reported in the Result.
func ParseReader(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}
	return Parse(string(data)), nil
}

// uniqueColumns returns the header names, suffixing repeats with _1, _2, ...
// so each column keeps its own key.
func uniqueColumns(header []string) []string {
	seen := make(map[string]bool, len(header))
	cols := make([]string, len(header))
	for i, name := range header {
		if !seen[name] {
			seen[name] = true
			cols[i] = name
			continue
		}
		for n := 1; ; n++ {
			candidate := name + "_" + strconv.Itoa(n)
			if !seen[candidate] {
				seen[candidate] = true
				cols[i] = candidate
				break
			}
		}
	}
	return cols
}
