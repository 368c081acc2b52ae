package ingest

import "strings"

const (
	delimiter = ','
	quote     = '"'
)

// record is one logical CSV record and the physical line it starts on.
type record struct {
	fields []string
	line   int
}

// blank reports whether every field is empty after trimming.
func (r record) blank() bool {
	for _, f := range r.fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// scanner splits text into records. Quoted fields may contain the delimiter,
// line breaks, and doubled quotes. Records end at \n, \r\n or a lone \r.
type scanner struct {
	text      string
	pos       int
	line      int
	lineStart int
	field     strings.Builder
}

func newScanner(text string) *scanner {
	return &scanner{text: text, line: 1}
}

// next returns the next record. ok is false once the input is exhausted.
func (s *scanner) next() (rec record, ok bool, err error) {
	if s.pos >= len(s.text) {
		return record{}, false, nil
	}

	rec.line = s.line
	for {
		s.field.Reset()
		if s.pos < len(s.text) && s.text[s.pos] == quote {
			if err := s.quoted(); err != nil {
				return record{}, false, err
			}
		}
		s.unquoted()
		rec.fields = append(rec.fields, s.field.String())

		if s.pos >= len(s.text) {
			return rec, true, nil
		}
		switch s.text[s.pos] {
		case delimiter:
			s.pos++
		case '\r':
			s.pos++
			if s.pos < len(s.text) && s.text[s.pos] == '\n' {
				s.pos++
			}
			s.newline()
			return rec, true, nil
		case '\n':
			s.pos++
			s.newline()
			return rec, true, nil
		}
	}
}

// quoted consumes a quoted section starting at the opening quote.
func (s *scanner) quoted() error {
	openLine, openCol := s.line, s.pos-s.lineStart+1
	s.pos++
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		switch {
		case c == quote:
			if s.pos+1 < len(s.text) && s.text[s.pos+1] == quote {
				s.field.WriteByte(quote)
				s.pos += 2
				continue
			}
			s.pos++
			return nil
		case c == '\n':
			s.field.WriteByte(c)
			s.pos++
			s.newline()
		case c == '\r':
			s.field.WriteByte(c)
			s.pos++
			if s.pos >= len(s.text) || s.text[s.pos] != '\n' {
				s.newline()
			}
		default:
			s.field.WriteByte(c)
			s.pos++
		}
	}
	return &ParseFailure{
		Line:    openLine,
		Column:  openCol,
		Message: "unterminated quoted field",
	}
}

// unquoted consumes bytes up to the next delimiter or line break. Text
// following a closing quote is kept literally.
func (s *scanner) unquoted() {
	start := s.pos
	for s.pos < len(s.text) {
		switch s.text[s.pos] {
		case delimiter, '\r', '\n':
			s.field.WriteString(s.text[start:s.pos])
			return
		}
		s.pos++
	}
	s.field.WriteString(s.text[start:s.pos])
}

func (s *scanner) newline() {
	s.line++
	s.lineStart = s.pos
}
