package fetch

// body.go decodes a response body into text without an intermediate copy of
// the whole payload:
//
//   - bomSkipper drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - a charset decoder converts declared non-UTF-8 encodings
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - countingReader tracks raw bytes read from the network

import (
	"bytes"
	"io"
	"log/slog"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// countingReader counts bytes passing through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// bomSkipper removes a UTF-8 byte order mark from the start of a stream.
type bomSkipper struct {
	r       io.Reader
	checked bool
	head    []byte
	eof     bool
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		var buf [3]byte
		n, err := io.ReadFull(b.r, buf[:])
		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			b.eof = true
		default:
			return 0, err
		}
		if n == 3 && bytes.Equal(buf[:], utf8BOM) {
			n = 0
		}
		b.head = append(b.head[:0], buf[:n]...)
	}

	if len(b.head) > 0 {
		n := copy(p, b.head)
		b.head = b.head[n:]
		return n, nil
	}
	if b.eof {
		return 0, io.EOF
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 with '?'. A multi-byte sequence split
// across reads is held back until the rest arrives.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
	out     []byte
	err     error
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}

		size := len(p)
		if size < 512 {
			size = 512
		}
		buf := make([]byte, len(s.pending)+size)
		copy(buf, s.pending)
		n, err := s.r.Read(buf[len(s.pending):])
		data := buf[:len(s.pending)+n]
		s.pending = s.pending[:0]
		s.err = err

		if err == nil {
			if k := incompleteTail(data); k > 0 {
				s.pending = append(s.pending, data[len(data)-k:]...)
				data = data[:len(data)-k]
			}
		}
		s.out = sanitizeUTF8(data)
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// sanitizeUTF8 returns data with every invalid byte replaced by '?'.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			out = append(out, '?')
		} else {
			out = append(out, data[:size]...)
		}
		data = data[size:]
	}
	return out
}

// incompleteTail returns how many trailing bytes form the start of a
// multi-byte sequence that has not been fully read yet.
func incompleteTail(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		c := data[len(data)-i]
		if c < 0x80 {
			return 0
		}
		if c >= 0xC0 {
			if sequenceLen(c) > i {
				return i
			}
			return 0
		}
	}
	return 0
}

func sequenceLen(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead < 0xC0:
		return 0
	case lead < 0xE0:
		return 2
	case lead < 0xF0:
		return 3
	default:
		return 4
	}
}

// decodeBody reads r to the end and returns it as UTF-8 text. A charset
// declared in contentType is honoured; unknown labels fall back to UTF-8.
func decodeBody(r io.Reader, contentType string, logger *slog.Logger) (string, error) {
	var src io.Reader = &bomSkipper{r: r}

	if label := charsetLabel(contentType); label != "" {
		decoded, err := charset.NewReaderLabel(label, src)
		if err != nil {
			logger.Warn("fetch: unsupported charset, reading as utf-8",
				"charset", label,
				"error", err,
			)
		} else {
			src = decoded
		}
	}

	var out strings.Builder
	if _, err := io.Copy(&out, &utf8Sanitizer{r: src}); err != nil {
		return "", err
	}
	return out.String(), nil
}

// charsetLabel extracts a non-UTF-8 charset parameter from a Content-Type.
func charsetLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	label := strings.ToLower(strings.TrimSpace(params["charset"]))
	switch label {
	case "", "utf-8", "utf8", "us-ascii":
		return ""
	}
	return label
}
