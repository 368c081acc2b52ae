package fetch

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMSkipper(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
		{
			name:     "shorter than a BOM",
			input:    []byte("a"),
			expected: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(&bomSkipper{r: bytes.NewReader(tt.input)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "valid ASCII",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "valid multibyte",
			input:    []byte("Tromsø,Zürich,東京"),
			expected: "Tromsø,Zürich,東京",
		},
		{
			name:     "invalid single byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
		{
			name:     "truncated sequence at end",
			input:    []byte{'a', 0xE6, 0x9D},
			expected: "a??",
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(&utf8Sanitizer{r: bytes.NewReader(tt.input)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

// A multi-byte rune split across reads must survive intact.
func TestUTF8Sanitizer_SplitReads(t *testing.T) {
	input := "name\nTromsø\n東京\n"
	result, err := io.ReadAll(&utf8Sanitizer{r: iotest.OneByteReader(strings.NewReader(input))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != input {
		t.Errorf("got %q, want %q", string(result), input)
	}
}

func TestIncompleteTail(t *testing.T) {
	tests := []struct {
		data []byte
		want int
	}{
		{[]byte("abc"), 0},
		{[]byte{'a', 0xC3}, 1},             // first byte of ø
		{[]byte{'a', 0xC3, 0xB8}, 0},       // complete ø
		{[]byte{'a', 0xE6, 0x9D}, 2},       // two of three bytes of 東
		{[]byte{0xF0, 0x9F, 0x98}, 3},      // three of four bytes of an emoji
		{[]byte{0xF0, 0x9F, 0x98, 0x80}, 0}, // complete emoji
		{nil, 0},
	}
	for _, tt := range tests {
		if got := incompleteTail(tt.data); got != tt.want {
			t.Errorf("incompleteTail(%v) = %d, want %d", tt.data, got, tt.want)
		}
	}
}

func TestCharsetLabel(t *testing.T) {
	tests := map[string]string{
		"":                               "",
		"text/csv":                       "",
		"text/csv; charset=utf-8":        "",
		"text/csv; charset=UTF-8":        "",
		"text/csv; charset=ISO-8859-1":   "iso-8859-1",
		"text/csv; charset=windows-1252": "windows-1252",
		"not a media type;;":             "",
	}
	for in, want := range tests {
		if got := charsetLabel(in); got != want {
			t.Errorf("charsetLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeBody_UnknownCharsetFallsBack(t *testing.T) {
	text, err := decodeBody(strings.NewReader("a,b\n"), "text/csv; charset=x-made-up", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "a,b\n" {
		t.Errorf("got %q", text)
	}
}

func BenchmarkSanitizeUTF8(b *testing.B) {
	valid := bytes.Repeat([]byte("1001,John Doe,john@example.com,2024-01-15\n"), 1000)
	invalid := bytes.Repeat([]byte{'a', 0x80, 'b', '\n'}, 10000)

	b.Run("valid", func(b *testing.B) {
		b.SetBytes(int64(len(valid)))
		for i := 0; i < b.N; i++ {
			sanitizeUTF8(valid)
		}
	})
	b.Run("invalid", func(b *testing.B) {
		b.SetBytes(int64(len(invalid)))
		for i := 0; i < b.N; i++ {
			sanitizeUTF8(invalid)
		}
	})
}

func BenchmarkDecodeBody(b *testing.B) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, bytes.Repeat([]byte("1001,Zürich,12.5,true\n"), 5000)...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := decodeBody(bytes.NewReader(data), "", logger); err != nil {
			b.Fatal(err)
		}
	}
}
