package fetch

import "time"

// Origin records where a RawDocument came from.
type Origin string

const (
	OriginURL    Origin = "url"
	OriginInline Origin = "inline"
)

// RawDocument is unparsed CSV text. It is immutable once created.
type RawDocument struct {
	Text   string
	Origin Origin

	// SourceURL is the target the caller asked for; RequestURL is what was
	// actually requested (SourceURL behind the proxy prefix, if any).
	SourceURL  string
	RequestURL string

	StatusCode  int
	ContentType string

	// Bytes is the number of body bytes received before decoding.
	Bytes int64

	// Truncated is set when the resource is larger than the byte window.
	Truncated bool

	FetchedAt time.Time
}

// Inline wraps text supplied directly by the caller.
func Inline(text string) *RawDocument {
	return &RawDocument{
		Text:   text,
		Origin: OriginInline,
		Bytes:  int64(len(text)),
	}
}

// Len returns the length of the decoded text in bytes.
func (d *RawDocument) Len() int { return len(d.Text) }
