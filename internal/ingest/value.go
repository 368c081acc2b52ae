package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the inferred type of a cell.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "empty"
	}
}

// numberPattern matches the numeric literals that are converted to Number.
// A leading '+' is deliberately not accepted.
var numberPattern = regexp.MustCompile(`^-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?$`)

// maxSafeInteger bounds numeric conversion. Values at or beyond it lose
// integer precision in float64, so they are kept as strings.
const maxSafeInteger = 1 << 53

// FieldValue is a single typed cell.
type FieldValue struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
}

// Empty returns the value used for blank and missing cells.
func Empty() FieldValue { return FieldValue{Kind: KindEmpty} }

// String returns a String value. An empty s yields Empty().
func String(s string) FieldValue {
	if s == "" {
		return Empty()
	}
	return FieldValue{Kind: KindString, Str: s}
}

// Number returns a Number value.
func Number(n float64) FieldValue { return FieldValue{Kind: KindNumber, Num: n} }

// Bool returns a Boolean value.
func Bool(b bool) FieldValue { return FieldValue{Kind: KindBool, Bool: b} }

// Infer trims the cell and converts it to its most specific type.
func Infer(cell string) FieldValue {
	s := strings.TrimSpace(cell)
	switch s {
	case "":
		return Empty()
	case "true", "TRUE":
		return Bool(true)
	case "false", "FALSE":
		return Bool(false)
	}

	if numberPattern.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err == nil && n > -maxSafeInteger && n < maxSafeInteger {
			return Number(n)
		}
	}
	return String(s)
}

// IsEmpty reports whether the value is the empty-string value.
func (v FieldValue) IsEmpty() bool { return v.Kind == KindEmpty }

// String renders the value for display.
func (v FieldValue) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return formatNumber(v.Num)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Any returns the value as a plain Go value (string, float64 or bool).
func (v FieldValue) Any() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		return v.String()
	}
}

// Equal reports whether two values have the same kind and content.
func (v FieldValue) Equal(o FieldValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	default:
		return true
	}
}

// MarshalJSON encodes numbers and booleans natively and everything else as a
// string. Empty cells become "".
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.String())
	}
}

// UnmarshalJSON accepts a JSON scalar. null decodes to Empty().
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Empty()
	case float64:
		*v = Number(x)
	case bool:
		*v = Bool(x)
	case string:
		*v = String(x)
	default:
		return fmt.Errorf("ingest: unsupported cell value %s", data)
	}
	return nil
}

func formatNumber(n float64) string {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
