package ingest

import (
	"encoding/json"
	"testing"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FieldValue
	}{
		{"integer", "42", Number(42)},
		{"negative integer", "-7", Number(-7)},
		{"decimal", "3.14", Number(3.14)},
		{"leading decimal point", ".5", Number(0.5)},
		{"trailing decimal point", "5.", Number(5)},
		{"exponent", "1e3", Number(1000)},
		{"negative exponent", "2.5E-2", Number(0.025)},
		{"surrounding whitespace", "  42  ", Number(42)},
		{"plus sign stays string", "+5", String("+5")},
		{"thousands separator stays string", "1,000", String("1,000")},
		{"currency stays string", "$12", String("$12")},
		{"beyond safe integer stays string", "9007199254740993", String("9007199254740993")},
		{"overflow stays string", "1e400", String("1e400")},
		{"trimmed string", " hello ", String("hello")},
		{"empty", "", Empty()},
		{"whitespace only", "   ", Empty()},
		{"true lower", "true", Bool(true)},
		{"true upper", "TRUE", Bool(true)},
		{"false lower", "false", Bool(false)},
		{"mixed case bool stays string", "True", String("True")},
		{"yes stays string", "yes", String("yes")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Infer(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("Infer(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFieldValue_String(t *testing.T) {
	tests := []struct {
		v    FieldValue
		want string
	}{
		{Number(42), "42"},
		{Number(0.025), "0.025"},
		{Number(1e6), "1000000"},
		{Bool(true), "true"},
		{String("x"), "x"},
		{Empty(), ""},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldValue_JSON(t *testing.T) {
	row := NewRow([]string{"n", "s", "b", "e"}, []FieldValue{Number(1.5), String("hi"), Bool(false), Empty()})

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"n":1.5,"s":"hi","b":false,"e":""}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var decoded Row
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.Equal(row) {
		t.Errorf("decoded row %v differs from %v", decoded.Strings(), row.Strings())
	}
}

func TestRow_UnmarshalKeepsKeyOrder(t *testing.T) {
	var row Row
	if err := json.Unmarshal([]byte(`{"z":1,"a":"x","m":null}`), &row); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	cols := row.Columns()
	if len(cols) != 3 || cols[0] != "z" || cols[1] != "a" || cols[2] != "m" {
		t.Errorf("Columns() = %q, want [z a m]", cols)
	}
	if v, _ := row.Get("m"); !v.IsEmpty() {
		t.Errorf("null should decode to empty, got %#v", v)
	}
}

func TestRow_UnmarshalRejectsNested(t *testing.T) {
	var row Row
	if err := json.Unmarshal([]byte(`{"a":[1,2]}`), &row); err == nil {
		t.Fatal("expected error for nested value")
	}
	if err := json.Unmarshal([]byte(`[1]`), &row); err == nil {
		t.Fatal("expected error for non-object row")
	}
}

func TestAlign(t *testing.T) {
	rows := []Row{
		NewRow([]string{"a"}, []FieldValue{Number(1)}),
		NewRow([]string{"b", "a"}, []FieldValue{String("x"), Number(2)}),
	}
	cols := ColumnsOf(rows)
	if len(cols) != 2 || cols[0] != "a" || cols[1] != "b" {
		t.Fatalf("ColumnsOf() = %q, want [a b]", cols)
	}

	aligned := Align(cols, rows)
	if v, _ := aligned[0].Get("b"); !v.IsEmpty() {
		t.Errorf("missing column should be empty, got %#v", v)
	}
	if v, _ := aligned[1].Get("a"); !v.Equal(Number(2)) {
		t.Errorf("aligned a = %#v, want 2", v)
	}
	if aligned[1].Columns()[0] != "a" {
		t.Errorf("aligned row should follow shared column order")
	}
}
