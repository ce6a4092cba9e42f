package porelog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestToCSV_Empty(t *testing.T) {
	tests := []struct {
		name string
		view View
	}{
		{name: "empty view", view: EmptyView()},
		{name: "zero value", view: View{}},
		{name: "header without rows", view: View{Header: []string{"Index", "a"}, Rows: [][]any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToCSV(tt.view); got != "" {
				t.Errorf("ToCSV() = %q, want empty", got)
			}
			if got := ToCSVRaw(tt.view); got != "" {
				t.Errorf("ToCSVRaw() = %q, want empty", got)
			}
		})
	}
}

func TestToCSV_Basic(t *testing.T) {
	view := View{
		Header: []string{"Index", "x"},
		Rows:   [][]any{{1, "foo"}},
	}
	if got, want := ToCSV(view), "Index,x\n1,foo"; got != want {
		t.Errorf("ToCSV() = %q, want %q", got, want)
	}
	if got, want := ToCSVRaw(view), "Index,x\n1,foo"; got != want {
		t.Errorf("ToCSVRaw() = %q, want %q", got, want)
	}
}

func TestToCSV_FromDocument(t *testing.T) {
	doc := mustLoad(t, `{"HasData":true,"Data":[{"a":1,"b":2.5},{"b":true,"c":"z"}]}`)
	got := ToCSV(Transform(doc))
	want := "Index,a,b,c\n1,1,2.5,\n2,,true,z"
	if got != want {
		t.Errorf("ToCSV() = %q, want %q", got, want)
	}
}

// Raw output reproduces the original unescaped join: a comma inside a value
// shifts every following column. Quoted output is the RFC 4180 fix.
func TestToCSV_Quoting(t *testing.T) {
	view := View{
		Header: []string{"Index", "note", "quote", "lines"},
		Rows:   [][]any{{1, "a,b", `say "hi"`, "one\ntwo"}},
	}

	wantQuoted := "Index,note,quote,lines\n1,\"a,b\",\"say \"\"hi\"\"\",\"one\ntwo\""
	if got := ToCSV(view); got != wantQuoted {
		t.Errorf("ToCSV() = %q, want %q", got, wantQuoted)
	}

	wantRaw := "Index,note,quote,lines\n1,a,b,say \"hi\",one\ntwo"
	if got := ToCSVRaw(view); got != wantRaw {
		t.Errorf("ToCSVRaw() = %q, want %q", got, wantRaw)
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"number literal", json.Number("1.50"), "1.50"},
		{"int", 42, "42"},
		{"float", 0.25, "0.25"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"object", Object{{Key: "b", Value: 1}, {Key: "a", Value: "x"}}, `{"b":1,"a":"x"}`},
		{"array", []any{json.Number("1"), nil, "s"}, `[1,null,"s"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellText(tt.in); got != tt.want {
				t.Errorf("CellText(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriteCSV(t *testing.T) {
	view := View{Header: []string{"Index", "v"}, Rows: [][]any{{1, "a,b"}}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, view, CSVQuoted); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got, want := buf.String(), "Index,v\n1,\"a,b\""; got != want {
		t.Errorf("WriteCSV() = %q, want %q", got, want)
	}

	if err := WriteCSV(errWriter{}, view, CSVRaw); err == nil {
		t.Error("WriteCSV() expected error from failing writer")
	}
}

func TestParseCSVMode(t *testing.T) {
	tests := []struct {
		in     string
		want   CSVMode
		wantOK bool
	}{
		{"", CSVQuoted, true},
		{"quoted", CSVQuoted, true},
		{"RFC4180", CSVQuoted, true},
		{" raw ", CSVRaw, true},
		{"tsv", CSVQuoted, false},
	}
	for _, tt := range tests {
		got, ok := ParseCSVMode(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseCSVMode(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCSVFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"run.json", "run.csv"},
		{"pore.log.json", "pore.log.csv"},
		{"noext", "noext.csv"},
		{"/tmp/uploads/run.json", "run.csv"},
		{`C:\logs\run.JSON`, "run.csv"},
		{"", "table-content.csv"},
		{"   ", "table-content.csv"},
		{".json", "table-content.csv"},
	}
	for _, tt := range tests {
		if got := CSVFilename(tt.in); got != tt.want {
			t.Errorf("CSVFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
