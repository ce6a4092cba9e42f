package porelog

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	var nilFile *os.File

	tests := []struct {
		name string
		r    io.Reader
	}{
		{name: "nil reader", r: nil},
		{name: "typed nil file", r: nilFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.r)
			if !errors.Is(err, ErrMissingFile) {
				t.Fatalf("Load() error = %v, want ErrMissingFile", err)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Load() error type = %T, want *LoadError", err)
			}
			if le.Kind != MissingFile {
				t.Errorf("Load() error kind = %v, want MissingFile", le.Kind)
			}
			if err.Error() != "no file provided" {
				t.Errorf("Load() error = %q, want %q", err.Error(), "no file provided")
			}
		})
	}
}

func TestLoadFile_EmptyPath(t *testing.T) {
	if _, err := LoadFile(""); !errors.Is(err, ErrMissingFile) {
		t.Errorf("LoadFile(\"\") error = %v, want ErrMissingFile", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantSub string
	}{
		{name: "plain text", input: "invalid json", wantSub: "invalid character 'i'"},
		{name: "empty", input: "", wantSub: "unexpected EOF"},
		{name: "truncated object", input: `{"HasData": true,`, wantSub: "EOF"},
		{name: "trailing garbage", input: `{"a":1} x`, wantSub: "invalid character 'x'"},
		{name: "two values", input: `{} {}`, wantSub: "unexpected data after top-level value"},
		{name: "missing colon", input: `{"a" 1}`, wantSub: "invalid character '1'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidJSON) {
				t.Fatalf("Load() error = %v, want ErrInvalidJSON", err)
			}
			if !strings.HasPrefix(err.Error(), "invalid JSON format: ") {
				t.Errorf("Load() error = %q, want prefix %q", err.Error(), "invalid JSON format: ")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Load() error = %q, want it to contain %q", err.Error(), tt.wantSub)
			}
			if errors.Unwrap(err) == nil {
				t.Error("Load() error should wrap the decoder diagnostic")
			}
		})
	}
}

func TestLoad_ValidJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "object",
			input: `{"key": "value"}`,
			want:  Object{{Key: "key", Value: "value"}},
		},
		{
			name:  "null",
			input: `null`,
			want:  nil,
		},
		{
			name:  "array",
			input: `[1, "a", true, null]`,
			want:  []any{json.Number("1"), "a", true, nil},
		},
		{
			name:  "scalar with whitespace",
			input: "  42 \n",
			want:  json.Number("42"),
		},
		{
			name:  "nested keeps order",
			input: `{"z": {"b": 1, "a": 2}, "y": []}`,
			want: Object{
				{Key: "z", Value: Object{{Key: "b", Value: json.Number("1")}, {Key: "a", Value: json.Number("2")}}},
				{Key: "y", Value: []any{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Load(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(doc.Root, tt.want) {
				t.Errorf("Load() = %#v, want %#v", doc.Root, tt.want)
			}
		})
	}
}

// The loaded document must encode back to the same JSON value the standard
// decoder sees.
func TestLoad_MatchesStandardDecoding(t *testing.T) {
	inputs := []string{
		`{"HasData":true,"SerialNumber":12345,"Data":[{"a":1,"b":"x"},{"c":null}]}`,
		`[{"k":[1,2,{"n":false}]}]`,
		`"text"`,
		`{"dup":1,"dup":2}`,
	}

	for _, in := range inputs {
		doc, err := LoadBytes([]byte(in))
		if err != nil {
			t.Fatalf("LoadBytes(%s) error = %v", in, err)
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal error = %v", err)
		}

		var got, want any
		if err := json.Unmarshal(encoded, &got); err != nil {
			t.Fatalf("Unmarshal(encoded) error = %v", err)
		}
		if err := json.Unmarshal([]byte(in), &want); err != nil {
			t.Fatalf("Unmarshal(input) error = %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip of %s = %v, want %v", in, got, want)
		}
	}
}

func TestLoad_DuplicateKeys(t *testing.T) {
	doc, err := LoadBytes([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	want := Object{
		{Key: "a", Value: json.Number("3")},
		{Key: "b", Value: json.Number("2")},
	}
	if !reflect.DeepEqual(doc.Root, want) {
		t.Errorf("LoadBytes() = %#v, want %#v", doc.Root, want)
	}
}

func TestLoad_TextDecoding(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  any
	}{
		{
			name:  "utf-8 bom",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":"b"}`)...),
			want:  Object{{Key: "a", Value: "b"}},
		},
		{
			name:  "utf-16le bom",
			input: []byte{0xFF, 0xFE, '"', 0, 'h', 0, 'i', 0, '"', 0},
			want:  "hi",
		},
		{
			name:  "invalid utf-8 replaced",
			input: []byte{'"', 'a', 0xFF, 'b', '"'},
			want:  "a\uFFFDb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := LoadBytes(tt.input)
			if err != nil {
				t.Fatalf("LoadBytes() error = %v", err)
			}
			if !reflect.DeepEqual(doc.Root, tt.want) {
				t.Errorf("LoadBytes() = %#v, want %#v", doc.Root, tt.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLoad_ReadFailure(t *testing.T) {
	_, err := Load(failingReader{})
	if !errors.Is(err, ErrReadFailed) {
		t.Fatalf("Load() error = %v, want ErrReadFailed", err)
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("Load() error = %q, want underlying cause", err.Error())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	if err := os.WriteFile(path, []byte(`{"HasData":false}`), 0o600); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	want := Object{{Key: "HasData", Value: false}}
	if !reflect.DeepEqual(doc.Root, want) {
		t.Errorf("LoadFile() = %#v, want %#v", doc.Root, want)
	}

	if _, err := LoadFile(filepath.Join(dir, "nope.json")); !errors.Is(err, ErrMissingFile) {
		t.Errorf("LoadFile(missing) error = %v, want ErrMissingFile", err)
	}
}

func TestObject_MarshalJSONKeepsOrder(t *testing.T) {
	obj := Object{
		{Key: "z", Value: 1},
		{Key: "a", Value: "two"},
		{Key: "m", Value: nil},
	}
	got, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"z":1,"a":"two","m":null}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}

	var nilObj Object
	got, _ = json.Marshal(nilObj)
	if string(got) != "{}" {
		t.Errorf("Marshal(nil Object) = %s, want {}", got)
	}
}

func TestObject_UnmarshalJSON(t *testing.T) {
	var obj Object
	if err := json.Unmarshal([]byte(`{"b":1,"a":[true]}`), &obj); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := obj.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("Keys() = %v, want [b a]", got)
	}

	if err := json.Unmarshal([]byte(`[1]`), &obj); err == nil {
		t.Error("Unmarshal(array) into Object should fail")
	}
}
