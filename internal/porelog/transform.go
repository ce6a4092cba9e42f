package porelog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Recognized document fields.
const (
	FieldHasData = "HasData"
	FieldData    = "Data"

	// IndexColumn is the synthetic first column holding the 1-based record position.
	IndexColumn = "Index"
)

// View is the transformed document handed to the presentation layer.
type View struct {
	Meta   Object   `json:"meta"`
	Header []string `json:"tableHeader"`
	Rows   [][]any  `json:"tableData"`
}

// EmptyView returns the default view: no metadata, no header, no rows.
func EmptyView() View {
	return View{
		Meta:   Object{},
		Header: []string{},
		Rows:   [][]any{},
	}
}

// HasTable reports whether the view carries any data rows.
func (v View) HasTable() bool {
	return len(v.Rows) > 0
}

// MissingPolicy decides when a record field counts as missing in a row.
type MissingPolicy int

const (
	// MissingAbsent emits the null marker only when the record lacks the key.
	MissingAbsent MissingPolicy = iota
	// MissingFalsy also treats false, 0, "" and null as missing. This matches
	// the behavior of the first viewer release, where a legitimate 0 or false
	// was shown as empty.
	MissingFalsy
)

// ParseMissingPolicy maps "absent" and "falsy" to a policy.
func ParseMissingPolicy(s string) (MissingPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absent":
		return MissingAbsent, true
	case "falsy":
		return MissingFalsy, true
	default:
		return MissingAbsent, false
	}
}

func (p MissingPolicy) String() string {
	if p == MissingFalsy {
		return "falsy"
	}
	return "absent"
}

// Options tunes Transform.
type Options struct {
	Missing MissingPolicy
}

// Transform converts a document into a View using the default options.
func Transform(doc Document) View {
	return TransformWith(doc, Options{})
}

// TransformWith converts a document into a View. It never fails: inputs that
// do not look like a pore log degrade to an empty table with whatever
// metadata is available.
func TransformWith(doc Document, opts Options) View {
	view := EmptyView()

	root, ok := doc.Object()
	if !ok {
		return view
	}
	view.Meta = root.without(FieldData)

	hasData, _ := root.Get(FieldHasData)
	if b, ok := hasData.(bool); !ok || !b {
		return view
	}
	data, _ := root.Get(FieldData)
	records, ok := data.([]any)
	if !ok || len(records) == 0 {
		return view
	}

	view.Header = buildHeader(records)
	view.Rows = make([][]any, len(records))
	for i, rec := range records {
		obj, _ := rec.(Object)
		view.Rows[i] = buildRow(i, obj, view.Header, opts.Missing)
	}
	return view
}

// buildHeader returns Index followed by every record key in first-seen order.
func buildHeader(records []any) []string {
	header := []string{IndexColumn}
	seen := map[string]struct{}{IndexColumn: {}}
	for _, rec := range records {
		obj, ok := rec.(Object)
		if !ok {
			continue
		}
		for _, f := range obj {
			if _, dup := seen[f.Key]; dup {
				continue
			}
			seen[f.Key] = struct{}{}
			header = append(header, f.Key)
		}
	}
	return header
}

func buildRow(i int, rec Object, header []string, policy MissingPolicy) []any {
	row := make([]any, len(header))
	for c, col := range header {
		if col == IndexColumn {
			row[c] = i + 1
			continue
		}
		v, ok := rec.Get(col)
		if !ok || (policy == MissingFalsy && isFalsy(v)) {
			row[c] = nil
			continue
		}
		row[c] = v
	}
	return row
}

// isFalsy reports the scalar values a browser treats as false.
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		return err == nil && f == 0
	case int:
		return t == 0
	case float64:
		return t == 0
	default:
		return false
	}
}
