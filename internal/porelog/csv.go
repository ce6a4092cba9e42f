package porelog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultCSVFilename is used when the source file name is unknown.
const DefaultCSVFilename = "table-content.csv"

// CSVMode selects how cells are written.
type CSVMode int

const (
	// CSVQuoted quotes cells containing commas, quotes or line breaks (RFC 4180).
	CSVQuoted CSVMode = iota
	// CSVRaw joins cell text with commas and no escaping. A cell containing a
	// comma or newline produces a malformed row; kept for byte-for-byte
	// compatibility with exports made by the first viewer release.
	CSVRaw
)

// ParseCSVMode maps "quoted" and "raw" to a mode.
func ParseCSVMode(s string) (CSVMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "quoted", "rfc4180":
		return CSVQuoted, true
	case "raw":
		return CSVRaw, true
	default:
		return CSVQuoted, false
	}
}

func (m CSVMode) String() string {
	if m == CSVRaw {
		return "raw"
	}
	return "quoted"
}

// ToCSV serializes the table of v. It returns "" when there are no rows,
// otherwise the header line and one line per row separated by "\n", with no
// trailing newline.
func ToCSV(v View) string {
	return FormatCSV(v, CSVQuoted)
}

// ToCSVRaw is ToCSV without any quoting.
func ToCSVRaw(v View) string {
	return FormatCSV(v, CSVRaw)
}

// FormatCSV serializes the table of v using mode.
func FormatCSV(v View, mode CSVMode) string {
	if len(v.Rows) == 0 {
		return ""
	}

	records := make([][]string, 0, len(v.Rows)+1)
	records = append(records, v.Header)
	for _, row := range v.Rows {
		rec := make([]string, len(row))
		for i, cell := range row {
			rec[i] = CellText(cell)
		}
		records = append(records, rec)
	}

	if mode == CSVRaw {
		lines := make([]string, len(records))
		for i, rec := range records {
			lines[i] = strings.Join(rec, ",")
		}
		return strings.Join(lines, "\n")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Writing to a bytes.Buffer cannot fail.
	_ = w.WriteAll(records)
	return strings.TrimSuffix(buf.String(), "\n")
}

// WriteCSV writes FormatCSV(v, mode) to w.
func WriteCSV(w io.Writer, v View, mode CSVMode) error {
	if _, err := io.WriteString(w, FormatCSV(v, mode)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// CellText converts a cell value to its CSV text. The null marker becomes
// an empty string; objects and arrays are written as compact JSON.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// CSVFilename derives the export file name from the source file name by
// replacing its extension with .csv. Directory parts are dropped.
func CSVFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return DefaultCSVFilename
	}
	return base + ".csv"
}
