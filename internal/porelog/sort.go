package porelog

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// SortedBy returns a copy of v with rows stably ordered by column. Null
// markers always sort last, in either direction. An unknown column returns
// an unchanged copy. The receiver is never modified.
func (v View) SortedBy(column string, desc bool) View {
	out := View{
		Meta:   v.Meta,
		Header: append([]string(nil), v.Header...),
		Rows:   append([][]any(nil), v.Rows...),
	}
	if out.Header == nil {
		out.Header = []string{}
	}
	if out.Rows == nil {
		out.Rows = [][]any{}
	}

	col := indexOf(v.Header, column)
	if col < 0 {
		return out
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i][col], out.Rows[j][col]
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		c := compareCells(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func indexOf(header []string, column string) int {
	for i, h := range header {
		if h == column {
			return i
		}
	}
	return -1
}

// kindRank orders cells of different kinds: booleans, numbers, strings, then
// composite values.
func kindRank(v any) int {
	switch v.(type) {
	case bool:
		return 0
	case json.Number, int, float64:
		return 1
	case string:
		return 2
	default:
		return 3
	}
}

// compareCells returns -1, 0 or 1. Both values are non-nil.
func compareCells(a, b any) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}

	switch ra {
	case 0:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 1:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case 2:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(CellText(a), CellText(b))
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	case int:
		return float64(t)
	case float64:
		return t
	}
	return 0
}
