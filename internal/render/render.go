// Package render draws pore log views for the terminal.
package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/JonMunkholm/porelog/internal/porelog"
)

// Colors follow the viewer page palette.
var (
	accent = lipgloss.Color("#2186eb")
	muted  = lipgloss.Color("#829ab1")
	border = lipgloss.Color("#9fb3c8")

	rootStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#486581"))
	enumStyle   = lipgloss.NewStyle().Foreground(muted).MarginRight(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	evenStyle   = cellStyle.Foreground(lipgloss.Color("#486581"))
	noteStyle   = lipgloss.NewStyle().Faint(true)
)

// Meta renders metadata as a tree. Nested objects and arrays become
// subtrees; scalars are shown as "key: value".
func Meta(meta porelog.Object) string {
	t := tree.Root("Metadata")
	if meta.Len() == 0 {
		t.Child(noteStyle.Render("(none)"))
	}
	addObject(t, meta)

	return t.
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle).
		RootStyle(rootStyle).
		String()
}

func addObject(t *tree.Tree, obj porelog.Object) {
	for _, f := range obj {
		addValue(t, f.Key, f.Value)
	}
}

func addValue(t *tree.Tree, label string, v any) {
	switch val := v.(type) {
	case porelog.Object:
		sub := tree.Root(keyStyle.Render(label) + noteStyle.Render(fmt.Sprintf(" {%d}", val.Len())))
		addObject(sub, val)
		t.Child(sub)
	case []any:
		sub := tree.Root(keyStyle.Render(label) + noteStyle.Render(fmt.Sprintf(" [%d]", len(val))))
		for i, item := range val {
			addValue(sub, strconv.Itoa(i), item)
		}
		t.Child(sub)
	default:
		t.Child(keyStyle.Render(label) + ": " + scalarText(v))
	}
}

func scalarText(v any) string {
	if v == nil {
		return "null"
	}
	return porelog.CellText(v)
}

// Table renders the view's records as a bordered table. At most maxRows
// rows are drawn when maxRows > 0; a note reports how many were left out.
// A view without records renders as an empty string.
func Table(view porelog.View, maxRows int) string {
	if !view.HasTable() {
		return ""
	}

	rows := view.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	data := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = porelog.CellText(cell)
		}
		data[i] = cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers(view.Header...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenStyle
			default:
				return cellStyle
			}
		})

	out := t.String()
	if hidden := len(view.Rows) - len(rows); hidden > 0 {
		out += "\n" + noteStyle.Render(fmt.Sprintf("... %d more rows", hidden))
	}
	return out
}
