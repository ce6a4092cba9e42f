// Package templates renders the viewer's HTML as templ components.
//
// The page is a single screen: a drop zone with a file picker, the metadata
// tree of the loaded file, the sortable record table and an export link.
// Everything below the drop zone lives in the #viewer element and is
// re-rendered by [Viewer] after every load, sort or reset.
package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/porelog/internal/porelog"
)

// Alert is a user-facing error shown above the table.
type Alert struct {
	Message string
	Action  string
	Code    string
}

// ViewerData is everything the #viewer element shows.
type ViewerData struct {
	FileName string
	View     porelog.View
	SortBy   string
	Desc     bool
	Alert    *Alert
}

// PageData is the full page.
type PageData struct {
	Title       string
	MaxFileSize int64
	Viewer      ViewerData
}

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Page renders the complete viewer document.
func Page(p PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(p.Title)
		h.raw(`</title><style>`)
		h.raw(pageCSS)
		h.raw(`</style></head><body><header><h1>`)
		h.text(p.Title)
		h.raw(`</h1></header><main>`)
		h.raw(`<div id="dropzone" class="dropzone" data-max-size="`)
		h.text(strconv.FormatInt(p.MaxFileSize, 10))
		h.raw(`"><p>Drop a pore log JSON file here or</p>`)
		h.raw(`<label class="button">Choose file<input id="file-input" type="file" accept=".json,application/json" hidden></label>`)
		h.raw(`</div><div id="viewer">`)
		h.component(ctx, Viewer(p.Viewer))
		h.raw(`</div></main><script>`)
		h.raw(pageJS)
		h.raw(`</script></body></html>`)
		return h.err
	})
}

// Viewer renders the content of the #viewer element.
func Viewer(d ViewerData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if d.Alert != nil {
			h.component(ctx, ErrorAlert(d.Alert.Message, d.Alert.Action, d.Alert.Code))
		}

		h.raw(`<section class="toolbar">`)
		if d.FileName != "" {
			h.raw(`<span class="file-name">`)
			h.text(d.FileName)
			h.raw(`</span>`)
		}
		if d.View.HasTable() {
			h.raw(`<a class="button" href="/api/export" download>Export CSV</a>`)
		}
		if d.FileName != "" || d.View.Meta.Len() > 0 {
			h.raw(`<button class="button secondary" type="button" data-reset>Clear</button>`)
		}
		h.raw(`</section>`)

		if d.View.Meta.Len() > 0 {
			h.raw(`<section class="meta"><h2>Metadata</h2>`)
			h.component(ctx, MetaTree(d.View.Meta))
			h.raw(`</section>`)
		}

		if d.View.HasTable() {
			h.raw(`<section class="records"><h2>Records</h2>`)
			h.component(ctx, Table(d.View, d.SortBy, d.Desc))
			h.raw(`</section>`)
		} else if d.FileName == "" && d.View.Meta.Len() == 0 && d.Alert == nil {
			h.raw(`<p class="empty">No file loaded.</p>`)
		}
		return h.err
	})
}

// MetaTree renders metadata as nested lists. Objects and arrays become
// collapsible subtrees; scalars are shown inline.
func MetaTree(meta porelog.Object) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		writeObject(h, meta)
		return h.err
	})
}

func writeObject(h *htmlWriter, obj porelog.Object) {
	h.raw(`<ul class="tree">`)
	for _, f := range obj {
		writeNode(h, f.Key, f.Value)
	}
	h.raw(`</ul>`)
}

func writeNode(h *htmlWriter, label string, v any) {
	switch t := v.(type) {
	case porelog.Object:
		h.raw(`<li><details open><summary>`)
		h.text(label)
		h.raw(`</summary>`)
		writeObject(h, t)
		h.raw(`</details></li>`)
	case []any:
		h.raw(`<li><details><summary>`)
		h.text(label)
		h.raw(` <span class="count">[`)
		h.text(strconv.Itoa(len(t)))
		h.raw(`]</span></summary><ul class="tree">`)
		for i, item := range t {
			writeNode(h, strconv.Itoa(i), item)
		}
		h.raw(`</ul></details></li>`)
	default:
		h.raw(`<li><span class="key">`)
		h.text(label)
		h.raw(`</span>: <span class="value">`)
		if v == nil {
			h.raw(`<em>null</em>`)
		} else {
			h.text(porelog.CellText(v))
		}
		h.raw(`</span></li>`)
	}
}

// Table renders the record table. Header cells link to the view sorted by
// that column; the active column toggles its direction.
func Table(v porelog.View, sortBy string, desc bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table><thead><tr>`)
		for _, col := range v.Header {
			nextDesc := col == sortBy && !desc
			h.raw(`<th><a href="#" data-sort="`)
			h.text(sortQuery(col, nextDesc))
			h.raw(`">`)
			h.text(col)
			if col == sortBy {
				if desc {
					h.raw(` &#9660;`)
				} else {
					h.raw(` &#9650;`)
				}
			}
			h.raw(`</a></th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range v.Rows {
			h.raw(`<tr>`)
			for _, cell := range row {
				h.raw(`<td>`)
				h.text(porelog.CellText(cell))
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func sortQuery(col string, desc bool) string {
	q := url.Values{}
	q.Set("sort", col)
	if desc {
		q.Set("dir", "desc")
	} else {
		q.Set("dir", "asc")
	}
	return q.Encode()
}

// ErrorAlert renders a dismissible error message with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><button type="button" class="close" data-dismiss aria-label="Dismiss">&times;</button><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<small>Code: `)
			h.text(code)
			h.raw(`</small>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
