package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/porelog/internal/porelog"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func sampleView(t *testing.T) porelog.View {
	t.Helper()
	doc, err := porelog.LoadBytes([]byte(`{"Device":"<MinION>","Flowcell":{"ID":"FAB1","Pores":512},"HasData":true,"Data":[{"x":1},{"x":2,"y":"a&b"}]}`))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	return porelog.Transform(doc)
}

func TestViewer_Empty(t *testing.T) {
	out := render(t, Viewer(ViewerData{View: porelog.EmptyView()}))
	if !strings.Contains(out, "No file loaded.") {
		t.Errorf("empty viewer missing placeholder: %s", out)
	}
	if strings.Contains(out, "<table") || strings.Contains(out, "/api/export") {
		t.Errorf("empty viewer renders table or export: %s", out)
	}
}

func TestViewer_Loaded(t *testing.T) {
	out := render(t, Viewer(ViewerData{FileName: "run<1>.json", View: sampleView(t), SortBy: "x", Desc: true}))

	checks := []string{
		"run&lt;1&gt;.json",
		`href="/api/export"`,
		"data-reset",
		"&lt;MinION&gt;",
		"<summary>Flowcell</summary>",
		"<td>a&amp;b</td>",
		`data-sort="dir=asc&amp;sort=x"`,
		"&#9660;",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("viewer output missing %q", want)
		}
	}
	if strings.Contains(out, "<MinION>") {
		t.Error("metadata value not escaped")
	}
}

func TestViewer_MetaOnly(t *testing.T) {
	doc, _ := porelog.LoadBytes([]byte(`{"HasData":false,"Note":"idle"}`))
	out := render(t, Viewer(ViewerData{FileName: "idle.json", View: porelog.Transform(doc)}))
	if !strings.Contains(out, "Metadata") || strings.Contains(out, "<table") {
		t.Errorf("meta-only viewer = %s", out)
	}
	if strings.Contains(out, "/api/export") {
		t.Error("export link shown without a table")
	}
}

func TestErrorAlert(t *testing.T) {
	out := render(t, ErrorAlert("File is not valid JSON", "Check the file", "FILE002"))
	for _, want := range []string{`role="alert"`, "File is not valid JSON", "Check the file", "Code: FILE002", "data-dismiss"} {
		if !strings.Contains(out, want) {
			t.Errorf("alert missing %q: %s", want, out)
		}
	}
}

func TestPage(t *testing.T) {
	out := render(t, Page(PageData{Title: "Pore Log Viewer", MaxFileSize: 1024, Viewer: ViewerData{View: porelog.EmptyView()}}))
	for _, want := range []string{"<!DOCTYPE html>", "<title>Pore Log Viewer</title>", `data-max-size="1024"`, `id="viewer"`, "/api/load"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}
