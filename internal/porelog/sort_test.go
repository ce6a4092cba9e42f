package porelog

import (
	"encoding/json"
	"reflect"
	"testing"
)

func indexColumn(v View) []any {
	out := make([]any, len(v.Rows))
	for i, row := range v.Rows {
		out[i] = row[0]
	}
	return out
}

func TestView_SortedBy(t *testing.T) {
	doc := mustLoad(t, `{"HasData":true,"Data":[
		{"v":10,"s":"b"},
		{"s":"a"},
		{"v":2,"s":"c"},
		{"v":10,"s":"a"},
		{"v":-1}
	]}`)
	view := Transform(doc)

	tests := []struct {
		name   string
		column string
		desc   bool
		want   []any
	}{
		{name: "numbers ascending, nulls last", column: "v", want: []any{5, 3, 1, 4, 2}},
		{name: "numbers descending, nulls last", column: "v", desc: true, want: []any{1, 4, 3, 5, 2}},
		{name: "strings ascending", column: "s", want: []any{2, 4, 1, 3, 5}},
		{name: "index descending", column: "Index", desc: true, want: []any{5, 4, 3, 2, 1}},
		{name: "unknown column keeps order", column: "missing", want: []any{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := view.SortedBy(tt.column, tt.desc)
			if idx := indexColumn(got); !reflect.DeepEqual(idx, tt.want) {
				t.Errorf("SortedBy(%q, %v) order = %v, want %v", tt.column, tt.desc, idx, tt.want)
			}
		})
	}

	// The receiver keeps its original order.
	if idx := indexColumn(view); !reflect.DeepEqual(idx, []any{1, 2, 3, 4, 5}) {
		t.Errorf("SortedBy mutated receiver: %v", idx)
	}
}

func TestView_SortedByMixedKinds(t *testing.T) {
	view := View{
		Header: []string{"Index", "m"},
		Rows: [][]any{
			{1, "text"},
			{2, json.Number("3")},
			{3, true},
			{4, nil},
			{5, Object{{Key: "k", Value: 1}}},
			{6, false},
		},
	}
	got := indexColumn(view.SortedBy("m", false))
	want := []any{6, 3, 2, 1, 5, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedBy mixed = %v, want %v", got, want)
	}
}

func TestView_SortedByEmpty(t *testing.T) {
	got := EmptyView().SortedBy("Index", true)
	if !reflect.DeepEqual(got, EmptyView()) {
		t.Errorf("SortedBy on empty view = %#v", got)
	}
}
