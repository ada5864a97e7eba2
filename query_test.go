package hxel

import (
	"slices"
	"testing"

	"github.com/pthm/hxel/lib/dom"
)

type formHost struct {
	*Element
	layouts [][2]float64
}

func (h *formHost) ConnectedCallback() {
	root := h.Node().AttachShadow()
	if len(root.Children()) == 0 {
		input := dom.NewElement("input")
		input.SetAttribute("value", "initial")
		root.Append(input, dom.NewElement("output"), dom.NewElement("output"))
	}
}

func (h *formHost) Layout(cols, rows float64) {
	h.layouts = append(h.layouts, [2]float64{cols, rows})
}

func newFormClass(tag string) *Class {
	return NewClass(tag).WithHost(func(el *Element) Host { return &formHost{Element: el} })
}

func TestQueryAll(t *testing.T) {
	cls := newFormClass("x-query")
	td := NewTestDocument(cls)
	el, _ := td.Mount("x-query")

	tests := []struct {
		query string
		want  int
	}{
		{":host", 1},
		{":root", 1},
		{":light-host", 1},
		{"output", 2},
		{"input, output", 3},
		{"", 0},
		{"li", 0},
	}
	for _, tt := range tests {
		if got := QueryAll(el, tt.query); len(got) != tt.want {
			t.Errorf("QueryAll(%q) = %d nodes, want %d", tt.query, len(got), tt.want)
		}
	}
	if Query(el, ":host") != el.Node() {
		t.Error("Query(:host) should be the element node")
	}

	nested := td.Registry.MustCreate("x-query")
	el.Node().ShadowRoot().Append(nested.Node())
	if Query(nested, ":light-host") != el.Node() {
		t.Error("Query(:light-host) should climb to the outermost host")
	}
}

func TestElementQueries(t *testing.T) {
	cls := newFormClass("x-query-props")
	input := ElementQuery(cls, "input", "input")
	outputs := ElementsQuery(cls, "outputs", "output")
	BindElement(cls, "result", "output", "textContent")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-query-props")

	if got := input.Get(el); got == nil || got.TagName() != "input" {
		t.Errorf("input = %v", got)
	}
	if got := outputs.Get(el); len(got) != 2 {
		t.Errorf("outputs = %v", got)
	}
	el.Set("result", 42)
	for _, o := range outputs.Get(el) {
		if o.TextContent() != "42" {
			t.Errorf("output text = %q, want 42", o.TextContent())
		}
	}
	if got := el.Get("result"); got != "42" {
		t.Errorf("result = %v, want 42", got)
	}
}

func TestObserveElementProperty(t *testing.T) {
	cls := newFormClass("x-query-sync")
	ObserveElementProperty(cls, "query", "input", "value", "")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-query-sync")
	input := el.Node().ShadowRoot().QuerySelector("input")

	if got := el.Get("query"); got != "initial" {
		t.Errorf("query after connect = %v, want initial", got)
	}

	input.SetAttribute("value", "typed")
	input.DispatchEvent(dom.NewEvent("change", dom.EventInit{}))
	if got := el.Get("query"); got != "typed" {
		t.Errorf("query after change = %v, want typed", got)
	}

	el.Set("query", "programmatic")
	if got := input.Attr("value"); got != "programmatic" {
		t.Errorf("input value = %q, want programmatic", got)
	}

	el.Node().Remove()
	td.Doc.Body().Append(el.Node())
	if n := input.ListenerCount("change"); n != 1 {
		t.Errorf("ListenerCount(change) = %d, want 1", n)
	}
}

func TestCSSVar(t *testing.T) {
	cls := newFormClass("x-query-css")
	gap := CSSVar(cls, "gapSize")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-query-css")
	gap.Set(el, "4px")

	if got := el.Node().StyleProperty("--gap-size"); got != "4px" {
		t.Errorf("--gap-size = %q, want 4px", got)
	}
	if got := gap.Get(el); got != "4px" {
		t.Errorf("gap.Get() = %q, want 4px", got)
	}
}

func TestObserveCSSVars(t *testing.T) {
	cls := newFormClass("x-query-vars")
	ObserveCSSVars(cls, "Layout", "--cols", "--rows")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-query-vars")
	host := el.Host().(*formHost)

	el.Node().SetStyleProperty("--cols", "3")
	if len(host.layouts) != 0 {
		t.Fatalf("Layout ran before every variable was set: %v", host.layouts)
	}
	el.Node().SetStyleProperty("--rows", "2")
	el.Node().SetStyleProperty("color", "red")

	want := [][2]float64{{3, 2}, {3, 2}}
	if !slices.Equal(host.layouts, want) {
		t.Errorf("layouts = %v, want %v", host.layouts, want)
	}

	el.Node().Remove()
	el.Node().SetStyleProperty("--cols", "4")
	if len(host.layouts) != 2 {
		t.Errorf("Layout ran while disconnected: %v", host.layouts)
	}

	td.Doc.Body().Append(el.Node())
	if last := host.layouts[len(host.layouts)-1]; last != [2]float64{4, 2} {
		t.Errorf("Layout on reconnect = %v, want [4 2]", last)
	}
}
