package dom

import (
	"bytes"
	"context"
	"testing"
)

type recorder struct {
	events  []string
	observe map[string]bool
}

func (r *recorder) Connected()    { r.events = append(r.events, "connected") }
func (r *recorder) Disconnected() { r.events = append(r.events, "disconnected") }
func (r *recorder) AttributeChanged(name string, old, value *string) {
	str := func(p *string) string {
		if p == nil {
			return "<nil>"
		}
		return *p
	}
	r.events = append(r.events, "attr "+name+" "+str(old)+"->"+str(value))
}
func (r *recorder) Observes(name string) bool { return r.observe[name] }

func TestAttributes(t *testing.T) {
	n := NewElement("DIV")
	if n.TagName() != "div" {
		t.Errorf("TagName() = %q, want div", n.TagName())
	}

	n.SetAttribute("Label", "hi")
	if v, ok := n.GetAttribute("label"); !ok || v != "hi" {
		t.Errorf("GetAttribute(label) = %q, %v", v, ok)
	}

	n.ToggleAttribute("open", true)
	if !n.HasAttribute("open") {
		t.Error("expected open attribute")
	}
	n.ToggleAttribute("open", false)
	if n.HasAttribute("open") {
		t.Error("expected open attribute removed")
	}

	n.RemoveAttribute("label")
	if len(n.Attributes()) != 0 {
		t.Errorf("Attributes() = %v, want none", n.Attributes())
	}
}

func TestCustomLifecycle(t *testing.T) {
	doc := NewDocument()
	r := &recorder{observe: map[string]bool{"label": true}}
	el := NewElement("x-rec")
	el.SetCustom(r)

	el.SetAttribute("label", "a")
	el.SetAttribute("other", "b")
	doc.Body().Append(el)
	el.SetAttribute("label", "a")
	el.RemoveAttribute("label")
	el.Remove()

	want := []string{
		"attr label <nil>->a",
		"connected",
		"attr label a->a",
		"attr label a-><nil>",
		"disconnected",
	}
	if len(r.events) != len(want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}
	for i := range want {
		if r.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, r.events[i], want[i])
		}
	}
}

func TestConnectedThroughShadowRoot(t *testing.T) {
	doc := NewDocument()
	host := NewElement("x-host")
	inner := NewElement("x-inner")
	r := &recorder{}
	inner.SetCustom(r)

	host.AttachShadow().Append(inner)
	if inner.IsConnected() {
		t.Fatal("inner must not be connected before host")
	}

	doc.Body().Append(host)
	if !inner.IsConnected() {
		t.Fatal("inner must be connected through its host")
	}
	if len(r.events) != 1 || r.events[0] != "connected" {
		t.Errorf("events = %v, want [connected]", r.events)
	}
	if inner.RootNode() != host.ShadowRoot() {
		t.Error("RootNode() should be the shadow root")
	}
}

func TestInsertOrder(t *testing.T) {
	parent := NewElement("ul")
	a, b, c := NewElement("li"), NewElement("li"), NewElement("li")
	a.SetAttribute("id", "a")
	b.SetAttribute("id", "b")
	c.SetAttribute("id", "c")

	parent.Append(a, b)
	parent.Prepend(c)
	parent.InsertBefore(a, c)

	var ids []string
	for _, ch := range parent.Children() {
		ids = append(ids, ch.ID())
	}
	if got := ids[0] + ids[1] + ids[2]; got != "acb" {
		t.Errorf("order = %q, want acb", got)
	}
}

func TestEventsBubbleAndCompose(t *testing.T) {
	host := NewElement("x-host")
	button := NewElement("button")
	host.AttachShadow().Append(button)

	var seen []string
	host.AddEventListener("press", func(e *Event) { seen = append(seen, "host") })
	host.ShadowRoot().AddEventListener("press", func(e *Event) { seen = append(seen, "root") })
	button.AddEventListener("press", func(e *Event) {
		seen = append(seen, "button")
		if e.Target != button {
			t.Error("Target should be the dispatching node")
		}
	})

	button.DispatchEvent(NewEvent("press", EventInit{Bubbles: true}))
	if len(seen) != 2 {
		t.Fatalf("non-composed event reached %v", seen)
	}

	seen = nil
	button.DispatchEvent(NewEvent("press", EventInit{Bubbles: true, Composed: true}))
	if len(seen) != 3 || seen[2] != "host" {
		t.Fatalf("composed event reached %v", seen)
	}
}

func TestEventListenerControl(t *testing.T) {
	n := NewElement("div")
	count := 0
	l := n.AddEventListener("tick", func(*Event) { count++ })
	n.AddEventListener("tick", func(e *Event) { e.PreventDefault() }, ListenerOptions{Once: true})

	if n.DispatchEvent(NewEvent("tick", EventInit{})) {
		t.Error("expected default prevented")
	}
	if !n.DispatchEvent(NewEvent("tick", EventInit{})) {
		t.Error("once listener should have been removed")
	}
	n.RemoveEventListener(l)
	n.DispatchEvent(NewEvent("tick", EventInit{}))
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestMutationObserver(t *testing.T) {
	n := NewElement("div")
	child := NewElement("span")
	n.Append(child)

	var records []MutationRecord
	obs := NewMutationObserver(func(rs []MutationRecord, _ *MutationObserver) {
		records = append(records, rs...)
	})
	obs.Observe(n, MutationObserverInit{AttributeFilter: []string{"label"}, ChildList: true})

	n.SetAttribute("label", "x")
	n.SetAttribute("ignored", "y")
	child.SetAttribute("label", "z") // not subtree
	n.Append(NewElement("b"))

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].AttributeName != "label" || records[1].Type != MutationChildList {
		t.Errorf("unexpected records %+v", records)
	}

	obs.Disconnect()
	n.SetAttribute("label", "again")
	if len(records) != 2 {
		t.Error("disconnected observer still notified")
	}
}

func TestStyleProperties(t *testing.T) {
	n := NewElement("div")
	n.SetStyleProperty("--gap", "4")
	n.SetStyleProperty("color", "red")
	n.SetStyleProperty("--gap", "8")

	if got := n.Attr("style"); got != "--gap: 8; color: red" {
		t.Errorf("style = %q", got)
	}
	if n.StyleProperty("--gap") != "8" {
		t.Errorf("StyleProperty(--gap) = %q", n.StyleProperty("--gap"))
	}
	n.SetStyleProperty("--gap", "")
	n.SetStyleProperty("color", "")
	if n.HasAttribute("style") {
		t.Error("empty style should remove the attribute")
	}
}

func TestSelectors(t *testing.T) {
	root := NewElement("div")
	a := NewElement("slot")
	a.SetAttribute("name", "title")
	b := NewElement("span")
	b.SetAttribute("class", "big red")
	b.SetAttribute("id", "x")
	nested := NewElement("em")
	b.Append(nested)
	root.Append(a, b)

	tests := []struct {
		selector string
		want     *Node
	}{
		{`slot[name="title"]`, a},
		{`slot[name=title]`, a},
		{`[name]`, a},
		{`span.big.red`, b},
		{`#x`, b},
		{`span em`, nested},
		{`div em`, nested},
		{`p, em`, nested},
		{`*`, a},
		{`slot[name="other"]`, nil},
		{`span.blue`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			if got := root.QuerySelector(tt.selector); got != tt.want {
				t.Errorf("QuerySelector(%q) = %v, want %v", tt.selector, got, tt.want)
			}
		})
	}

	if _, err := Compile("a > b"); err == nil {
		t.Error("expected error for unsupported combinator")
	}
}

func TestAssignedNodes(t *testing.T) {
	host := NewElement("x-card")
	title := NewElement("slot")
	title.SetAttribute("name", "title")
	def := NewElement("slot")
	host.AttachShadow().Append(title, def)

	h := NewElement("h1")
	h.SetAttribute("slot", "title")
	p := NewElement("p")
	host.Append(h, p)

	if got := title.AssignedNodes(); len(got) != 1 || got[0] != h {
		t.Errorf("title slot assigned %v", got)
	}
	if got := def.AssignedNodes(); len(got) != 1 || got[0] != p {
		t.Errorf("default slot assigned %v", got)
	}
}

func TestRender(t *testing.T) {
	doc := NewDocument()
	host := NewElement("x-card")
	host.SetAttribute("label", `a "b"`)
	host.ToggleAttribute("open", true)
	host.AttachShadow().Append(NewElement("slot"))
	host.Append(NewText("<hi>"), NewElement("br"))
	doc.Body().Append(host)

	var buf bytes.Buffer
	if err := doc.Node().Component().Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := `<!DOCTYPE html><html><head></head><body>` +
		`<x-card label="a &#34;b&#34;" open><template shadowrootmode="open"><slot></slot></template>&lt;hi&gt;<br></x-card>` +
		`</body></html>`
	if buf.String() != want {
		t.Errorf("Render() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestClone(t *testing.T) {
	n := NewElement("p")
	n.SetAttribute("class", "a")
	n.Append(NewText("hi"), NewElement("b"))
	n.AttachShadow()

	c := n.Clone()
	if c.OuterHTML() != `<p class="a">hi<b></b></p>` {
		t.Errorf("Clone() = %s", c.OuterHTML())
	}
	c.SetAttribute("class", "b")
	if n.Attr("class") != "a" {
		t.Error("clone shares attributes with the original")
	}
	if c.Children()[1].Parent() != c {
		t.Error("cloned child has the wrong parent")
	}
}
