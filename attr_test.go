package hxel

import (
	"math"
	"slices"
	"testing"

	"github.com/pthm/hxel/lib/dom"
)

func TestAttributeWritesOnce(t *testing.T) {
	widget := NewClass("x-attr-once")
	label := TextAttr(widget, "label")

	td := NewTestDocument(widget)
	el, err := td.Mount("x-attr-once")
	if err != nil {
		t.Fatal(err)
	}
	log := RecordAttributes(el, "label")
	defer log.Stop()

	label.Set(el, "Hi")
	label.Set(el, "Hi")

	if got := log.Count("label"); got != 1 {
		t.Errorf("label written %d times, want 1 (%v)", got, log.Values("label"))
	}
	if got := el.Node().Attr("label"); got != "Hi" {
		t.Errorf("label attribute = %q, want Hi", got)
	}
	if got := label.Get(el); got != "Hi" {
		t.Errorf("label.Get() = %q, want Hi", got)
	}
}

func TestAttributeFlowsIntoProperty(t *testing.T) {
	cls := NewClass("x-attr-back")
	maxValue := NumberAttr(cls, "maxValue")
	var seen []any
	ObserveFunc(cls, "onMax", func(el *Element, v any) any {
		seen = append(seen, v)
		return nil
	}, "maxValue")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-attr-back", dom.Attr{Name: "max-value", Value: "3"})

	if got := maxValue.Get(el); got != 3 {
		t.Errorf("maxValue.Get() = %v, want 3", got)
	}
	el.Node().SetAttribute("max-value", "7.5")
	if got := maxValue.Get(el); got != 7.5 {
		t.Errorf("maxValue.Get() = %v, want 7.5", got)
	}
	want := []any{3.0, 7.5}
	if !slices.Equal(seen, want) {
		t.Errorf("observer saw %v, want %v", seen, want)
	}
}

func TestAttributeUpgradeReplaysExisting(t *testing.T) {
	cls := NewClass("x-attr-late")
	label := TextAttr(cls, "label")

	reg := NewRegistry([]byte("k"))
	captureLogs(t)
	el, err := reg.Create("x-attr-late")
	if err != nil {
		t.Fatal(err)
	}
	el.Node().SetAttribute("label", "early")
	if el.Upgraded() {
		t.Fatal("element upgraded before definition")
	}

	reg.Define(cls)
	if !el.Upgraded() {
		t.Fatal("element not upgraded by Define")
	}
	if got := label.Get(el); got != "early" {
		t.Errorf("label.Get() = %q, want early", got)
	}
}

func TestBoolAttr(t *testing.T) {
	cls := NewClass("x-attr-bool")
	open := BoolAttr(cls, "open")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-attr-bool")

	open.Set(el, true)
	if !el.Node().HasAttribute("open") {
		t.Error("open attribute missing after Set(true)")
	}
	open.Set(el, false)
	if el.Node().HasAttribute("open") {
		t.Error("open attribute present after Set(false)")
	}
	el.Node().ToggleAttribute("open", true)
	if !open.Get(el) {
		t.Error("open.Get() = false after attribute toggle")
	}
}

func TestCodecs(t *testing.T) {
	n := dom.NewElement("div")

	Text.Set(n, "a", "")
	if n.HasAttribute("a") {
		t.Error("Text: empty string should remove the attribute")
	}

	tests := []struct {
		attr string
		want float64
	}{
		{"", 0},
		{"  ", 0},
		{"12", 12},
		{"-1.5", -1.5},
	}
	for _, tt := range tests {
		n.SetAttribute("n", tt.attr)
		if got := Number.Get(n, "n"); got != tt.want {
			t.Errorf("Number.Get(%q) = %v, want %v", tt.attr, got, tt.want)
		}
	}
	n.SetAttribute("n", "abc")
	if got := Number.Get(n, "n"); !math.IsNaN(got) {
		t.Errorf("Number.Get(abc) = %v, want NaN", got)
	}
	Number.Set(n, "n", 2.5)
	if got := n.Attr("n"); got != "2.5" {
		t.Errorf("Number.Set(2.5) wrote %q", got)
	}
	Number.Set(n, "n", math.Inf(1))
	if n.HasAttribute("n") {
		t.Error("Number: Inf should remove the attribute")
	}

	List.Set(n, "l", []string{"a", "b"})
	if got := List.Get(n, "l"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("List.Get() = %v", got)
	}
	List.Set(n, "l", nil)
	if n.HasAttribute("l") {
		t.Error("List: empty list should remove the attribute")
	}

	Numbers.Set(n, "ns", []float64{1, 2.5})
	if got := n.Attr("ns"); got != "1 2.5" {
		t.Errorf("Numbers.Set() wrote %q", got)
	}
	if got := Numbers.Get(n, "ns"); !slices.Equal(got, []float64{1, 2.5}) {
		t.Errorf("Numbers.Get() = %v", got)
	}
	Numbers.Set(n, "ns", nil)
	if n.HasAttribute("ns") {
		t.Error("Numbers: nil should remove the attribute")
	}
}

func TestListAttrIdentity(t *testing.T) {
	cls := NewClass("x-attr-list")
	tags := ListAttr(cls, "tags")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-attr-list")
	log := RecordAttributes(el, "tags")
	defer log.Stop()

	v := []string{"a", "b"}
	tags.Set(el, v)
	tags.Set(el, v)
	// A different slice with the same tokens formats identically.
	tags.Set(el, []string{"a", "b"})

	if got := log.Count("tags"); got != 1 {
		t.Errorf("tags written %d times, want 1", got)
	}
}

func TestCamelizeDashify(t *testing.T) {
	tests := []struct {
		attr, prop string
	}{
		{"label", "label"},
		{"max-value", "maxValue"},
		{"data-item-id", "dataItemId"},
	}
	for _, tt := range tests {
		if got := Camelize(tt.attr); got != tt.prop {
			t.Errorf("Camelize(%q) = %q, want %q", tt.attr, got, tt.prop)
		}
		if got := Dashify(tt.prop); got != tt.attr {
			t.Errorf("Dashify(%q) = %q, want %q", tt.prop, got, tt.attr)
		}
	}
}
