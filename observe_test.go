package hxel

import (
	"errors"
	"slices"
	"testing"

	"github.com/pthm/hxel/lib/async"
)

type countHost struct {
	*Element
	calls []any
}

func (h *countHost) OnCountChanged(v any) {
	h.calls = append(h.calls, v)
}

func TestObserveSuppressesRepeats(t *testing.T) {
	panel := NewClass("x-observe-count").WithHost(func(el *Element) Host {
		return &countHost{Element: el}
	})
	Observe(panel, "OnCountChanged", "count")

	td := NewTestDocument(panel)
	el, err := td.Mount("x-observe-count")
	if err != nil {
		t.Fatal(err)
	}
	el.Set("count", 1)
	el.Set("count", 1)
	el.Set("count", 2)

	got := el.Host().(*countHost).calls
	if want := []any{1, 2}; !slices.Equal(got, want) {
		t.Errorf("observer calls = %v, want %v", got, want)
	}
	if got := el.Get("count"); got != 2 {
		t.Errorf("count = %v, want 2", got)
	}
}

func TestComputeRunsOnDependencyChange(t *testing.T) {
	panel := NewClass("x-compute")
	width := Prop[float64](panel, "width")
	height := Prop[float64](panel, "height")
	area := Prop[float64](panel, "area")

	runs := 0
	Compute(panel, "area", func(el *Element) any {
		runs++
		return width.Get(el) * height.Get(el)
	})
	runs = 0

	td := NewTestDocument(panel)
	el, _ := td.Mount("x-compute")
	width.Set(el, 10)
	height.Set(el, 20)

	if runs != 2 {
		t.Errorf("compute ran %d times, want 2", runs)
	}
	if got := area.Get(el); got != 200 {
		t.Errorf("area = %v, want 200", got)
	}

	width.Set(el, 10)
	if runs != 2 {
		t.Errorf("unchanged dependency re-ran compute (%d runs)", runs)
	}
}

func TestComputeExplicitDeps(t *testing.T) {
	cls := NewClass("x-compute-deps")
	first := Prop[string](cls, "first")
	last := Prop[string](cls, "last")
	full := Prop[string](cls, "full")

	Compute(cls, "full", func(el *Element) any {
		return first.Get(el) + " " + last.Get(el)
	}, "last")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-compute-deps")
	first.Set(el, "Ada")
	if got := full.Get(el); got != "" {
		t.Errorf("full = %q before a dependency changed", got)
	}
	last.Set(el, "Lovelace")
	if got := full.Get(el); got != "Ada Lovelace" {
		t.Errorf("full = %q, want Ada Lovelace", got)
	}
}

func TestObserverOrderAndDeferredResults(t *testing.T) {
	cls := NewClass("x-observe-order")
	var order []string
	p := async.NewPromise()

	ObserveFunc(cls, "m1", func(el *Element, v any) any {
		order = append(order, "m1")
		return p.Task
	}, "value")
	ObserveFunc(cls, "m2", func(el *Element, v any) any {
		order = append(order, "m2")
		return nil
	}, "value")
	ObserveFunc(cls, "m3", func(el *Element, v any) any {
		order = append(order, "m3")
		return nil
	}, "value")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-observe-order")
	el.Set("value", "x")

	if want := []string{"m1", "m2", "m3"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if async.Pending.Len() == 0 {
		t.Error("deferred observer result is not tracked")
	}
	p.Resolve(nil)
	if err := td.Settle(); err != nil {
		t.Fatalf("Settle() = %v", err)
	}
}

func TestObservedMethodNotifiesReturnValue(t *testing.T) {
	cls := NewClass("x-observe-method")
	Method(cls, "next", func(el *Element, args ...any) any {
		return args[0].(int) + 1
	})
	var seen []any
	ObserveFunc(cls, "onNext", func(el *Element, v any) any {
		seen = append(seen, v)
		return nil
	}, "next")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-observe-method")
	if got := el.Call("next", 1); got != 2 {
		t.Errorf("Call(next) = %v, want 2", got)
	}
	el.Call("next", 1)

	if want := []any{2, 2}; !slices.Equal(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestObserveIdentity(t *testing.T) {
	cls := NewClass("x-observe-identity")
	count := 0
	ObserveFunc(cls, "onItems", func(*Element, any) any {
		count++
		return nil
	}, "items")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-observe-identity")

	items := []string{"a"}
	el.Set("items", items)
	el.Set("items", items)
	el.Set("items", []string{"a"})

	if count != 2 {
		t.Errorf("observer ran %d times, want 2", count)
	}
}

func TestReentrantWriteIsStored(t *testing.T) {
	logs := captureLogs(t)
	cls := NewClass("x-reentrant")
	calls := 0
	ObserveFunc(cls, "bump", func(el *Element, v any) any {
		calls++
		el.Set("count", v.(int)+1)
		return nil
	}, "count")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-reentrant")
	el.Set("count", 1)

	if calls != 1 {
		t.Errorf("observer ran %d times, want 1", calls)
	}
	if got := el.Get("count"); got != 2 {
		t.Errorf("count = %v, want 2", got)
	}
	if logs.FilterMessage("re-entrant write while observers run").Len() != 1 {
		t.Errorf("logs = %v", logs.All())
	}
}

func TestObserveInfersDependencies(t *testing.T) {
	cls := NewClass("x-observe-infer")
	label := Prop[string](cls, "label")
	var rendered []string
	Method(cls, "render", func(el *Element, _ ...any) any {
		rendered = append(rendered, label.Get(el))
		return nil
	})
	Observe(cls, "render")
	rendered = nil

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-observe-infer")
	label.Set(el, "a")

	if want := []string{"a"}; !slices.Equal(rendered, want) {
		t.Errorf("rendered = %v, want %v", rendered, want)
	}
}

func TestObserveWithoutDependenciesWarns(t *testing.T) {
	logs := captureLogs(t)
	cls := NewClass("x-observe-none")
	Method(cls, "noop", func(*Element, ...any) any { return nil })
	Observe(cls, "noop")

	if logs.FilterMessage("observer has no dependencies").Len() != 1 {
		t.Errorf("logs = %v", logs.All())
	}
}

func TestSubclassObserversAreIsolated(t *testing.T) {
	var seen []string
	base := NewClass("")
	ObserveFunc(base, "onBase", func(*Element, any) any {
		seen = append(seen, "base")
		return nil
	}, "value")

	sub := base.Extend("x-observe-sub")
	ObserveFunc(sub, "onSub", func(*Element, any) any {
		seen = append(seen, "sub")
		return nil
	}, "value")
	sibling := base.Extend("x-observe-sibling")

	td := NewTestDocument(sub, sibling)
	el, _ := td.Mount("x-observe-sub")
	el.Set("value", 1)
	other, _ := td.Mount("x-observe-sibling")
	other.Set("value", 1)

	if want := []string{"base", "sub", "base"}; !slices.Equal(seen, want) {
		t.Errorf("seen = %v, want %v", seen, want)
	}
}

func TestObserverPanicIsReported(t *testing.T) {
	cls := NewClass("x-observe-panic")
	var order []string
	ObserveFunc(cls, "m1", func(*Element, any) any {
		order = append(order, "m1")
		panic("boom")
	}, "value")
	ObserveFunc(cls, "m2", func(*Element, any) any {
		order = append(order, "m2")
		return nil
	}, "value")
	ObserveFunc(cls, "m3", func(*Element, any) any {
		order = append(order, "m3")
		return nil
	}, "value")

	td := NewTestDocument(cls)
	el, _ := td.Mount("x-observe-panic")
	el.Set("value", 1)

	if want := []string{"m1", "m2", "m3"}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if propagation.Running(el, "value") {
		t.Error("propagation lock still held after a panicking observer")
	}
	err := td.Settle()
	if !errors.Is(err, ErrObserverPanic) || !errors.Is(err, ErrTaskFailed) {
		t.Errorf("Settle() = %v, want ErrObserverPanic wrapped in ErrTaskFailed", err)
	}

	el.Set("value", 2)
	if len(order) != 6 {
		t.Errorf("second write ran %d observers, want 3", len(order)-3)
	}
	if got := el.Get("value"); got != 2 {
		t.Errorf("value = %v, want 2", got)
	}
	if err := td.Settle(); !errors.Is(err, ErrObserverPanic) {
		t.Errorf("Settle() = %v, want ErrObserverPanic", err)
	}
	if err := td.Settle(); err != nil {
		t.Errorf("Settle() after reporting = %v, want nil", err)
	}
}

func TestSame(t *testing.T) {
	s := []int{1}
	m := map[string]int{}
	counter := func(n int) func() int { return func() int { return n } }
	f := counter(1)
	type pair struct{ a, b int }
	type boxed struct{ v any }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"equal ints", 1, 1, true},
		{"different types", 1, 1.0, false},
		{"structs", pair{1, 2}, pair{1, 2}, true},
		{"same slice", s, s, true},
		{"equal slices", s, []int{1}, false},
		{"same map", m, m, true},
		{"different maps", m, map[string]int{}, false},
		{"uncomparable field", boxed{[]int{1}}, boxed{[]int{1}}, false},
		{"same closure", f, f, true},
		{"closures from one literal", counter(1), counter(2), false},
		{"nil func", (func())(nil), (func())(nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
