package hxel

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"

	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/async"
	"github.com/pthm/hxel/lib/lazy"
	"github.com/pthm/hxel/lib/meta"
)

type observerMethods = lazy.Map[string, *meta.List[string]]

func newObserverMethods() *observerMethods {
	return lazy.New(func(*observerMethods, string) *meta.List[string] {
		return &meta.List[string]{}
	})
}

func cloneObserverMethods(inherited *observerMethods, ok bool) *observerMethods {
	if !ok || inherited == nil {
		return newObserverMethods()
	}
	return inherited.Clone(func(methods *meta.List[string]) *meta.List[string] {
		return meta.CloneList(methods, true)
	})
}

// propagation guards observer fan-out per element and property.
var propagation = NewRunLock[Element]()

// Observed makes property an observed property of cls: writes are compared
// with the element's last value for the property and, when it changed,
// stored and fanned out to the property's observer methods. A method
// property notifies with its return value on every call.
//
// Observing a property twice on a class (or on a class and its subclass) is
// a no-op.
func Observed(cls *Class, property string) {
	cls.mustBeOpen()
	set := meta.Own(cls.node, slotObservedProperties, meta.CloneSet[string])
	if set.Has(property) {
		return
	}
	set.Add(property)

	existing := cls.Accessor(property)
	if existing == nil {
		existing = storageAccessor(property)
	}
	acc := *existing

	if existing.Method != nil {
		acc.Method = func(el *Element, args ...any) any {
			v := existing.Method(el, args...)
			PropertyChanged(el, property, v)
			return v
		}
	} else {
		key := newSlotKey(property)
		acc.Set = func(el *Element, v any) {
			if Same(v, el.previous[key]) {
				return
			}
			el.previous[key] = v
			if existing.Set != nil {
				existing.Set(el, v)
			}
			PropertyChanged(el, property, v)
		}
	}
	cls.setAccessor(property, &acc)
}

// Observe registers method as an observer of each property. Observers of a
// property run in registration order with the new value. Without
// properties, the dependencies are the properties read by a trial run of
// the method's getter (or of the method itself).
//
//	hxel.Observe(Panel, "OnCountChanged", "count")
func Observe(cls *Class, method string, properties ...string) {
	cls.mustBeOpen()
	if len(properties) == 0 {
		properties = inferDependencies(cls, method)
		if len(properties) == 0 {
			warn("observer has no dependencies",
				zap.String("class", cls.Name()), zap.String("method", method))
		}
	}
	for _, property := range properties {
		Observed(cls, property)
		list := meta.Own(cls.node, slotObserverMethods, cloneObserverMethods).Get(property)
		list.Items = append(list.Items, method)
	}
}

// ObserveFunc declares fn as method name of cls, then observes properties.
func ObserveFunc(cls *Class, method string, fn func(el *Element, v any) any, properties ...string) {
	Method(cls, method, func(el *Element, args ...any) any {
		var v any
		if len(args) > 0 {
			v = args[0]
		}
		return fn(el, v)
	})
	Observe(cls, method, properties...)
}

// Compute keeps property equal to fn's result. fn is re-run whenever one of
// deps changes; without deps, the properties fn reads during a trial run
// are used. A method property is called with the result instead of being
// assigned.
//
//	hxel.Compute(Panel, "area", func(el *hxel.Element) any {
//	    return width.Get(el) * height.Get(el)
//	})
func Compute(cls *Class, property string, fn func(el *Element) any, deps ...string) {
	cls.mustBeOpen()
	if len(deps) == 0 {
		deps = recordReads(func(el *Element) { fn(el) })
	}

	method := fmt.Sprintf("compute(%s)->%s", strings.Join(deps, ","), property)
	Method(cls, method, func(el *Element, _ ...any) any {
		v := fn(el)
		if acc := el.accessor(property); acc != nil && acc.Method != nil {
			acc.Method(el, v)
		} else {
			el.Set(property, v)
		}
		return nil
	})
	Observe(cls, method, deps...)
}

// PropertyChanged invokes every observer method registered for property on
// el's class, in registration order. Deferred results are tracked in the
// pending-work set, not awaited. An observer that panics does not stop the
// others: the panic becomes an ErrObserverPanic failure on the pending-work
// set, logged now and returned by the next Settle. A write to property from
// one of its own observers is stored but not fanned out again.
func PropertyChanged(el *Element, property string, v any) {
	if el.class == nil {
		return
	}
	methods, ok := meta.Lookup[*observerMethods](el.class.node, slotObserverMethods)
	if !ok || !methods.Has(property) {
		return
	}
	list := methods.Get(property).Items

	ran := propagation.Run(el, property, func() {
		for _, method := range list {
			res, ok, err := runObserver(el, method, v)
			switch {
			case err != nil:
				async.Pending.Track(async.Rejected(err))
			case ok:
				trackResult(res)
			}
		}
	})
	if !ran {
		warn("re-entrant write while observers run",
			append(el.fields(), zap.String("property", property))...)
	}
}

func runObserver(el *Element, method string, v any) (res any, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s on %s: %v", ErrObserverPanic, method, el.TagName(), r)
		}
	}()
	res, ok = el.invoke(method, v)
	return res, ok, nil
}

func inferDependencies(cls *Class, method string) []string {
	acc := cls.Accessor(method)
	switch {
	case acc == nil:
		return nil
	case acc.Get != nil:
		return recordReads(func(el *Element) { acc.Get(el) })
	case acc.Method != nil:
		return recordReads(func(el *Element) { acc.Method(el) })
	}
	return nil
}

func storageAccessor(property string) *Accessor {
	key := newSlotKey(property)
	return &Accessor{
		Get: func(el *Element) any { return el.load(key) },
		Set: func(el *Element, v any) { el.save(key, v) },
	}
}

func trackResult(v any) {
	if t, ok := v.(*async.Task); ok {
		async.Pending.Track(t)
	}
}

// Same reports whether a and b are the same value: == for comparable
// values, identity for slices, maps, functions and channels.
func Same(a, b any) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		defer func() {
			// Interface fields holding uncomparable values.
			if recover() != nil {
				same = false
			}
		}()
		return a == b
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		// Empty slices may share the zero-size base; equal contents either way.
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Func:
		return funcValue(a) == funcValue(b)
	case reflect.Map, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// funcValue returns the closure object held by an interface wrapping a
// func. Closures made from one literal share code but not this object.
func funcValue(v any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&v))[1]
}
