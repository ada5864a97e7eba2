package hxel

import (
	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/async"
	"github.com/pthm/hxel/lib/hook"
)

// Binding is the shared shape of attribute, event and other decorators.
// Bind rewrites a property so that every value written to it (or returned by
// it, for methods and getters) is handed to Apply or AsyncApply.
//
//	hxel.Binding{
//	    Apply: func(el *hxel.Element, v any, property string) {
//	        el.Node().SetAttribute("data-"+property, fmt.Sprint(v))
//	    },
//	}.Bind(Panel, "mode")
type Binding struct {
	// Apply receives each value. A *async.Task value is applied on the
	// event loop after it resolves.
	Apply func(el *Element, v any, property string)

	// AsyncApply receives each value normalised to a task. The returned
	// task is tracked in the pending-work set. Ignored when Apply is set.
	AsyncApply func(el *Element, v *async.Task, property string) *async.Task

	// Get replaces the property's getter.
	Get func(el *Element, property string) any

	// Init runs on the first connection of each element.
	Init func(el *Element, property string)

	// Decorate runs once at declaration time with the accessor being
	// replaced (nil when the property is new).
	Decorate func(cls *Class, property string, existing *Accessor)
}

// Bind installs b on property of cls.
func (b Binding) Bind(cls *Class, property string) {
	cls.mustBeOpen()
	existing := cls.Accessor(property)

	if b.Decorate != nil {
		b.Decorate(cls, property, existing)
	}
	if b.Init != nil {
		once := hook.OnceFunc(func(el *Element) { b.Init(el, property) })
		OnConnected(cls, func(el *Element, _ *Class) { once(el) })
	}

	execute := func(el *Element, v any) {
		b.execute(el, v, property)
	}
	custom := func(el *Element) any {
		return b.Get(el, property)
	}

	acc := &Accessor{}
	switch {
	case existing == nil && b.Get != nil:
		acc.Get = custom
		acc.Set = execute

	case existing == nil:
		key := newSlotKey(property)
		acc.Get = func(el *Element) any { return el.load(key) }
		acc.Set = func(el *Element, v any) {
			el.save(key, v)
			execute(el, v)
		}

	case existing.Method != nil:
		acc.Method = func(el *Element, args ...any) any {
			v := existing.Method(el, args...)
			execute(el, v)
			return v
		}

	case existing.Set != nil:
		acc.Set = func(el *Element, v any) {
			existing.Set(el, v)
			if existing.Get != nil {
				v = existing.Get(el)
			}
			execute(el, v)
		}
		switch {
		case b.Get != nil:
			acc.Get = custom
		case existing.Get != nil:
			acc.Get = existing.Get
		default:
			acc.Get = func(el *Element) any {
				warn("property is missing a getter",
					zap.String("class", cls.Name()), zap.String("property", property))
				return nil
			}
		}

	case existing.Get != nil:
		acc.Get = func(el *Element) any {
			v := existing.Get(el)
			execute(el, v)
			return v
		}

	default:
		// An empty accessor behaves like a new property.
		key := newSlotKey(property)
		acc.Get = func(el *Element) any { return el.load(key) }
		acc.Set = func(el *Element, v any) {
			el.save(key, v)
			execute(el, v)
		}
	}

	cls.setAccessor(property, acc)
}

func (b Binding) execute(el *Element, v any, property string) {
	switch {
	case b.Apply != nil:
		if t, ok := v.(*async.Task); ok {
			async.Pending.Track(async.Then(async.Main, t, func(resolved any) (any, error) {
				b.Apply(el, resolved, property)
				return nil, nil
			}))
			return
		}
		b.Apply(el, v, property)

	case b.AsyncApply != nil:
		async.Pending.Track(b.AsyncApply(el, async.Of(v), property))
	}
}
