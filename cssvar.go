package hxel

import (
	"github.com/pthm/hxel/lib/dom"
)

// CSSVar declares property as the inline custom property --dashed-name of
// the element's style.
func CSSVar(cls *Class, property string) *Property[string] {
	name := "--" + Dashify(property)
	existing := cls.Accessor(property)
	DefineAccessor(cls, property,
		func(el *Element) any {
			return el.node.StyleProperty(name)
		},
		func(el *Element, v any) {
			el.node.SetStyleProperty(name, toString(v))
			if existing != nil && existing.Set != nil {
				existing.Set(el, v)
			}
		})
	return &Property[string]{name: property}
}

// ObserveCSSVars calls method with the numeric values of the custom
// properties vars (e.g. "--columns") when the element connects and whenever
// its inline style changes, as long as every variable is set.
func ObserveCSSVars(cls *Class, method string, vars ...string) {
	cls.mustBeOpen()
	key := newSlotKey("cssvars:" + method)

	update := func(el *Element) {
		values := make([]any, len(vars))
		for i, v := range vars {
			s := el.node.StyleProperty(v)
			if s == "" {
				return
			}
			values[i] = parseNumber(s)
		}
		trackResult(el.Call(method, values...))
	}

	OnConnected(cls, func(el *Element, _ *Class) {
		if _, ok := el.load(key).(*dom.MutationObserver); !ok {
			obs := dom.NewMutationObserver(func([]dom.MutationRecord, *dom.MutationObserver) {
				update(el)
			})
			obs.Observe(el.node, dom.MutationObserverInit{AttributeFilter: []string{"style"}})
			el.save(key, obs)
		}
		update(el)
	})
	OnDisconnected(cls, func(el *Element) {
		if obs, ok := el.load(key).(*dom.MutationObserver); ok {
			obs.Disconnect()
			delete(el.store, key)
		}
	})
}
