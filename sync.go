package hxel

import (
	"github.com/pthm/hxel/lib/dom"
)

func shadowQuery(el *Element, selector string) *dom.Node {
	if root := el.node.ShadowRoot(); root != nil {
		return root.QuerySelector(selector)
	}
	return nil
}

// ObserveElementProperty keeps field in sync with property of the shadow
// root child matched by selector: the child's event (default "change")
// copies its value into field, and writes to field are copied to the child.
//
//	hxel.ObserveElementProperty(Search, "query", "input", "value", "input")
func ObserveElementProperty(cls *Class, field, selector, property, event string) {
	cls.mustBeOpen()
	if event == "" {
		event = "change"
	}
	key := newSlotKey("sync:" + field)

	OnConnected(cls, func(el *Element, _ *Class) {
		if prev, ok := el.load(key).(installedListener); ok {
			prev.node.RemoveEventListener(prev.listener)
			delete(el.store, key)
		}
		target := shadowQuery(el, selector)
		if target == nil {
			return
		}
		l := target.AddEventListener(event, func(*dom.Event) {
			el.Set(field, nodeValue(target, property))
		})
		el.save(key, installedListener{node: target, listener: l})

		if v := nodeValue(target, property); !Same(el.Get(field), v) {
			el.Set(field, v)
		}
	})

	existing := cls.Accessor(field)
	if existing == nil {
		existing = storageAccessor(field)
	}
	acc := *existing
	acc.Set = func(el *Element, v any) {
		if existing.Set != nil {
			existing.Set(el, v)
		}
		if target := shadowQuery(el, selector); target != nil {
			setNodeValue(target, property, v)
		}
	}
	cls.setAccessor(field, &acc)
}
