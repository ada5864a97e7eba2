package hxel

import (
	"fmt"
	"strings"

	"github.com/pthm/hxel/lib/dom"
	"github.com/pthm/hxel/lib/meta"
)

// Target selects the nodes an event listener is added to.
type Target func(el *Element) []*dom.Node

// Self targets the element's own node.
func Self() Target {
	return func(el *Element) []*dom.Node {
		return []*dom.Node{el.node}
	}
}

// Selector targets the nodes matched by QueryAll.
func Selector(queries string) Target {
	return func(el *Element) []*dom.Node {
		return QueryAll(el, queries)
	}
}

// TargetFunc targets the node returned by fn, if any.
func TargetFunc(fn func(el *Element) *dom.Node) Target {
	return func(el *Element) []*dom.Node {
		if n := fn(el); n != nil {
			return []*dom.Node{n}
		}
		return nil
	}
}

// ListenerSpec is one declared event listener.
type ListenerSpec struct {
	Target  Target
	Type    string
	Method  string
	Options dom.ListenerOptions
}

type installedListener struct {
	node     *dom.Node
	listener *dom.Listener
}

var listenersKey = newSlotKey("eventListeners")

// addAllEventListeners adds every declared listener on connection. Listeners
// from an earlier connection are removed first.
var addAllEventListeners = NewConnectedCallback(func(el *Element, cls *Class) {
	for _, l := range loadListeners(el) {
		l.node.RemoveEventListener(l.listener)
	}

	specs, ok := meta.Lookup[*meta.List[ListenerSpec]](cls.node, slotEventListeners)
	if !ok {
		return
	}
	var installed []installedListener
	for _, spec := range specs.Items {
		for _, target := range spec.Target(el) {
			l := target.AddEventListener(spec.Type, func(e *dom.Event) {
				trackResult(el.Call(spec.Method, e))
			}, spec.Options)
			installed = append(installed, installedListener{node: target, listener: l})
		}
	}
	el.save(listenersKey, installed)
})

func loadListeners(el *Element) []installedListener {
	ls, _ := el.load(listenersKey).([]installedListener)
	return ls
}

// On calls method with the *dom.Event whenever an event of type reaches a
// node selected by target. Listeners are added each time the element
// connects.
//
//	hxel.On(Counter, hxel.Selector("button"), "click", "Increment")
func On(cls *Class, target Target, typ, method string, opts ...dom.ListenerOptions) {
	cls.mustBeOpen()
	spec := ListenerSpec{Target: target, Type: typ, Method: method}
	if len(opts) > 0 {
		spec.Options = opts[0]
	}
	AddConnectedCallback(cls, addAllEventListeners)
	list := meta.Own(cls.node, slotEventListeners, meta.CloneList[ListenerSpec])
	list.Items = append(list.Items, spec)
}

// wrapEventMethod replaces method with wrap, which receives the event
// argument (nil if the first argument is not an event) and the original.
func wrapEventMethod(cls *Class, method string, wrap func(e *dom.Event, next func() any) any) {
	cls.mustBeOpen()
	existing := methodAccessor(cls, method)
	cls.setAccessor(method, &Accessor{Method: func(el *Element, args ...any) any {
		var e *dom.Event
		if len(args) > 0 {
			e, _ = args[0].(*dom.Event)
		}
		return wrap(e, func() any { return existing.Method(el, args...) })
	}})
}

// PreventDefault makes method cancel the event before running.
func PreventDefault(cls *Class, method string) {
	wrapEventMethod(cls, method, func(e *dom.Event, next func() any) any {
		if e != nil {
			e.PreventDefault()
		}
		return next()
	})
}

// StopPropagation makes method stop the event before running.
func StopPropagation(cls *Class, method string) {
	wrapEventMethod(cls, method, func(e *dom.Event, next func() any) any {
		if e != nil {
			e.StopPropagation()
		}
		return next()
	})
}

// Matches runs method only for events whose target matches selector.
func Matches(cls *Class, method, selector string) {
	wrapEventMethod(cls, method, func(e *dom.Event, next func() any) any {
		if e != nil && e.Target != nil && e.Target.Matches(selector) {
			return next()
		}
		return nil
	})
}

// Detail makes method return the event's detail after running.
func Detail(cls *Class, method string) {
	wrapEventMethod(cls, method, func(e *dom.Event, next func() any) any {
		next()
		if e != nil {
			return e.Detail
		}
		return nil
	})
}

// EventDef describes an event declared on a class.
type EventDef struct {
	Type     string
	Property string
	Init     dom.EventInit
}

type eventHandler struct {
	fn       func(*dom.Event)
	listener *dom.Listener
}

// EventProperty is the handle returned by Event.
type EventProperty struct {
	Property[func(*dom.Event)]
	typ string
}

// Type returns the event type.
func (p *EventProperty) Type() string {
	return p.typ
}

// Dispatch dispatches the event on h with the class defaults and detail. It
// reports false when a listener canceled it.
func (p *EventProperty) Dispatch(h Host, detail any) bool {
	return DispatchEvent(h.Base(), p.typ, detail)
}

// Event declares an event property. The property name must start with "on";
// the event type is the lower-cased name without it. Setting the property
// installs a listener, replacing the previous one.
//
//	var onToggle = hxel.Event(Panel, "onToggle", dom.EventInit{Bubbles: true})
//	onToggle.Set(panel, func(e *dom.Event) { ... })
//	onToggle.Dispatch(panel, true)
func Event(cls *Class, property string, defaults dom.EventInit) *EventProperty {
	cls.mustBeOpen()
	name := strings.ToLower(property)
	if !strings.HasPrefix(name, "on") {
		panic(fmt.Sprintf("hxel: event property %s.%s must start with \"on\"", cls.Name(), property))
	}
	typ := strings.TrimPrefix(name, "on")

	meta.Own(cls.node, slotEvents, meta.CloneMap[string, EventDef])[typ] = EventDef{
		Type:     typ,
		Property: property,
		Init:     defaults,
	}

	key := newSlotKey(property)
	DefineAccessor(cls, property,
		func(el *Element) any {
			if h, ok := el.load(key).(eventHandler); ok {
				return h.fn
			}
			return nil
		},
		func(el *Element, v any) {
			if h, ok := el.load(key).(eventHandler); ok {
				el.node.RemoveEventListener(h.listener)
				delete(el.store, key)
			}
			if fn, ok := v.(func(*dom.Event)); ok && fn != nil {
				el.save(key, eventHandler{fn: fn, listener: el.node.AddEventListener(typ, fn)})
			}
		})

	return &EventProperty{Property: Property[func(*dom.Event)]{name: property}, typ: typ}
}

// DispatchEvent dispatches an event of typ on el with detail, using the
// defaults declared by Event for that type.
func DispatchEvent(el *Element, typ string, detail any) bool {
	var init dom.EventInit
	if el.class != nil {
		if events, ok := meta.Lookup[map[string]EventDef](el.class.node, slotEvents); ok {
			init = events[typ].Init
		}
	}
	init.Detail = detail
	return el.node.DispatchEvent(dom.NewEvent(typ, init))
}

// Emit declares property so that every value written to it is dispatched as
// the detail of an event of typ. A deferred value is dispatched when it
// resolves.
func Emit(cls *Class, property, typ string, init ...dom.EventInit) *Property[any] {
	var defaults dom.EventInit
	if len(init) > 0 {
		defaults = init[0]
	}
	Binding{
		Apply: func(el *Element, v any, _ string) {
			ev := defaults
			ev.Detail = v
			el.node.DispatchEvent(dom.NewEvent(typ, ev))
		},
	}.Bind(cls, property)
	return &Property[any]{name: property}
}
