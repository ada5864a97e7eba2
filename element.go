package hxel

import (
	"reflect"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/dom"
)

// slotKey identifies one decorator's per-element state. Keys are compared by
// pointer, so every layer allocates its own.
type slotKey struct {
	name string
}

func newSlotKey(name string) *slotKey {
	return &slotKey{name: name}
}

// Element is the instance side of a custom element: the DOM node, the class
// it was upgraded to, the host value built by the class factory and the
// per-instance state that decorators keep.
//
// Element state is not safe for concurrent use. Deferred work reaches an
// element through the event loop (see Settle).
type Element struct {
	id    uuid.UUID
	node  *dom.Node
	class *Class
	host  Host

	// values holds own properties. An own property shadows the class
	// accessor of the same name until UpgradeProperties re-applies it.
	values map[string]any

	store    map[*slotKey]any
	previous map[*slotKey]any

	// recorder is set on the throwaway element used to infer the
	// properties a function reads.
	recorder *[]string
}

func newElement(node *dom.Node) *Element {
	el := &Element{
		id:       uuid.New(),
		node:     node,
		values:   make(map[string]any),
		store:    make(map[*slotKey]any),
		previous: make(map[*slotKey]any),
	}
	el.host = el
	node.SetCustom(el)
	return el
}

// ElementOf returns the element attached to n, or nil when n was not created
// through a Registry.
func ElementOf(n *dom.Node) *Element {
	if n == nil {
		return nil
	}
	el, _ := n.Custom().(*Element)
	return el
}

// Base implements Host.
func (e *Element) Base() *Element {
	return e
}

// ID returns the instance ID used in diagnostics.
func (e *Element) ID() uuid.UUID {
	return e.id
}

// Node returns the DOM node.
func (e *Element) Node() *dom.Node {
	return e.node
}

// Class returns the class the element was upgraded to, or nil.
func (e *Element) Class() *Class {
	return e.class
}

// Host returns the host value built by the class factory. Without a factory
// the element is its own host.
func (e *Element) Host() Host {
	return e.host
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.node.TagName()
}

// IsConnected reports whether the element is part of a document.
func (e *Element) IsConnected() bool {
	return e.node != nil && e.node.IsConnected()
}

// Upgraded reports whether the element's class has been defined and applied.
func (e *Element) Upgraded() bool {
	return e.class != nil
}

func (e *Element) String() string {
	return e.TagName() + "#" + e.id.String()
}

func (e *Element) fields() []zap.Field {
	return []zap.Field{zap.String("tag", e.TagName()), zap.Stringer("element", e.id)}
}

func (e *Element) accessor(name string) *Accessor {
	if e.class == nil {
		return nil
	}
	return e.class.Accessor(name)
}

// Get reads a property. Method properties are returned bound to e as
// func(...any) any.
func (e *Element) Get(name string) any {
	if e.recorder != nil {
		*e.recorder = append(*e.recorder, name)
		return nil
	}
	if v, own := e.values[name]; own {
		return v
	}
	acc := e.accessor(name)
	switch {
	case acc == nil:
		return nil
	case acc.Method != nil:
		return func(args ...any) any { return acc.Method(e, args...) }
	case acc.Get != nil:
		return acc.Get(e)
	}
	return nil
}

// Set writes a property through the class accessor. Names without an
// accessor become own properties.
func (e *Element) Set(name string, v any) {
	if e.recorder != nil {
		return
	}
	if _, own := e.values[name]; own {
		e.values[name] = v
		return
	}
	acc := e.accessor(name)
	switch {
	case acc == nil:
		e.values[name] = v
	case acc.Set != nil:
		acc.Set(e, v)
	default:
		warn("property has no setter", append(e.fields(), zap.String("property", name))...)
	}
}

// Assign writes every entry of values in sorted key order.
func (e *Element) Assign(values map[string]any) {
	for _, k := range sortedKeys(values) {
		e.Set(k, values[k])
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Call invokes a method: a method accessor of the class first, then a Go
// method of the host with that name. Arguments are converted to the
// method's parameter types where possible; missing ones are zero. The first
// result, if any, is returned.
func (e *Element) Call(name string, args ...any) any {
	v, ok := e.invoke(name, args...)
	if !ok && e.recorder == nil {
		warn("method not found", append(e.fields(), zap.String("method", name))...)
	}
	return v
}

func (e *Element) invoke(name string, args ...any) (any, bool) {
	if e.recorder != nil {
		return nil, true
	}
	if acc := e.accessor(name); acc != nil && acc.Method != nil {
		return acc.Method(e, args...), true
	}
	return e.callHost(name, args)
}

func (e *Element) callHost(name string, args []any) (any, bool) {
	if e.host == nil {
		return nil, false
	}
	m := reflect.ValueOf(e.host).MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}

	t := m.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}
	in := make([]reflect.Value, 0, max(fixed, len(args)))
	for i := 0; i < fixed; i++ {
		in = append(in, argValue(args, i, t.In(i)))
	}
	if t.IsVariadic() {
		elem := t.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			in = append(in, argValue(args, i, elem))
		}
	}

	out := m.Call(in)
	if len(out) == 0 {
		return nil, true
	}
	return out[0].Interface(), true
}

func argValue(args []any, i int, t reflect.Type) reflect.Value {
	if i < len(args) && args[i] != nil {
		v := reflect.ValueOf(args[i])
		if v.Type().AssignableTo(t) {
			return v
		}
		if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
			return v.Convert(t)
		}
	}
	return reflect.Zero(t)
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func (e *Element) load(key *slotKey) any {
	return e.store[key]
}

func (e *Element) save(key *slotKey, v any) {
	e.store[key] = v
}

// Connected implements dom.Custom.
func (e *Element) Connected() {
	if e.class != nil {
		e.class.connected(e, noArgs{})
	}
}

// Disconnected implements dom.Custom.
func (e *Element) Disconnected() {
	if e.class != nil {
		e.class.disconnected(e, noArgs{})
	}
}

// AttributeChanged implements dom.Custom.
func (e *Element) AttributeChanged(name string, old, value *string) {
	if e.class != nil {
		e.class.attributeChanged(e, AttributeChange{Name: name, Old: old, Value: value})
	}
}

// Observes implements dom.Custom.
func (e *Element) Observes(name string) bool {
	return e.class != nil && e.class.observes(name)
}

// recordReads runs fn against a recording element and returns the property
// names it read, without duplicates.
func recordReads(fn func(el *Element)) (names []string) {
	var reads []string
	rec := &Element{
		values:   map[string]any{},
		store:    map[*slotKey]any{},
		previous: map[*slotKey]any{},
		recorder: &reads,
	}
	rec.host = rec

	defer func() {
		if r := recover(); r != nil {
			warn("dependency inference stopped early", zap.Any("panic", r))
		}
		for _, n := range reads {
			if !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
	}()
	fn(rec)
	return nil
}
