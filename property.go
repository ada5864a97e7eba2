package hxel

import (
	"reflect"

	"github.com/pthm/hxel/lib/async"
)

// Property is a typed handle to a declared property. It reads and writes
// through the class accessor of the host's element, so every layer stacked
// on the property (observation, attribute reflection, events) runs.
type Property[T any] struct {
	name string
}

// Name returns the property name.
func (p *Property[T]) Name() string {
	return p.name
}

// Get reads the property. Numbers of another numeric type are converted;
// any other value of another type reads as the zero T.
func (p *Property[T]) Get(h Host) T {
	return coerce[T](h.Base().Get(p.name))
}

// Set writes the property.
func (p *Property[T]) Set(h Host, v T) {
	h.Base().Set(p.name, v)
}

// SetTask writes a deferred value. Layers that apply values do so once t
// resolves.
func (p *Property[T]) SetTask(h Host, t *async.Task) {
	h.Base().Set(p.name, t)
}

// PropertyNamed returns a handle for a property declared elsewhere. Handles
// carry only the name, so one handle serves every class declaring it.
func PropertyNamed[T any](name string) *Property[T] {
	return &Property[T]{name: name}
}

// Prop declares a plain stored property. An existing accessor is kept.
func Prop[T any](cls *Class, name string) *Property[T] {
	cls.mustBeOpen()
	if cls.Accessor(name) == nil {
		cls.setAccessor(name, storageAccessor(name))
	}
	return &Property[T]{name: name}
}

// Method declares a method property callable with Element.Call and
// observable like any other property.
func Method(cls *Class, name string, fn func(el *Element, args ...any) any) {
	cls.setAccessor(name, &Accessor{Method: fn})
}

// DefineAccessor declares a property with a custom getter and setter.
// Either may be nil.
func DefineAccessor(cls *Class, name string, get func(el *Element) any, set func(el *Element, v any)) {
	cls.setAccessor(name, &Accessor{Get: get, Set: set})
}

func coerce[T any](v any) T {
	if t, ok := v.(T); ok {
		return t
	}
	var zero T
	if v == nil {
		return zero
	}
	rv, tt := reflect.ValueOf(v), reflect.TypeFor[T]()
	if isNumeric(rv.Kind()) && isNumeric(tt.Kind()) {
		return rv.Convert(tt).Interface().(T)
	}
	return zero
}
