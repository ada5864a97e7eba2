// Package hook composes independent behaviors onto a named lifecycle
// method of an owner.
//
// Every owner (a *meta.Node) keeps, per method name, an ordered set of
// attached hooks inherited copy-on-first-write from its ancestors. Compose
// folds that set over the native method: the earliest attachment wraps the
// native method, each later one wraps the previous result. At call time the
// most recently attached behavior runs first and decides whether and when
// to call the behavior below it.
package hook

import (
	"github.com/pthm/hxel/lib/lazy"
	"github.com/pthm/hxel/lib/meta"
)

// slot is the metadata slot holding the per-method hook lists.
const slot = "hooks"

// Method is an effective method bound at call time to its receiver.
type Method[S, A any] func(self S, args A)

// Behavior wraps the method that was effective before it was attached.
// super is never nil; it is a no-op when there is nothing below.
type Behavior[S, A any] func(self S, super func(A), args A)

// Hook is an attachable behavior. Its identity is the pointer: attaching
// the same *Hook twice to one owner has no effect.
type Hook[S, A any] struct {
	method string
	fn     Behavior[S, A]
}

// New creates a hook for the named method.
func New[S, A any](method string, fn Behavior[S, A]) *Hook[S, A] {
	return &Hook[S, A]{method: method, fn: fn}
}

// Method returns the lifecycle method name the hook targets.
func (h *Hook[S, A]) Method() string {
	return h.method
}

type registry = lazy.Map[string, *meta.Set[any]]

func newRegistry(entries ...lazy.Entry[string, *meta.Set[any]]) *registry {
	return lazy.New(func(*registry, string) *meta.Set[any] { return meta.NewSet[any]() }, entries...)
}

func ownRegistry(owner *meta.Node) *registry {
	return meta.Own(owner, slot, func(inherited *registry, ok bool) *registry {
		if !ok {
			return newRegistry()
		}
		return inherited.Clone(func(s *meta.Set[any]) *meta.Set[any] { return meta.CloneSet(s, true) })
	})
}

// Attach adds h to owner's chain for h's method. It reports false when h
// was already attached to owner (directly or inherited).
func (h *Hook[S, A]) Attach(owner *meta.Node) bool {
	return ownRegistry(owner).Get(h.method).Add(h)
}

// Attached reports whether h is visible in owner's chain.
func (h *Hook[S, A]) Attached(owner *meta.Node) bool {
	reg, ok := meta.Lookup[*registry](owner, slot)
	if !ok || !reg.Has(h.method) {
		return false
	}
	return reg.Get(h.method).Has(h)
}

// Hooks returns the hooks visible in owner's chain for method, in
// attachment order.
func Hooks(owner *meta.Node, method string) []any {
	reg, ok := meta.Lookup[*registry](owner, slot)
	if !ok || !reg.Has(method) {
		return nil
	}
	return reg.Get(method).Items()
}

// Compose builds the effective method for owner. Hooks of a different
// receiver or argument type attached under the same name are ignored.
func Compose[S, A any](owner *meta.Node, method string, native Method[S, A]) Method[S, A] {
	effective := native
	if effective == nil {
		effective = func(S, A) {}
	}
	for _, item := range Hooks(owner, method) {
		h, ok := item.(*Hook[S, A])
		if !ok {
			continue
		}
		effective = wrap(h.fn, effective)
	}
	return effective
}

func wrap[S, A any](fn Behavior[S, A], below Method[S, A]) Method[S, A] {
	return func(self S, args A) {
		fn(self, func(a A) { below(self, a) }, args)
	}
}

// Once adapts b so that it runs only on the first invocation per receiver;
// later invocations go straight to super.
func Once[E, A any](b Behavior[*E, A]) Behavior[*E, A] {
	executed := lazy.NewWeakSet[E]()
	return func(self *E, super func(A), args A) {
		if !executed.Add(self) {
			super(args)
			return
		}
		b(self, super, args)
	}
}

// OnceFunc adapts fn so that it runs at most once per receiver.
func OnceFunc[E any](fn func(self *E)) func(self *E) {
	executed := lazy.NewWeakSet[E]()
	return func(self *E) {
		if executed.Add(self) {
			fn(self)
		}
	}
}

// Constructor runs after an instance is built. Returning true replaces the
// instance with the returned value.
type Constructor[S any] func(self S) (S, bool)

// ConstructorHook is an attachable Constructor.
type ConstructorHook[S any] struct {
	fn Constructor[S]
}

// NewConstructor creates a constructor hook.
func NewConstructor[S any](fn Constructor[S]) *ConstructorHook[S] {
	return &ConstructorHook[S]{fn: fn}
}

// constructorMethod is the reserved method name for constructor hooks.
const constructorMethod = "constructor"

// Attach adds c to owner's constructor chain.
func (c *ConstructorHook[S]) Attach(owner *meta.Node) bool {
	return ownRegistry(owner).Get(constructorMethod).Add(c)
}

// Construct runs owner's constructor hooks over self in attachment order,
// each seeing the instance produced by the previous one.
func Construct[S any](owner *meta.Node, self S) S {
	for _, item := range Hooks(owner, constructorMethod) {
		c, ok := item.(*ConstructorHook[S])
		if !ok {
			continue
		}
		if replaced, ok := c.fn(self); ok {
			self = replaced
		}
	}
	return self
}
