package hxel

import (
	"slices"

	"github.com/pthm/hxel/lib/hook"
	"github.com/pthm/hxel/lib/meta"
)

const slotDisconnectedCallbacks = "disconnectedCallbacks"

// ConnectedCallback is a registered connect-time callback. Registering the
// same *ConnectedCallback on a class twice is a no-op, which lets features
// share one callback across many declarations.
type ConnectedCallback struct {
	fn func(el *Element, cls *Class)
}

// NewConnectedCallback wraps fn for AddConnectedCallback.
func NewConnectedCallback(fn func(el *Element, cls *Class)) *ConnectedCallback {
	return &ConnectedCallback{fn: fn}
}

// connectedHook runs the native behavior, then every registered callback.
// It is attached at most once per class.
var connectedHook = hook.New[*Element, noArgs](connectedCallback,
	func(el *Element, super func(noArgs), args noArgs) {
		if !el.IsConnected() {
			return
		}
		super(args)

		cbs, ok := meta.Lookup[*meta.Set[*ConnectedCallback]](el.class.node, slotConnectedCallbacks)
		if !ok {
			return
		}
		for _, cb := range cbs.Items() {
			cb.fn(el, el.class)
		}
	})

var disconnectedHook = hook.New[*Element, noArgs](disconnectedCallback,
	func(el *Element, super func(noArgs), args noArgs) {
		super(args)

		list, ok := meta.Lookup[*meta.List[func(*Element)]](el.class.node, slotDisconnectedCallbacks)
		if !ok {
			return
		}
		for _, fn := range list.Items {
			fn(el)
		}
	})

// OnConnected registers fn to run on every connection of an element of cls
// (or a subclass declared later), after the host's native
// ConnectedCallback.
func OnConnected(cls *Class, fn func(el *Element, cls *Class)) *ConnectedCallback {
	cb := NewConnectedCallback(fn)
	AddConnectedCallback(cls, cb)
	return cb
}

// AddConnectedCallback registers cb on cls. It reports false when cb was
// already visible on cls.
func AddConnectedCallback(cls *Class, cb *ConnectedCallback) bool {
	cls.mustBeOpen()
	connectedHook.Attach(cls.node)
	return meta.Own(cls.node, slotConnectedCallbacks, meta.CloneSet[*ConnectedCallback]).Add(cb)
}

// OnConnectedMethod calls the named method on every connection.
func OnConnectedMethod(cls *Class, method string) {
	OnConnected(cls, func(el *Element, _ *Class) {
		trackResult(el.Call(method))
	})
}

// OnDisconnected registers fn to run each time an element of cls leaves the
// document, after the host's native DisconnectedCallback.
func OnDisconnected(cls *Class, fn func(el *Element)) {
	cls.mustBeOpen()
	disconnectedHook.Attach(cls.node)
	list := meta.Own(cls.node, slotDisconnectedCallbacks, meta.CloneList[func(*Element)])
	list.Items = append(list.Items, fn)
}

var upgradeProperties = NewConnectedCallback(func(el *Element, _ *Class) {
	upgradeOwnProperties(el)
})

// UpgradeProperties re-applies, on connection, values that were assigned to
// an element before its class was defined, so they pass through the class
// accessors.
func UpgradeProperties(cls *Class) {
	AddConnectedCallback(cls, upgradeProperties)
}

func upgradeOwnProperties(el *Element) {
	names := make([]string, 0, len(el.values))
	for name := range el.values {
		if acc := el.accessor(name); acc != nil && acc.Set != nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		v := el.values[name]
		delete(el.values, name)
		el.Set(name, v)
	}
}

// attributeBridge routes a changed attribute into the camelized property,
// so attribute writes and property writes share one code path.
var attributeBridge = hook.New[*Element, AttributeChange](attributeChangedCallback,
	func(el *Element, super func(AttributeChange), c AttributeChange) {
		super(c)
		if sameAttr(c.Old, c.Value) {
			return
		}
		property := Camelize(c.Name)
		el.Set(property, el.Get(property))
	})

func sameAttr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
