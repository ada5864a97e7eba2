package hxel

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/hook"
	"github.com/pthm/hxel/lib/meta"
)

// Metadata slots stored on a class node. Each is inherited by subclasses and
// copied on the first local write.
const (
	slotProperties         = "properties"
	slotObservedAttributes = "observedAttributes"
	slotObservedProperties = "observedProperties"
	slotObserverMethods    = "observedPropertyCallbacks"
	slotConnectedCallbacks = "connectedCallbacks"
	slotEventListeners     = "eventListeners"
	slotEvents             = "events"
)

// Lifecycle method names used as hook chain keys.
const (
	connectedCallback        = "connectedCallback"
	disconnectedCallback     = "disconnectedCallback"
	attributeChangedCallback = "attributeChangedCallback"
)

// declMu guards the accessor tables. Tables are shared with subclasses until
// they are copied, so a single lock covers the whole hierarchy.
var declMu sync.RWMutex

// Accessor is one entry of a class's property table. A property is either a
// value (Get and/or Set) or a method.
type Accessor struct {
	Get    func(el *Element) any
	Set    func(el *Element, v any)
	Method func(el *Element, args ...any) any
}

// AttributeChange is the argument of the attribute changed chain.
type AttributeChange struct {
	Name  string
	Old   *string
	Value *string
}

type noArgs = struct{}

// Class describes a custom element type: its tag, its parent class and the
// metadata that decorators attach to it. Declarations are made before the
// class is passed to Registry.Define; afterwards the class is sealed.
//
// Example:
//
//	var Panel = hxel.NewClass("x-panel")
//
//	var (
//	    label = hxel.TextAttr(Panel, "label")
//	    open  = hxel.BoolAttr(Panel, "open")
//	)
//
//	func init() {
//	    hxel.Observe(Panel, "Render", "label", "open")
//	}
type Class struct {
	name    string
	parent  *Class
	node    *meta.Node
	factory func(el *Element) Host
	defined atomic.Bool

	connected        hook.Method[*Element, noArgs]
	disconnected     hook.Method[*Element, noArgs]
	attributeChanged hook.Method[*Element, AttributeChange]
	observed         map[string]bool
}

// NewClass creates a root class for tag. The tag is validated by
// Registry.Define; abstract base classes may use an empty tag.
func NewClass(tag string) *Class {
	return newClass(tag, nil)
}

func newClass(tag string, parent *Class) *Class {
	var parentNode *meta.Node
	if parent != nil {
		parentNode = parent.node
	}
	return &Class{
		name:   tag,
		parent: parent,
		node:   meta.NewNode(tag, parentNode),
	}
}

// Extend creates a subclass of c. The subclass sees every declaration made
// on c; declarations on the subclass never reach c or its siblings.
func (c *Class) Extend(tag string) *Class {
	return newClass(tag, c)
}

// WithHost sets the factory that builds the host value for each new
// element. Subclasses inherit the nearest factory.
func (c *Class) WithHost(factory func(el *Element) Host) *Class {
	c.mustBeOpen()
	c.factory = factory
	return c
}

// Name returns the class tag.
func (c *Class) Name() string {
	return c.name
}

// Parent returns the parent class, or nil for a root class.
func (c *Class) Parent() *Class {
	return c.parent
}

// Node returns the class's metadata node, used to attach custom hooks.
func (c *Class) Node() *meta.Node {
	return c.node
}

// Defined reports whether the class has been registered.
func (c *Class) Defined() bool {
	return c.defined.Load()
}

// ObservedAttributes returns the attribute names the class reacts to, in
// declaration order.
func (c *Class) ObservedAttributes() []string {
	list, ok := meta.Lookup[*meta.Set[string]](c.node, slotObservedAttributes)
	if !ok {
		return nil
	}
	return list.Items()
}

// AddObservedAttribute adds name to the class's observed attributes.
func AddObservedAttribute(cls *Class, name string) {
	cls.mustBeOpen()
	meta.Own(cls.node, slotObservedAttributes, meta.CloneSet[string]).Add(name)
}

// Accessor returns the visible accessor for property, or nil.
func (c *Class) Accessor(property string) *Accessor {
	declMu.RLock()
	defer declMu.RUnlock()

	props, ok := meta.Lookup[map[string]*Accessor](c.node, slotProperties)
	if !ok {
		return nil
	}
	return props[property]
}

func (c *Class) setAccessor(property string, acc *Accessor) {
	c.mustBeOpen()
	declMu.Lock()
	defer declMu.Unlock()

	meta.Own(c.node, slotProperties, meta.CloneMap[string, *Accessor])[property] = acc
}

func (c *Class) mustBeOpen() {
	if c.defined.Load() {
		panic(fmt.Errorf("%w: %s", ErrClassDefined, c.name))
	}
}

func (c *Class) hostFactory() func(el *Element) Host {
	for k := c; k != nil; k = k.parent {
		if k.factory != nil {
			return k.factory
		}
	}
	return nil
}

// construct builds the host for el and runs the class's constructor hooks.
func (c *Class) construct(el *Element) Host {
	var h Host = el
	if f := c.hostFactory(); f != nil {
		h = f(el)
	}
	replaced := hook.Construct[Host](c.node, h)
	if replaced == nil || replaced.Base() != el {
		warn("constructor hook returned a host for another element",
			zap.String("class", c.name))
		return h
	}
	return replaced
}

// OnConstruct registers fn to run after each element of cls is built.
// Returning true replaces the host; the replacement must wrap the same
// *Element.
func OnConstruct(cls *Class, fn func(h Host) (Host, bool)) {
	cls.mustBeOpen()
	hook.NewConstructor[Host](fn).Attach(cls.node)
}

// finalize composes the lifecycle chains and seals the class.
func (c *Class) finalize() {
	c.connected = hook.Compose[*Element, noArgs](c.node, connectedCallback, nativeConnected)
	c.disconnected = hook.Compose[*Element, noArgs](c.node, disconnectedCallback, nativeDisconnected)
	c.attributeChanged = hook.Compose[*Element, AttributeChange](c.node, attributeChangedCallback, nativeAttributeChanged)

	c.observed = make(map[string]bool)
	for _, name := range c.ObservedAttributes() {
		c.observed[name] = true
	}

	c.node.Seal()
	c.defined.Store(true)
}

func (c *Class) observes(name string) bool {
	return c.observed[name]
}

func nativeConnected(el *Element, _ noArgs) {
	if h, ok := el.host.(ConnectedCallbacker); ok {
		h.ConnectedCallback()
	}
}

func nativeDisconnected(el *Element, _ noArgs) {
	if h, ok := el.host.(DisconnectedCallbacker); ok {
		h.DisconnectedCallback()
	}
}

func nativeAttributeChanged(el *Element, c AttributeChange) {
	if h, ok := el.host.(AttributeChangedCallbacker); ok {
		h.AttributeChangedCallback(c.Name, c.Old, c.Value)
	}
}
