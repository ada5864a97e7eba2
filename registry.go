package hxel

import (
	"fmt"
	"slices"
	"sync"
	"time"
	"weak"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/async"
	"github.com/pthm/hxel/lib/dom"
)

// Registry maps tags to classes and upgrades elements once their class is
// defined. Elements created before their definition stay plain until then;
// the registry holds them weakly, so a dropped element is never upgraded.
type Registry struct {
	mu      sync.RWMutex
	encoder *Encoder
	classes map[string]*Class
	pending map[string][]weak.Pointer[Element]
	waiters map[string][]async.Promise
}

// NewRegistry creates a registry whose snapshots are sealed with key.
func NewRegistry(key []byte) *Registry {
	enc, err := NewEncoder(key)
	if err != nil {
		panic(fmt.Sprintf("hxel: failed to create encoder: %v", err))
	}

	return &Registry{
		encoder: enc,
		classes: make(map[string]*Class),
		pending: make(map[string][]weak.Pointer[Element]),
		waiters: make(map[string][]async.Promise),
	}
}

// Encoder returns the registry's snapshot encoder.
func (reg *Registry) Encoder() *Encoder {
	return reg.encoder
}

// Define registers classes. Each class's lifecycle chains are composed and
// the class is sealed: later declarations on it panic. Elements already
// created with the tag are upgraded.
//
// Panics on an invalid tag, a tag that is already defined, or a class that
// was already defined.
func (reg *Registry) Define(classes ...*Class) {
	for _, cls := range classes {
		reg.define(cls)
	}
}

func (reg *Registry) define(cls *Class) {
	tag := cls.Name()
	if !dom.ValidCustomName(tag) {
		panic(fmt.Errorf("%w: %q", ErrInvalidTag, tag))
	}
	if cls.Defined() {
		panic(fmt.Errorf("%w: %s", ErrClassDefined, tag))
	}

	reg.mu.Lock()
	if _, exists := reg.classes[tag]; exists {
		reg.mu.Unlock()
		panic(fmt.Errorf("%w: %s", ErrDuplicateTag, tag))
	}
	cls.finalize()
	reg.classes[tag] = cls
	pending := reg.pending[tag]
	waiters := reg.waiters[tag]
	delete(reg.pending, tag)
	delete(reg.waiters, tag)
	reg.mu.Unlock()

	for _, wp := range pending {
		if el := wp.Value(); el != nil {
			reg.upgrade(el, cls)
		}
	}
	for _, p := range waiters {
		p.Resolve(cls)
	}
}

// Get returns the class defined for tag.
func (reg *Registry) Get(tag string) (*Class, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	cls, ok := reg.classes[tag]
	return cls, ok
}

// Tags returns the defined tags in sorted order.
func (reg *Registry) Tags() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tags := make([]string, 0, len(reg.classes))
	for tag := range reg.classes {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// upgrade applies cls to el: builds the host, replays observed attributes
// already present and connects the element if it is in a document.
func (reg *Registry) upgrade(el *Element, cls *Class) {
	el.class = cls
	el.host = cls.construct(el)

	for _, a := range el.node.Attributes() {
		if cls.observes(a.Name) {
			v := a.Value
			el.AttributeChanged(a.Name, nil, &v)
		}
	}
	if el.IsConnected() {
		el.Connected()
	}
}

// Create creates a custom element. When tag is not defined yet a warning is
// logged and the element is upgraded once it is.
func (reg *Registry) Create(tag string) (*Element, error) {
	if !dom.ValidCustomName(tag) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	el := newElement(dom.NewElement(tag))
	reg.attach(el)
	return el, nil
}

// attach upgrades el now or queues it for its definition.
func (reg *Registry) attach(el *Element) {
	tag := el.TagName()
	reg.mu.Lock()
	cls, ok := reg.classes[tag]
	if !ok {
		reg.pending[tag] = append(reg.pending[tag], weak.Make(el))
	}
	reg.mu.Unlock()

	if !ok {
		warn("custom element not defined", el.fields()...)
		return
	}
	reg.upgrade(el, cls)
}

// MustCreate is like Create but panics on error.
func (reg *Registry) MustCreate(tag string) *Element {
	el, err := reg.Create(tag)
	if err != nil {
		panic(err)
	}
	return el
}

// CreateAll creates one element of tag per entry of list, assigns defaults
// then the entry's fields, and appends the elements to parent.
func (reg *Registry) CreateAll(parent *dom.Node, tag string, defaults map[string]any, list ...map[string]any) ([]*Element, error) {
	elements := make([]*Element, 0, len(list))
	nodes := make([]*dom.Node, 0, len(list))
	for _, fields := range list {
		el, err := reg.Create(tag)
		if err != nil {
			return nil, err
		}
		el.Assign(defaults)
		el.Assign(fields)
		elements = append(elements, el)
		nodes = append(nodes, el.node)
	}
	parent.Append(nodes...)
	return elements, nil
}

// Upgrade attaches an element to every custom element node under root
// (shadow trees included) that does not have one yet.
func (reg *Registry) Upgrade(root *dom.Node) {
	var found []*dom.Node
	root.Walk(func(n *dom.Node) {
		if n.IsCustom() && n.Custom() == nil {
			found = append(found, n)
		}
	})
	for _, n := range found {
		reg.attach(newElement(n))
	}
}

// Require checks that every custom tag is defined. Missing tags are logged
// and returned as ErrNotDefined errors.
func (reg *Registry) Require(tags ...string) error {
	var err error
	for _, tag := range tags {
		if _, ok := reg.Get(tag); ok {
			continue
		}
		warn("missing custom element dependency", zap.String("tag", tag))
		err = multierr.Append(err, fmt.Errorf("%w: %s", ErrNotDefined, tag))
	}
	return err
}

// WhenDefined returns a task resolved with the class once tag is defined.
// If timeout is positive and elapses first, a warning is logged; the task
// keeps waiting.
func (reg *Registry) WhenDefined(tag string, timeout time.Duration) *async.Task {
	reg.mu.Lock()
	if cls, ok := reg.classes[tag]; ok {
		reg.mu.Unlock()
		return async.Resolved(cls)
	}
	p := async.NewPromise()
	reg.waiters[tag] = append(reg.waiters[tag], p)
	reg.mu.Unlock()

	if timeout > 0 {
		time.AfterFunc(timeout, func() {
			if !p.Settled() {
				warn("custom element was not defined in time",
					zap.String("tag", tag), zap.Duration("timeout", timeout))
			}
		})
	}
	return p.Task
}

// pendingCount returns how many elements still waiting for tag are alive.
func (reg *Registry) pendingCount(tag string) int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	n := 0
	for _, wp := range reg.pending[tag] {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}
