// Package meta attaches named metadata slots to owners arranged in an
// inheritance chain.
//
// A slot read through a descendant that never wrote it resolves to the
// nearest ancestor's value. The first write through Own copies that value
// onto the descendant, after which the two are independent: later ancestor
// writes are not seen by an already materialized descendant.
package meta

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrSealed is the panic value (wrapped) raised when a sealed node would
// gain a new slot.
var ErrSealed = errors.New("meta: owner is sealed")

// Node is an owner of metadata slots.
type Node struct {
	name   string
	parent *Node

	mu     sync.Mutex
	slots  map[string]any
	sealed bool
}

// NewNode creates an owner inheriting from parent (nil for a root).
func NewNode(name string, parent *Node) *Node {
	return &Node{
		name:   name,
		parent: parent,
		slots:  make(map[string]any),
	}
}

// Name returns the owner's name.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the owner this node inherits from.
func (n *Node) Parent() *Node {
	return n.parent
}

// HasOwn reports whether slot is materialized on n itself.
func (n *Node) HasOwn(slot string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.slots[slot]
	return ok
}

// Seal forbids materializing further slots on n. Existing slots stay
// writable in place.
func (n *Node) Seal() {
	n.mu.Lock()
	n.sealed = true
	n.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (n *Node) Sealed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sealed
}

// Lookup returns the nearest value of slot visible from n, searching n
// first and then its ancestors.
func Lookup[T any](n *Node, slot string) (T, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		v, ok := cur.slots[slot]
		cur.mu.Unlock()
		if ok {
			return v.(T), true
		}
	}
	var zero T
	return zero, false
}

// Own returns n's local value for slot, materializing it first if needed.
//
// On first use merge receives the nearest ancestor's current value (ok is
// false when no ancestor has one) and must return a fresh copy. The copy is
// stored on n and returned unchanged by every later call, so T should be a
// reference type that callers mutate in place.
func Own[T any](n *Node, slot string, merge func(inherited T, ok bool) T) T {
	n.mu.Lock()
	defer n.mu.Unlock()

	if v, ok := n.slots[slot]; ok {
		return v.(T)
	}
	if n.sealed {
		panic(fmt.Errorf("%w: %s.%s", ErrSealed, n.name, slot))
	}

	var inherited T
	var ok bool
	if n.parent != nil {
		inherited, ok = Lookup[T](n.parent, slot)
	}
	v := merge(inherited, ok)
	n.slots[slot] = v
	return v
}

// List is an ordered, growable slot value.
type List[T any] struct {
	Items []T
}

// CloneList is a merge function for List slots.
func CloneList[T any](inherited *List[T], ok bool) *List[T] {
	if !ok || inherited == nil {
		return &List[T]{}
	}
	return &List[T]{Items: slices.Clone(inherited.Items)}
}

// Set is an insertion-ordered set slot value.
type Set[T comparable] struct {
	index map[T]struct{}
	items []T
}

// NewSet creates an empty Set.
func NewSet[T comparable]() *Set[T] {
	return &Set[T]{index: make(map[T]struct{})}
}

// Add inserts v and reports whether it was new.
func (s *Set[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is in the set.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Items returns the members in insertion order.
func (s *Set[T]) Items() []T {
	return slices.Clone(s.items)
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	return len(s.items)
}

// CloneSet is a merge function for Set slots.
func CloneSet[T comparable](inherited *Set[T], ok bool) *Set[T] {
	s := NewSet[T]()
	if ok && inherited != nil {
		for _, v := range inherited.items {
			s.Add(v)
		}
	}
	return s
}

// CloneMap is a merge function for plain map slots. Values are copied
// shallowly.
func CloneMap[K comparable, V any](inherited map[K]V, ok bool) map[K]V {
	if !ok || inherited == nil {
		return make(map[K]V)
	}
	return maps.Clone(inherited)
}
