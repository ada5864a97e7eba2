package dom

import "slices"

// Parent returns the parent node, or nil. The parent of a shadow root's
// top-level children is the shadow root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Elements returns the element children.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.typ == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// AttachShadow creates the node's open shadow root, or returns the
// existing one.
func (n *Node) AttachShadow() *Node {
	if n.shadow == nil {
		n.shadow = &Node{typ: ShadowRootNode, host: n}
	}
	return n.shadow
}

// ShadowRoot returns the shadow root, or nil.
func (n *Node) ShadowRoot() *Node {
	return n.shadow
}

// Host returns the element hosting a shadow root.
func (n *Node) Host() *Node {
	return n.host
}

// RootNode returns the root of the tree n belongs to: a document, a shadow
// root, or the topmost detached ancestor.
func (n *Node) RootNode() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// IsConnected reports whether n is in a document, looking through shadow
// roots to their hosts.
func (n *Node) IsConnected() bool {
	for cur := n; cur != nil; {
		switch {
		case cur.typ == DocumentNode:
			return true
		case cur.parent != nil:
			cur = cur.parent
		default:
			cur = cur.host
		}
	}
	return false
}

// Append adds children at the end, moving them from any previous parent.
func (n *Node) Append(children ...*Node) {
	for _, c := range children {
		n.insert(c, len(n.children))
	}
}

// Prepend adds children at the start, preserving their order.
func (n *Node) Prepend(children ...*Node) {
	for i, c := range children {
		n.insert(c, i)
	}
}

// InsertBefore inserts c before ref; a nil or foreign ref appends.
func (n *Node) InsertBefore(c, ref *Node) {
	idx := slices.Index(n.children, ref)
	if ref == nil || idx < 0 {
		idx = len(n.children)
	}
	n.insert(c, idx)
}

func (n *Node) insert(c *Node, idx int) {
	if c.parent != nil {
		if c.parent == n {
			if i := slices.Index(n.children, c); i >= 0 && i < idx {
				idx--
			}
		}
		c.parent.RemoveChild(c)
	}
	if idx > len(n.children) {
		idx = len(n.children)
	}
	n.children = slices.Insert(n.children, idx, c)
	c.parent = n
	n.notify(MutationRecord{Type: MutationChildList, Target: n, Added: []*Node{c}})
	if c.IsConnected() {
		c.walk(func(x *Node) {
			if x.custom != nil {
				x.custom.Connected()
			}
		})
	}
}

// RemoveChild detaches c from n. It does nothing if c is not a child.
func (n *Node) RemoveChild(c *Node) {
	i := slices.Index(n.children, c)
	if i < 0 {
		return
	}
	wasConnected := c.IsConnected()
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	n.notify(MutationRecord{Type: MutationChildList, Target: n, Removed: []*Node{c}})
	if wasConnected {
		c.walk(func(x *Node) {
			if x.custom != nil {
				x.custom.Disconnected()
			}
		})
	}
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// walk visits n and its descendants in tree order, entering shadow trees
// before light children.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	if n.shadow != nil {
		for _, c := range n.shadow.Children() {
			c.walk(fn)
		}
	}
	for _, c := range n.Children() {
		c.walk(fn)
	}
}

// Walk visits n and every descendant, including shadow trees.
func (n *Node) Walk(fn func(*Node)) {
	n.walk(fn)
}

// SlotName returns the slot attribute of a light DOM child ("" for the
// default slot).
func (n *Node) SlotName() string {
	return n.Attr("slot")
}

// AssignedNodes returns the host's light DOM element children assigned to
// a <slot> element in its shadow tree, matched by name.
func (n *Node) AssignedNodes() []*Node {
	if n.tag != "slot" {
		return nil
	}
	root := n.RootNode()
	if root.typ != ShadowRootNode || root.host == nil {
		return nil
	}
	name := n.Attr("name")
	var out []*Node
	for _, c := range root.host.Elements() {
		if c.SlotName() == name {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy of n's attributes, text and light DOM children.
// Shadow roots, listeners and custom behavior are not copied.
func (n *Node) Clone() *Node {
	c := &Node{
		typ:   n.typ,
		tag:   n.tag,
		text:  n.text,
		attrs: slices.Clone(n.attrs),
	}
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}
