// Package dom is a small in-memory document model: elements with ordered
// attributes, child lists, open shadow roots, event dispatch and mutation
// observers, plus HTML rendering through templ.
//
// It is not a browser. It implements the parts of the DOM that custom
// element lifecycles depend on: connection to a document, attribute change
// notification and observation, and slot assignment by the slot attribute.
// All operations are synchronous and expected to be called from one
// goroutine.
package dom

import (
	"strings"
)

// NodeType distinguishes node kinds.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	DocumentNode
	ShadowRootNode
)

// Custom receives lifecycle notifications for an upgraded custom element.
type Custom interface {
	// Connected runs after the node becomes part of a document.
	Connected()
	// Disconnected runs after the node leaves a document.
	Disconnected()
	// AttributeChanged runs after an observed attribute changes. A nil
	// value means the attribute is absent.
	AttributeChanged(name string, old, value *string)
	// Observes reports whether AttributeChanged should fire for name.
	Observes(name string) bool
}

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an element, text node, document or shadow root.
type Node struct {
	typ      NodeType
	tag      string
	text     string
	attrs    []Attr
	children []*Node
	parent   *Node
	shadow   *Node
	host     *Node

	listeners map[string][]*Listener
	observers []*observation
	custom    Custom
}

// NewElement creates a detached element. Tag names are lower-cased.
func NewElement(tag string) *Node {
	return &Node{typ: ElementNode, tag: strings.ToLower(tag)}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{typ: TextNode, text: text}
}

// Type returns the node kind.
func (n *Node) Type() NodeType {
	return n.typ
}

// TagName returns the lower-case tag name of an element.
func (n *Node) TagName() string {
	return n.tag
}

// IsCustom reports whether the tag name is a valid custom element name.
func (n *Node) IsCustom() bool {
	return ValidCustomName(n.tag)
}

// ValidCustomName reports whether name can be registered as a custom
// element: lower-case, starting with a letter, containing a hyphen.
func ValidCustomName(name string) bool {
	if name == "" || !strings.Contains(name, "-") {
		return false
	}
	if name[0] < 'a' || name[0] > 'z' {
		return false
	}
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			return false
		}
	}
	return true
}

// SetCustom installs the lifecycle receiver for a custom element.
func (n *Node) SetCustom(c Custom) {
	n.custom = c
}

// Custom returns the installed lifecycle receiver, if any.
func (n *Node) Custom() Custom {
	return n.custom
}

// Text returns a text node's data.
func (n *Node) Text() string {
	return n.text
}

// TextContent concatenates the data of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.typ == TextNode {
		return n.text
	}
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// SetTextContent replaces the children with a single text node.
func (n *Node) SetTextContent(text string) {
	if n.typ == TextNode {
		n.text = text
		return
	}
	for len(n.children) > 0 {
		n.RemoveChild(n.children[0])
	}
	if text != "" {
		n.Append(NewText(text))
	}
}

// Attributes returns a copy of the attributes in insertion order.
func (n *Node) Attributes() []Attr {
	return append([]Attr(nil), n.attrs...)
}

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the attribute value, or "" when absent.
func (n *Node) Attr(name string) string {
	v, _ := n.GetAttribute(name)
	return v
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets an attribute, notifying observers and the custom
// element lifecycle even when the value is unchanged, as browsers do.
func (n *Node) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	var old *string
	found := false
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			prev := n.attrs[i].Value
			old = &prev
			n.attrs[i].Value = value
			found = true
			break
		}
	}
	if !found {
		n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	}
	n.attributeChanged(name, old, &value)
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			old := a.Value
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.attributeChanged(name, &old, nil)
			return
		}
	}
}

// ToggleAttribute adds an empty attribute when force is true and removes
// it otherwise. It returns force.
func (n *Node) ToggleAttribute(name string, force bool) bool {
	if force {
		if !n.HasAttribute(name) {
			n.SetAttribute(name, "")
		}
		return true
	}
	n.RemoveAttribute(name)
	return false
}

// ID returns the id attribute.
func (n *Node) ID() string {
	return n.Attr("id")
}

// ClassList returns the whitespace separated class names.
func (n *Node) ClassList() []string {
	return strings.Fields(n.Attr("class"))
}

func (n *Node) attributeChanged(name string, old, value *string) {
	n.notify(MutationRecord{Type: MutationAttributes, Target: n, AttributeName: name, OldValue: old})
	if n.custom != nil && n.custom.Observes(name) {
		n.custom.AttributeChanged(name, old, value)
	}
}
