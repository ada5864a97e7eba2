package hxel

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pthm/hxel/lib/dom"
)

// findSlot returns the <slot> named name in host's shadow root, or in the
// shadow root host lives in.
func findSlot(host *dom.Node, name string) *dom.Node {
	root := host.ShadowRoot()
	if root == nil {
		if r := host.RootNode(); r.Type() == dom.ShadowRootNode {
			root = r
		}
	}
	if root == nil {
		return nil
	}
	for _, s := range root.QuerySelectorAll("slot") {
		if s.Attr("name") == name {
			return s
		}
	}
	return nil
}

// lightDOMSlot climbs out of enclosing shadow trees, creating proxy slots
// on the way, and returns the light DOM host and slot name that content
// must be appended to.
func lightDOMSlot(host *dom.Node, slot string) (*dom.Node, string) {
	for {
		root := host.RootNode()
		if root.Type() != dom.ShadowRootNode {
			return host, slot
		}

		var proxy *dom.Node
		for _, c := range host.Elements() {
			if c.TagName() == "slot" && c.SlotName() == slot {
				proxy = c
				break
			}
		}
		if proxy == nil {
			proxy = dom.NewElement("slot")
			if slot != "" {
				proxy.SetAttribute("name", slot)
				proxy.SetAttribute("slot", slot)
			}
			host.Append(proxy)
		}

		host = root.Host()
		slot = proxy.Attr("name")
	}
}

func assignedElements(slot *dom.Node) []*dom.Node {
	var out []*dom.Node
	for _, n := range slot.AssignedNodes() {
		if n.TagName() == "slot" {
			out = append(out, assignedElements(n)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

func getSlotted(host *dom.Node, slot, tag string) []*dom.Node {
	lightDOMSlot(host, slot)
	s := findSlot(host, slot)
	if s == nil {
		return nil
	}
	assigned := assignedElements(s)
	if tag == "" {
		return assigned
	}
	var out []*dom.Node
	for _, n := range assigned {
		if n.Matches(tag) {
			out = append(out, n)
		}
	}
	return out
}

// createSlotted fills slot with a copy of the slot's fallback content, or a
// new element of tag when it has none.
func createSlotted(host *dom.Node, name, tag string) []*dom.Node {
	s := findSlot(host, name)
	target, slot := lightDOMSlot(host, name)

	var created []*dom.Node
	if s != nil {
		for _, c := range s.Elements() {
			created = append(created, c.Clone())
		}
	}
	if len(created) == 0 {
		created = []*dom.Node{dom.NewElement(tag)}
	}
	for _, c := range created {
		if slot != "" {
			c.SetAttribute("slot", slot)
		}
	}
	target.Append(created...)
	return created
}

// selectorTag returns the tag part of a simple selector, "span" if there is
// none.
func selectorTag(selector string) string {
	if i := strings.IndexAny(selector, "[ .:#"); i >= 0 {
		selector = selector[:i]
	}
	if selector == "" || selector == "*" {
		return "span"
	}
	return selector
}

// FindSlotted returns the elements assigned to slot of host, or their
// descendants matching selector. With create, an empty slot is first filled
// with a copy of its fallback content or a new element named after the
// selector's tag.
func FindSlotted(host *Element, slot, selector string, create bool) []*dom.Node {
	assigned := getSlotted(host.node, slot, "")
	if len(assigned) == 0 && create {
		assigned = createSlotted(host.node, slot, selectorTag(selector))
	}
	if selector == "" {
		return assigned
	}

	var out []*dom.Node
	for _, n := range assigned {
		if n.Matches(selector) {
			out = append(out, n)
			continue
		}
		out = append(out, n.QuerySelectorAll(selector)...)
	}
	return out
}

// Slotted declares a read-only property returning the first node found by
// FindSlotted.
func Slotted(cls *Class, property, slot, selector string, create bool) *Property[*dom.Node] {
	DefineAccessor(cls, property, func(el *Element) any {
		if all := FindSlotted(el, slot, selector, create); len(all) > 0 {
			return all[0]
		}
		return (*dom.Node)(nil)
	}, nil)
	return &Property[*dom.Node]{name: property}
}

// SlottedList declares a read-only property returning every slotted node,
// or their childProperty values when childProperty is set.
func SlottedList(cls *Class, property, slot, selector, childProperty string) {
	DefineAccessor(cls, property, func(el *Element) any {
		nodes := FindSlotted(el, slot, selector, false)
		if childProperty == "" {
			return nodes
		}
		values := make([]any, len(nodes))
		for i, n := range nodes {
			values[i] = nodeValue(n, childProperty)
		}
		return values
	}, nil)
}

// SlotView declares property as the content of slot: writes create the
// slotted element if needed and set its childProperty (textContent when
// empty); reads return the same value. A map value is assigned field by
// field.
//
//	var title = hxel.SlotView(Card, "title", "title", "h2", "")
//	title.Set(card, "Hello") // <h2 slot="title">Hello</h2>
func SlotView(cls *Class, property, slot, selector, childProperty string) *Property[any] {
	if childProperty == "" {
		childProperty = "textContent"
	}
	Binding{
		Apply: func(el *Element, v any, _ string) {
			if v == nil {
				warn("slotting a nil value", append(el.fields(),
					zap.String("slot", slot), zap.String("selector", selector))...)
			}
			for _, n := range FindSlotted(el, slot, selector, true) {
				if fields, ok := v.(map[string]any); ok {
					assignNode(n, fields)
					continue
				}
				setNodeValue(n, childProperty, v)
			}
		},
		Get: func(el *Element, _ string) any {
			if all := FindSlotted(el, slot, selector, false); len(all) > 0 {
				return nodeValue(all[0], childProperty)
			}
			return nil
		},
	}.Bind(cls, property)
	return &Property[any]{name: property}
}

func assignNode(n *dom.Node, fields map[string]any) {
	if el := ElementOf(n); el != nil {
		el.Assign(fields)
		return
	}
	for _, k := range sortedKeys(fields) {
		setNodeValue(n, k, fields[k])
	}
}

// RunIfEmptySlot makes method run only while slot has no matching content.
func RunIfEmptySlot(cls *Class, method, slot, selector string) {
	cls.mustBeOpen()
	existing := methodAccessor(cls, method)
	cls.setAccessor(method, &Accessor{Method: func(el *Element, args ...any) any {
		if len(FindSlotted(el, slot, selector, false)) > 0 {
			return nil
		}
		return existing.Method(el, args...)
	}})
}
