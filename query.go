package hxel

import (
	"fmt"
	"strings"

	"github.com/pthm/hxel/lib/dom"
)

// QueryAll resolves a comma separated list of queries against el. ":host"
// is el's node, ":root" its shadow root, ":light-host" the outermost host
// not inside a shadow tree; anything else is a selector searched in the
// shadow root when there is one, in the light DOM otherwise.
func QueryAll(el *Element, queries string) []*dom.Node {
	var out []*dom.Node
	for _, q := range strings.Split(queries, ",") {
		out = append(out, findAll(el.node, strings.TrimSpace(q))...)
	}
	return out
}

func findAll(n *dom.Node, query string) []*dom.Node {
	switch query {
	case "":
		return nil
	case ":host":
		return []*dom.Node{n}
	case ":root":
		if root := n.ShadowRoot(); root != nil {
			return []*dom.Node{root}
		}
		return nil
	case ":light-host":
		for {
			root := n.RootNode()
			if root.Type() != dom.ShadowRootNode {
				return []*dom.Node{n}
			}
			n = root.Host()
		}
	}
	if root := n.ShadowRoot(); root != nil {
		return root.QuerySelectorAll(query)
	}
	return n.QuerySelectorAll(query)
}

// Query returns the first node QueryAll would return, or nil.
func Query(el *Element, queries string) *dom.Node {
	if all := QueryAll(el, queries); len(all) > 0 {
		return all[0]
	}
	return nil
}

// ElementQuery declares a read-only property returning the first node
// matching selector in the shadow root (or light DOM).
func ElementQuery(cls *Class, property, selector string) *Property[*dom.Node] {
	DefineAccessor(cls, property, func(el *Element) any {
		return Query(el, selector)
	}, nil)
	return &Property[*dom.Node]{name: property}
}

// ElementsQuery declares a read-only property returning every node matching
// selector.
func ElementsQuery(cls *Class, property, selector string) *Property[[]*dom.Node] {
	DefineAccessor(cls, property, func(el *Element) any {
		return QueryAll(el, selector)
	}, nil)
	return &Property[[]*dom.Node]{name: property}
}

// BindElement declares property as a view of childProperty on the nodes
// matching selector: reads come from the first match, writes go to all.
func BindElement(cls *Class, property, selector, childProperty string) {
	DefineAccessor(cls, property,
		func(el *Element) any {
			if n := Query(el, selector); n != nil {
				return nodeValue(n, childProperty)
			}
			return nil
		},
		func(el *Element, v any) {
			for _, n := range QueryAll(el, selector) {
				setNodeValue(n, childProperty, v)
			}
		})
}

// nodeValue reads a property of a node: a property of its element when it
// is a custom element, textContent, or an attribute.
func nodeValue(n *dom.Node, property string) any {
	if el := ElementOf(n); el != nil && !strings.Contains(property, "-") {
		return el.Get(property)
	}
	if property == "textContent" {
		return n.TextContent()
	}
	if v, ok := n.GetAttribute(Dashify(property)); ok {
		return v
	}
	return nil
}

func setNodeValue(n *dom.Node, property string, v any) {
	if el := ElementOf(n); el != nil && !strings.Contains(property, "-") {
		el.Set(property, v)
		return
	}
	s := toString(v)
	if property == "textContent" {
		n.SetTextContent(s)
		return
	}
	n.SetAttribute(Dashify(property), s)
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatNumber(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
