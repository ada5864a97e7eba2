package dom

import "strings"

// Style returns the inline style declarations in order.
func (n *Node) Style() []Attr {
	var decls []Attr
	for _, part := range strings.Split(n.Attr("style"), ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		decls = append(decls, Attr{Name: name, Value: strings.TrimSpace(value)})
	}
	return decls
}

// StyleProperty returns an inline style property, "" when unset.
// Custom properties (--name) are case sensitive.
func (n *Node) StyleProperty(name string) string {
	for _, d := range n.Style() {
		if d.Name == name {
			return d.Value
		}
	}
	return ""
}

// SetStyleProperty sets an inline style property. An empty value removes
// it. The change is written back to the style attribute.
func (n *Node) SetStyleProperty(name, value string) {
	decls := n.Style()
	found := false
	out := decls[:0]
	for _, d := range decls {
		if d.Name == name {
			found = true
			if value == "" {
				continue
			}
			d.Value = value
		}
		out = append(out, d)
	}
	if !found && value != "" {
		out = append(out, Attr{Name: name, Value: value})
	}

	if len(out) == 0 {
		n.RemoveAttribute("style")
		return
	}
	parts := make([]string, len(out))
	for i, d := range out {
		parts[i] = d.Name + ": " + d.Value
	}
	n.SetAttribute("style", strings.Join(parts, "; "))
}
