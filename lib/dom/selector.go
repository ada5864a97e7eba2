package dom

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrSelector is returned for selectors outside the supported grammar.
var ErrSelector = errors.New("dom: unsupported selector")

// Selector is a compiled selector list. Supported: type (tag, *), #id,
// .class, [attr], [attr=value] / [attr="value"], compound forms of those,
// the descendant combinator (whitespace) and comma-separated lists.
type Selector []complexSelector

type complexSelector []compound // left to right, joined by descendant combinators

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSelector
}

type attrSelector struct {
	name     string
	value    string
	hasValue bool
}

// Compile parses a selector list.
func Compile(src string) (Selector, error) {
	var sel Selector
	for _, part := range strings.Split(src, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: %q", ErrSelector, src)
		}
		var cx complexSelector
		for _, field := range splitFields(part) {
			c, err := parseCompound(field)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", err, src)
			}
			cx = append(cx, c)
		}
		sel = append(sel, cx)
	}
	return sel, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) Selector {
	sel, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return sel
}

// splitFields splits on whitespace outside attribute brackets and quotes.
func splitFields(s string) []string {
	var fields []string
	var cur strings.Builder
	depth := 0
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n'):
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	ident := func() string {
		start := i
		for i < len(s) && isIdent(s[i]) {
			i++
		}
		return s[start:i]
	}

	if i < len(s) && s[i] == '*' {
		i++
	} else {
		c.tag = strings.ToLower(ident())
	}

	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			c.id = ident()
			if c.id == "" {
				return c, ErrSelector
			}
		case '.':
			i++
			class := ident()
			if class == "" {
				return c, ErrSelector
			}
			c.classes = append(c.classes, class)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, ErrSelector
			}
			a, err := parseAttr(s[i+1 : i+end])
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
			i += end + 1
		default:
			return c, ErrSelector
		}
	}
	return c, nil
}

func parseAttr(s string) (attrSelector, error) {
	name, value, hasValue := strings.Cut(s, "=")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return attrSelector{}, ErrSelector
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return attrSelector{name: name, value: value, hasValue: hasValue}, nil
}

func isIdent(b byte) bool {
	return b == '-' || b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Match reports whether n matches any selector in the list.
func (sel Selector) Match(n *Node) bool {
	if n == nil || n.typ != ElementNode {
		return false
	}
	for _, cx := range sel {
		if cx.match(n) {
			return true
		}
	}
	return false
}

func (cx complexSelector) match(n *Node) bool {
	last := len(cx) - 1
	if !cx[last].match(n) {
		return false
	}
	k := last - 1
	for anc := n.parent; anc != nil && k >= 0; anc = anc.parent {
		if anc.typ == ElementNode && cx[k].match(anc) {
			k--
		}
	}
	return k < 0
}

func (c compound) match(n *Node) bool {
	if c.tag != "" && c.tag != n.tag {
		return false
	}
	if c.id != "" && n.ID() != c.id {
		return false
	}
	classes := n.ClassList()
	for _, class := range c.classes {
		if !slices.Contains(classes, class) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := n.GetAttribute(a.name)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

// Matches reports whether n matches the selector; invalid selectors never
// match.
func (n *Node) Matches(selector string) bool {
	sel, err := Compile(selector)
	if err != nil {
		return false
	}
	return sel.Match(n)
}

// QuerySelectorAll returns descendants matching selector in tree order.
// Shadow trees of descendants are not entered.
func (n *Node) QuerySelectorAll(selector string) []*Node {
	sel, err := Compile(selector)
	if err != nil {
		return nil
	}
	var out []*Node
	var visit func(*Node)
	visit = func(x *Node) {
		for _, c := range x.children {
			if sel.Match(c) {
				out = append(out, c)
			}
			visit(c)
		}
	}
	visit(n)
	return out
}

// QuerySelector returns the first descendant matching selector, or nil.
func (n *Node) QuerySelector(selector string) *Node {
	if all := n.QuerySelectorAll(selector); len(all) > 0 {
		return all[0]
	}
	return nil
}
