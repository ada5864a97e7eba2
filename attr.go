package hxel

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pthm/hxel/lib/dom"
)

// Codec converts between an attribute and a typed property value.
type Codec[T any] struct {
	// Get decodes the attribute. An absent attribute decodes to a value
	// too (the empty string, false, zero, an empty list).
	Get func(n *dom.Node, name string) T
	// Set writes or removes the attribute.
	Set func(n *dom.Node, name string, v T)
	// Format renders a value the way Set would write it. The attribute is
	// only written when the formatted values differ.
	Format func(v T) string
}

// Text reflects a string. The empty string removes the attribute.
var Text = Codec[string]{
	Get: func(n *dom.Node, name string) string { return n.Attr(name) },
	Set: func(n *dom.Node, name string, v string) {
		if v != "" {
			n.SetAttribute(name, v)
		} else {
			n.RemoveAttribute(name)
		}
	},
	Format: func(v string) string { return v },
}

// Bool reflects presence of the attribute.
var Bool = Codec[bool]{
	Get:    func(n *dom.Node, name string) bool { return n.HasAttribute(name) },
	Set:    func(n *dom.Node, name string, v bool) { n.ToggleAttribute(name, v) },
	Format: strconv.FormatBool,
}

// Number reflects a float64. An absent or empty attribute is 0, an
// unparsable one NaN; NaN and infinities remove the attribute.
var Number = Codec[float64]{
	Get: func(n *dom.Node, name string) float64 {
		return parseNumber(n.Attr(name))
	},
	Set: func(n *dom.Node, name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			n.RemoveAttribute(name)
			return
		}
		n.SetAttribute(name, formatNumber(v))
	},
	Format: formatNumber,
}

// List reflects whitespace separated tokens. An empty list removes the
// attribute.
var List = Codec[[]string]{
	Get: func(n *dom.Node, name string) []string {
		return strings.Fields(n.Attr(name))
	},
	Set: func(n *dom.Node, name string, v []string) {
		if len(v) > 0 {
			n.SetAttribute(name, strings.Join(v, " "))
		} else {
			n.RemoveAttribute(name)
		}
	},
	Format: func(v []string) string { return strings.Join(v, " ") },
}

// Numbers reflects whitespace separated numbers. A nil list removes the
// attribute.
var Numbers = Codec[[]float64]{
	Get: func(n *dom.Node, name string) []float64 {
		fields := strings.Fields(n.Attr(name))
		nums := make([]float64, len(fields))
		for i, f := range fields {
			nums[i] = parseNumber(f)
		}
		return nums
	},
	Set: func(n *dom.Node, name string, v []float64) {
		if v == nil {
			n.RemoveAttribute(name)
			return
		}
		n.SetAttribute(name, formatNumbers(v))
	},
	Format: formatNumbers,
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNumbers(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatNumber(f)
	}
	return strings.Join(parts, " ")
}

// Attribute declares property as reflected to the attribute named by
// dashifying it. Writes of an unchanged value are ignored; the attribute is
// written only when its formatted value differs. Attribute changes flow
// back into the property.
//
//	var label = hxel.Attribute(Widget, "label", hxel.Text)
//	label.Set(w, "Hi") // <x-widget label="Hi">
func Attribute[T any](cls *Class, property string, codec Codec[T]) *Property[T] {
	cls.mustBeOpen()
	name := Dashify(property)

	attributeBridge.Attach(cls.node)
	AddObservedAttribute(cls, name)

	key := newSlotKey(property)
	Binding{
		Apply: func(el *Element, v any, _ string) {
			if Same(v, el.previous[key]) {
				return
			}
			el.previous[key] = v
			typed := coerce[T](v)
			if codec.Format(codec.Get(el.node, name)) != codec.Format(typed) {
				codec.Set(el.node, name, typed)
			}
		},
		Get: func(el *Element, _ string) any {
			return codec.Get(el.node, name)
		},
	}.Bind(cls, property)

	return &Property[T]{name: property}
}

// TextAttr declares a string attribute property.
func TextAttr(cls *Class, property string) *Property[string] {
	return Attribute(cls, property, Text)
}

// BoolAttr declares a boolean attribute property.
func BoolAttr(cls *Class, property string) *Property[bool] {
	return Attribute(cls, property, Bool)
}

// NumberAttr declares a numeric attribute property.
func NumberAttr(cls *Class, property string) *Property[float64] {
	return Attribute(cls, property, Number)
}

// ListAttr declares a token list attribute property.
func ListAttr(cls *Class, property string) *Property[[]string] {
	return Attribute(cls, property, List)
}

// NumbersAttr declares a number list attribute property.
func NumbersAttr(cls *Class, property string) *Property[[]float64] {
	return Attribute(cls, property, Numbers)
}

// Camelize converts a dashed attribute name to a property name:
// "max-value" becomes "maxValue".
func Camelize(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '-' && i+1 < len(name) {
			i++
			sb.WriteRune(unicode.ToUpper(rune(name[i])))
			continue
		}
		sb.WriteByte(name[i])
	}
	return sb.String()
}

// Dashify converts a property name to an attribute name: "maxValue"
// becomes "max-value".
func Dashify(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			sb.WriteByte('-')
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
