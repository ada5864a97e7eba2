// Package fixture describes documents in YAML so the CLI can build and
// render them.
//
//	title: Demo
//	body:
//	  - tag: x-panel
//	    attrs: {label: Details, id: details}
//	    children:
//	      - tag: p
//	        text: Body
//	  - tag: x-counter
//	    props: {count: 3}
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pthm/hxel"
	"github.com/pthm/hxel/lib/dom"
)

// Node is an element, or a text node when Tag is empty.
type Node struct {
	Tag      string            `yaml:"tag,omitempty"`
	Text     string            `yaml:"text,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Props    map[string]any    `yaml:"props,omitempty"`
	Children []Node            `yaml:"children,omitempty"`
}

// Fixture is a document description.
type Fixture struct {
	Title string `yaml:"title,omitempty"`
	Body  []Node `yaml:"body"`
}

// Load decodes a fixture. Unknown fields are rejected.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for i := range f.Body {
		if err := f.Body[i].validate(fmt.Sprintf("body[%d]", i)); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// LoadFile decodes the fixture at path.
func LoadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Load(file)
}

func (n *Node) validate(at string) error {
	if n.Tag == "" {
		if len(n.Attrs) > 0 || len(n.Props) > 0 || len(n.Children) > 0 {
			return fmt.Errorf("fixture: %s: text node with element fields", at)
		}
		return nil
	}
	if n.Text != "" && len(n.Children) > 0 {
		return fmt.Errorf("fixture: %s: both text and children", at)
	}
	if len(n.Props) > 0 && !dom.ValidCustomName(n.Tag) {
		return fmt.Errorf("fixture: %s: props on non-custom element %s", at, n.Tag)
	}
	for i := range n.Children {
		if err := n.Children[i].validate(fmt.Sprintf("%s.children[%d]", at, i)); err != nil {
			return err
		}
	}
	return nil
}

// Build creates the document. Custom elements are created through reg;
// their props are assigned once their subtree is in place.
func (f *Fixture) Build(reg *hxel.Registry) (*dom.Document, error) {
	doc := dom.NewDocument()
	if f.Title != "" {
		title := dom.NewElement("title")
		title.SetTextContent(f.Title)
		doc.Head().Append(title)
	}
	for i := range f.Body {
		if err := f.Body[i].build(reg, doc.Body()); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// build creates n and appends it to parent.
func (n *Node) build(reg *hxel.Registry, parent *dom.Node) error {
	if n.Tag == "" {
		parent.Append(dom.NewText(n.Text))
		return nil
	}

	var (
		node *dom.Node
		el   *hxel.Element
	)
	if dom.ValidCustomName(n.Tag) {
		var err error
		if el, err = reg.Create(n.Tag); err != nil {
			return err
		}
		node = el.Node()
	} else {
		node = dom.NewElement(n.Tag)
	}

	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		node.SetAttribute(name, n.Attrs[name])
	}
	if n.Text != "" {
		node.SetTextContent(n.Text)
	}
	for i := range n.Children {
		if err := n.Children[i].build(reg, node); err != nil {
			return err
		}
	}

	parent.Append(node)
	if el != nil {
		el.Assign(n.Props)
	}
	return nil
}
