package dom

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Component renders n as HTML. Shadow roots are written as declarative
// shadow DOM (<template shadowrootmode="open">).
func (n *Node) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return n.render(w)
	})
}

// OuterHTML returns the rendered HTML of n.
func (n *Node) OuterHTML() string {
	var sb strings.Builder
	_ = n.render(&sb)
	return sb.String()
}

// InnerHTML returns the rendered HTML of n's children.
func (n *Node) InnerHTML() string {
	var sb strings.Builder
	for _, c := range n.children {
		_ = c.render(&sb)
	}
	return sb.String()
}

func (n *Node) render(w io.Writer) error {
	switch n.typ {
	case TextNode:
		_, err := io.WriteString(w, html.EscapeString(n.text))
		return err
	case DocumentNode:
		if _, err := io.WriteString(w, "<!DOCTYPE html>"); err != nil {
			return err
		}
		return n.renderChildren(w)
	case ShadowRootNode:
		if _, err := io.WriteString(w, `<template shadowrootmode="open">`); err != nil {
			return err
		}
		if err := n.renderChildren(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</template>`)
		return err
	}

	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(n.tag)
	for _, a := range n.attrs {
		sb.WriteString(" ")
		sb.WriteString(a.Name)
		if a.Value != "" {
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(a.Value))
			sb.WriteString(`"`)
		}
	}
	sb.WriteString(">")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	if voidElements[n.tag] {
		return nil
	}
	if n.shadow != nil {
		if err := n.shadow.render(w); err != nil {
			return err
		}
	}
	if err := n.renderChildren(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</"+n.tag+">")
	return err
}

func (n *Node) renderChildren(w io.Writer) error {
	for _, c := range n.children {
		if err := c.render(w); err != nil {
			return err
		}
	}
	return nil
}
