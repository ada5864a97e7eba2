package dom

// Document is the root of a connected tree.
type Document struct {
	node *Node
	html *Node
	head *Node
	body *Node
}

// NewDocument creates a document with <html>, <head> and <body>.
func NewDocument() *Document {
	d := &Document{
		node: &Node{typ: DocumentNode},
		html: NewElement("html"),
		head: NewElement("head"),
		body: NewElement("body"),
	}
	d.html.Append(d.head, d.body)
	d.node.Append(d.html)
	return d
}

// Node returns the document node.
func (d *Document) Node() *Node {
	return d.node
}

// Head returns the <head> element.
func (d *Document) Head() *Node {
	return d.head
}

// Body returns the <body> element.
func (d *Document) Body() *Node {
	return d.body
}

// QuerySelector searches the whole document.
func (d *Document) QuerySelector(selector string) *Node {
	return d.node.QuerySelector(selector)
}

// QuerySelectorAll searches the whole document.
func (d *Document) QuerySelectorAll(selector string) []*Node {
	return d.node.QuerySelectorAll(selector)
}
