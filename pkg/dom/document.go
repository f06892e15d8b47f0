package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a live HTML tree with listener and observer bookkeeping.
// A Document is not safe for concurrent use; callers serialize access on a
// single run loop.
type Document struct {
	root *html.Node

	// handlers maps element -> event type -> handler.
	handlers map[*html.Node]map[string]Handler

	// observers are notified of every mutation.
	observers map[int]Observer
	nextObs   int

	// hydration
	hydrate bool
	hids    *HIDGenerator
	byHID   map[string]*html.Node
}

// New wraps an existing node tree in a Document.
func New(root *html.Node) *Document {
	return &Document{
		root:      root,
		handlers:  make(map[*html.Node]map[string]Handler),
		observers: make(map[int]Observer),
		hids:      NewHIDGenerator(),
		byHID:     make(map[string]*html.Node),
	}
}

// Parse parses a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// ParseString parses a complete HTML document from a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// MustParseString is ParseString that panics on error. Intended for tests
// and static templates.
func MustParseString(markup string) *Document {
	doc, err := ParseString(markup)
	if err != nil {
		panic("dom: " + err.Error())
	}
	return doc
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	return find(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
}

// ElementByID returns the first element whose id attribute equals id.
func (d *Document) ElementByID(id string) *html.Node {
	return find(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := Attribute(n, "id")
		return ok && v == id
	})
}

// Observe registers an observer and returns a function that removes it.
func (d *Document) Observe(o Observer) func() {
	id := d.nextObs
	d.nextObs++
	d.observers[id] = o
	return func() { delete(d.observers, id) }
}

func (d *Document) notify(m Mutation) {
	for _, o := range d.observers {
		o(m)
	}
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// SetAttribute sets or replaces an attribute value.
func (d *Document) SetAttribute(el *html.Node, key, value string) {
	for i := range el.Attr {
		if el.Attr[i].Namespace == "" && el.Attr[i].Key == key {
			if el.Attr[i].Val == value {
				return
			}
			el.Attr[i].Val = value
			d.notify(Mutation{Kind: MutationSetAttr, Target: el, Key: key, Value: value})
			return
		}
	}
	el.Attr = append(el.Attr, html.Attribute{Key: key, Val: value})
	d.notify(Mutation{Kind: MutationSetAttr, Target: el, Key: key, Value: value})
}

// RemoveAttribute removes an attribute if present.
func (d *Document) RemoveAttribute(el *html.Node, key string) {
	for i := range el.Attr {
		if el.Attr[i].Namespace == "" && el.Attr[i].Key == key {
			el.Attr = append(el.Attr[:i], el.Attr[i+1:]...)
			d.notify(Mutation{Kind: MutationRemoveAttr, Target: el, Key: key})
			return
		}
	}
}

// SetTextContent replaces all children of el with a single text node.
// An empty string leaves el without children.
func (d *Document) SetTextContent(el *html.Node, text string) {
	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		d.forget(c)
		el.RemoveChild(c)
		c = next
	}
	if text != "" {
		el.AppendChild(d.CreateText(text))
	}
	d.notify(Mutation{Kind: MutationSetText, Target: el, Value: text})
}

// AppendChild appends child to parent, detaching it from any previous parent.
func (d *Document) AppendChild(parent, child *html.Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
	d.notify(Mutation{Kind: MutationInsertNode, Target: parent, Node: child})
}

// InsertBefore inserts child before ref. A nil ref appends.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.InsertBefore(child, ref)
	d.notify(Mutation{Kind: MutationInsertNode, Target: parent, Node: child})
}

// RemoveChild removes child from parent. It is a no-op when child is not a
// child of parent.
func (d *Document) RemoveChild(parent, child *html.Node) {
	if child == nil || child.Parent != parent {
		return
	}
	d.forget(child)
	parent.RemoveChild(child)
	d.notify(Mutation{Kind: MutationRemoveNode, Target: parent, Node: child})
}

// ReplaceChild puts next where old was.
func (d *Document) ReplaceChild(parent, next, old *html.Node) {
	if old == nil || old.Parent != parent {
		d.AppendChild(parent, next)
		return
	}
	if next.Parent != nil {
		next.Parent.RemoveChild(next)
	}
	parent.InsertBefore(next, old)
	d.forget(old)
	parent.RemoveChild(old)
	d.notify(Mutation{Kind: MutationReplaceNode, Target: parent, Node: next})
}

// Detach removes n from its parent without reporting a mutation. It is used
// for nodes that leave the rendered tree before anything observed them, such
// as a template lifted out of its container.
func (d *Document) Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// forget drops listener bookkeeping for a subtree that leaves the document.
func (d *Document) forget(n *html.Node) {
	walk(n, func(c *html.Node) {
		if c.Type != html.ElementNode {
			return
		}
		delete(d.handlers, c)
		if hid, ok := Attribute(c, HIDAttr); ok && d.byHID[hid] == c {
			delete(d.byHID, hid)
		}
	})
}
