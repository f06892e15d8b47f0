package vdom

import (
	"golang.org/x/net/html"

	"github.com/tnt-dev/tnt/pkg/eval"
)

// ChildKind discriminates what a VNode holds: child nodes or text.
type ChildKind uint8

const (
	ChildNodes ChildKind = iota // Children is authoritative
	ChildText                   // Text is authoritative
)

// String returns the string representation of the ChildKind.
func (k ChildKind) String() string {
	switch k {
	case ChildNodes:
		return "Nodes"
	case ChildText:
		return "Text"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes, bindings and handlers, in order
	Kind     ChildKind // Which of Children or Text applies
	Children []*VNode  // Child nodes when Kind is ChildNodes
	Text     string    // Text content when Kind is ChildText

	// El is the live element this node is mounted as. Set by Mount and
	// carried forward by Patch.
	El *html.Node

	// Source is the template element the node was built from, if any.
	Source *html.Node

	// Env is the scope bindings and handlers on this node evaluate in.
	Env *eval.Env

	// ChainMatched is set on conditional nodes once some branch of their
	// chain, this one or an earlier sibling, has rendered.
	ChainMatched bool
}

// H creates an element node with child nodes. It has no side effects.
func H(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{
		Tag:      tag,
		Props:    props,
		Kind:     ChildNodes,
		Children: children,
	}
}

// HText creates an element node whose content is text.
func HText(tag string, props Props, text string) *VNode {
	return &VNode{
		Tag:   tag,
		Props: props,
		Kind:  ChildText,
		Text:  text,
	}
}

// SetText makes text the node's content, dropping any child nodes.
func (v *VNode) SetText(text string) {
	v.Kind = ChildText
	v.Text = text
	v.Children = nil
}

// AppendChild adds c as the last child. A node holding text switches to
// holding child nodes.
func (v *VNode) AppendChild(c *VNode) {
	if v.Kind == ChildText {
		v.Kind = ChildNodes
		v.Text = ""
	}
	v.Children = append(v.Children, c)
}

// LastChild returns the most recently appended child, or nil.
func (v *VNode) LastChild() *VNode {
	if v.Kind != ChildNodes || len(v.Children) == 0 {
		return nil
	}
	return v.Children[len(v.Children)-1]
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil {
		return false
	}
	for _, a := range v.Props {
		if IsEventHandler(a.Key) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the tree without live element bindings.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	c := &VNode{
		Tag:          v.Tag,
		Props:        v.Props.Clone(),
		Kind:         v.Kind,
		Text:         v.Text,
		Source:       v.Source,
		Env:          v.Env,
		ChainMatched: v.ChainMatched,
	}
	if len(v.Children) > 0 {
		c.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Walk calls fn for v and every descendant, parents first.
func (v *VNode) Walk(fn func(*VNode)) {
	if v == nil {
		return
	}
	fn(v)
	for _, c := range v.Children {
		c.Walk(fn)
	}
}
