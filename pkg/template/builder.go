package template

import (
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/tnt-dev/tnt/pkg/directive"
	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/reactive"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// Builder turns template elements into VNode trees.
type Builder struct {
	Registry *directive.Registry
	Effects  *reactive.Registry
	Eval     *eval.Evaluator
	Doc      *dom.Document
	Logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRegistry replaces the default directive renderers.
func WithRegistry(r *directive.Registry) Option {
	return func(b *Builder) {
		if r != nil {
			b.Registry = r
		}
	}
}

// WithLogger sets the logger handed to renderers.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.Logger = l
		}
	}
}

// New creates a Builder with the default renderers. doc may be nil when
// the built trees are never mounted.
func New(effects *reactive.Registry, ev *eval.Evaluator, doc *dom.Document, opts ...Option) *Builder {
	b := &Builder{
		Registry: directive.Default(),
		Effects:  effects,
		Eval:     ev,
		Doc:      doc,
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildRoot builds the tree for a template element. The root node takes the
// template's tag and attributes; directives apply to its descendants only.
func (b *Builder) BuildRoot(tmpl *html.Node, env *eval.Env) (*vdom.VNode, error) {
	root := FromElement(tmpl)
	root.Env = env
	if err := b.Build(root, tmpl, env); err != nil {
		return nil, err
	}
	return root, nil
}

// Build appends a VNode to parent for every element child of container,
// then applies the text fallback.
func (b *Builder) Build(parent *vdom.VNode, container *html.Node, env *eval.Env) error {
	index := 0
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if _, err := b.buildChild(parent, c, env, index); err != nil {
			return err
		}
		index++
	}

	if parent.Kind == vdom.ChildText || len(parent.Children) > 0 {
		return nil
	}
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			parent.SetText(c.Data)
			break
		}
	}
	return nil
}

// BuildChild processes one element: it builds the node, runs the matching
// renderers, recurses when allowed and appends the node to parent.
func (b *Builder) BuildChild(parent *vdom.VNode, el *html.Node, env *eval.Env) (*vdom.VNode, error) {
	return b.buildChild(parent, el, env, len(parent.Children))
}

func (b *Builder) buildChild(parent *vdom.VNode, el *html.Node, env *eval.Env, index int) (*vdom.VNode, error) {
	v := FromElement(el)
	v.Env = env

	ctx := &directive.Context{
		Parent:  parent,
		Index:   index,
		Env:     env,
		Effects: b.Effects,
		Eval:    b.Eval,
		Doc:     b.Doc,
		Builder: b,
		Logger:  b.Logger,
	}

	descend := true
	for _, r := range b.Registry.Match(v) {
		res, err := r.Render(ctx, v)
		if err != nil {
			return nil, err
		}
		if res.Skip {
			descend = false
		}
		if len(res.Bindings) > 0 {
			ctx.Env = extend(ctx.Env, res.Bindings)
		}
	}
	v.Env = ctx.Env

	if descend {
		if err := b.Build(v, el, ctx.Env); err != nil {
			return nil, err
		}
	}
	parent.AppendChild(v)
	return v, nil
}

// extend returns a child scope holding bindings, added in name order.
func extend(env *eval.Env, bindings map[string]any) *eval.Env {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	if env == nil {
		env = eval.NewEnv()
	}
	child := env.Child()
	for _, name := range names {
		child.Set(name, bindings[name])
	}
	return child
}

// FromElement builds a childless VNode from el's tag and attributes.
func FromElement(el *html.Node) *vdom.VNode {
	return &vdom.VNode{
		Tag:    strings.ToLower(el.Data),
		Props:  Attributes(el),
		Kind:   vdom.ChildNodes,
		Source: el,
	}
}

// Attributes returns el's attributes as props, in document order.
func Attributes(el *html.Node) vdom.Props {
	if len(el.Attr) == 0 {
		return nil
	}
	props := make(vdom.Props, 0, len(el.Attr))
	for _, a := range el.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		props.Set(key, a.Val)
	}
	return props
}
