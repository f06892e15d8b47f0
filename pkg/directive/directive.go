package directive

import (
	"log/slog"

	"golang.org/x/net/html"

	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/reactive"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// Builder processes one template element into a VNode appended to parent.
// The loop renderer uses it to materialize each iteration.
type Builder interface {
	BuildChild(parent *vdom.VNode, el *html.Node, env *eval.Env) (*vdom.VNode, error)
}

// Context is what a renderer sees while processing one node.
type Context struct {
	// Parent is the node being built; its Children hold the siblings
	// processed so far, in document order.
	Parent *vdom.VNode

	// Index is the node's position among the template's element children.
	Index int

	Env     *eval.Env
	Effects *reactive.Registry
	Eval    *eval.Evaluator
	Doc     *dom.Document
	Builder Builder
	Logger  *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Result is a renderer's verdict on one node.
type Result struct {
	// Skip stops the builder from descending into the element's children.
	Skip bool

	// Bindings are added to the scope the node's descendants evaluate in.
	Bindings map[string]any
}

// Renderer customizes how a template element becomes a VNode.
type Renderer interface {
	Name() string
	Matches(v *vdom.VNode) bool
	Render(ctx *Context, v *vdom.VNode) (Result, error)
}

// Registry is an ordered set of renderers.
type Registry struct {
	renderers []Renderer
}

// NewRegistry creates a registry trying renderers in the given order.
func NewRegistry(renderers ...Renderer) *Registry {
	return &Registry{renderers: renderers}
}

// Default returns the built-in renderers in priority order.
func Default() *Registry {
	return NewRegistry(Variable{}, Condition{}, Loop{}, Attribute{})
}

// Register appends r, giving it the lowest priority.
func (r *Registry) Register(rr Renderer) {
	r.renderers = append(r.renderers, rr)
}

// Renderers returns the renderers in priority order.
func (r *Registry) Renderers() []Renderer {
	out := make([]Renderer, len(r.renderers))
	copy(out, r.renderers)
	return out
}

// Match returns the renderers that apply to v, in priority order.
func (r *Registry) Match(v *vdom.VNode) []Renderer {
	var out []Renderer
	for _, rr := range r.renderers {
		if rr.Matches(v) {
			out = append(out, rr)
		}
	}
	return out
}

// setAttr updates the live element when the node is mounted.
func (c *Context) setAttr(v *vdom.VNode, key, value string) {
	if v.El != nil && c.Doc != nil {
		c.Doc.SetAttribute(v.El, key, value)
	}
}

func nodePath(v *vdom.VNode) string {
	if v.Source != nil {
		return dom.Path(v.Source)
	}
	return v.Tag
}
