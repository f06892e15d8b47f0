package directive

import (
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// TagFor is the iteration tag.
const TagFor = "t-for"

// Loop renders <t-for data="name in expr">. The first element child is the
// item template; one copy is built per item with name bound to the item.
// The collection is evaluated once per render pass, without an effect of
// its own.
type Loop struct{}

func (Loop) Name() string { return "loop" }

func (Loop) Matches(v *vdom.VNode) bool { return v.Tag == TagFor }

func (Loop) Render(ctx *Context, v *vdom.VNode) (Result, error) {
	name, expr, err := ParseLoop(v.Props.Value("data"))
	if err != nil {
		return Result{}, tnterrors.FromError(err, "E004").WithNode(nodePath(v))
	}

	coll, evalErr := ctx.Eval.Eval(expr, ctx.Env)
	if evalErr != nil {
		return Result{}, tnterrors.New("E005").
			WithNode(nodePath(v)).
			WithDetailf("%q could not be evaluated", expr).
			Wrap(evalErr)
	}
	items, ok := eval.Iterate(coll)
	if !ok {
		return Result{}, tnterrors.New("E005").
			WithNode(nodePath(v)).
			WithDetailf("%q evaluated to %T, which is not a sequence", expr, coll)
	}

	v.Kind = vdom.ChildNodes
	v.Children = nil
	tmpl := dom.FirstElementChild(v.Source)
	if tmpl == nil || ctx.Builder == nil {
		return Result{Skip: true}, nil
	}

	for _, item := range items {
		env := ctx.Env.Child().Set(name, item)
		if _, err := ctx.Builder.BuildChild(v, dom.Clone(tmpl), env); err != nil {
			return Result{}, err
		}
	}
	return Result{Skip: true}, nil
}

// ParseLoop splits "name in expr". The name must be a valid identifier.
func ParseLoop(data string) (name, expr string, err error) {
	before, after, found := strings.Cut(data, " in ")
	name = strings.TrimSpace(before)
	expr = strings.TrimSpace(after)
	if !found || expr == "" || !hclsyntax.ValidIdentifier(name) {
		return "", "", tnterrors.New("E004").
			WithDetailf("got data=%q", data).
			WithSuggestion(`Write the binding as "item in collection".`)
	}
	return name, expr, nil
}
