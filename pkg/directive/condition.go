package directive

import (
	"strconv"

	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// Conditional tag names.
const (
	TagIf   = "t-if"
	TagElif = "t-elif"
	TagElse = "t-else"
)

// RenderedProp records on a conditional node whether its branch rendered.
const RenderedProp = "rendered"

// Condition renders the t-if / t-elif / t-else chain. Exactly one branch of
// a chain renders: t-elif and t-else look at the immediately preceding
// sibling and only render when no earlier branch did.
type Condition struct{}

func (Condition) Name() string { return "condition" }

func (Condition) Matches(v *vdom.VNode) bool {
	switch v.Tag {
	case TagIf, TagElif, TagElse:
		return true
	}
	return false
}

func (c Condition) Render(ctx *Context, v *vdom.VNode) (Result, error) {
	if v.Tag == TagIf {
		return Result{Skip: !c.watch(ctx, v)}, nil
	}

	prev := ctx.Parent.LastChild()
	if prev == nil || (prev.Tag != TagIf && prev.Tag != TagElif) {
		ctx.logger().Debug("directive: conditional without a preceding t-if",
			"tag", v.Tag, "path", nodePath(v))
		return Result{Skip: true}, nil
	}

	if prev.ChainMatched {
		v.ChainMatched = true
		c.record(ctx, v, false)
		return Result{Skip: true}, nil
	}
	if v.Tag == TagElse {
		v.ChainMatched = true
		c.record(ctx, v, true)
		return Result{}, nil
	}
	return Result{Skip: !c.watch(ctx, v)}, nil
}

// watch installs the effect evaluating the node's cond and returns its
// first result.
func (c Condition) watch(ctx *Context, v *vdom.VNode) bool {
	expr := v.Props.Value("cond")
	env := ctx.Env
	var shown bool
	ctx.Effects.Effect(func() {
		shown = eval.Truthy(ctx.Eval.Evaluate(expr, env))
		v.ChainMatched = shown
		c.record(ctx, v, shown)
	})
	return shown
}

func (Condition) record(ctx *Context, v *vdom.VNode, shown bool) {
	s := strconv.FormatBool(shown)
	v.Props.Set(RenderedProp, s)
	ctx.setAttr(v, RenderedProp, s)
}
