package directive

import (
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// Variable renders <v data="expr"> as the text of expr.
type Variable struct{}

func (Variable) Name() string { return "variable" }

func (Variable) Matches(v *vdom.VNode) bool { return v.Tag == "v" }

func (Variable) Render(ctx *Context, v *vdom.VNode) (Result, error) {
	expr := v.Props.Value("data")
	env := ctx.Env
	ctx.Effects.Effect(func() {
		text := eval.String(ctx.Eval.Evaluate(expr, env))
		v.SetText(text)
		if v.El != nil && ctx.Doc != nil {
			ctx.Doc.SetTextContent(v.El, text)
		}
	})
	return Result{}, nil
}
