package directive

import (
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// Attribute binds every ":name" prop. The literal prop is replaced by
// "name", which an effect keeps equal to the evaluated expression.
type Attribute struct{}

func (Attribute) Name() string { return "attribute" }

func (Attribute) Matches(v *vdom.VNode) bool {
	for _, a := range v.Props {
		if vdom.IsBinding(a.Key) {
			return true
		}
	}
	return false
}

func (Attribute) Render(ctx *Context, v *vdom.VNode) (Result, error) {
	log := ctx.logger()

	var bound []vdom.Attr
	handlers := false
	for _, a := range v.Props {
		switch {
		case vdom.IsBinding(a.Key):
			bound = append(bound, a)
		case vdom.IsEventHandler(a.Key):
			handlers = true
		}
	}

	for _, a := range bound {
		name := a.Key[1:]
		if vdom.IsEventHandler(name) {
			log.Warn("directive: reactive binding on an event attribute",
				"key", a.Key, "path", nodePath(v))
		}
		rename(&v.Props, a.Key, name)
		expr := a.Value
		env := ctx.Env
		ctx.Effects.Effect(func() {
			s := eval.String(ctx.Eval.Evaluate(expr, env))
			v.Props.Set(name, s)
			ctx.setAttr(v, name, s)
		})
	}

	if handlers && len(bound) > 0 {
		log.Warn("directive: reactive bindings and event handlers on one node",
			"tag", v.Tag, "path", nodePath(v))
	}
	return Result{}, nil
}

// rename gives the prop at key the new name, keeping its position. A prop
// already named name wins the position and the bound one is dropped.
func rename(p *vdom.Props, key, name string) {
	if p.Has(name) {
		p.Delete(key)
		return
	}
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Key = name
			(*p)[i].Value = ""
			return
		}
	}
}
