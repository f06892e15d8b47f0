package vdom

import (
	"log/slog"

	"golang.org/x/net/html"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/reactive"
)

// Engine mounts VNode trees into a Document and reconciles them.
// It is not safe for concurrent use.
type Engine struct {
	Doc     *dom.Document
	Effects *reactive.Registry
	Eval    *eval.Evaluator
	Logger  *slog.Logger

	// bindings holds the live attribute effect per element and attribute.
	bindings map[*html.Node]map[string]*reactive.Effect
}

// NewEngine creates an engine. A nil logger uses slog.Default.
func NewEngine(doc *dom.Document, effects *reactive.Registry, ev *eval.Evaluator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Doc: doc, Effects: effects, Eval: ev, Logger: logger}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Mount creates the live subtree for v, appends it to container and records
// each created element on its VNode.
func (e *Engine) Mount(v *VNode, container *html.Node) error {
	if v == nil {
		return nil
	}
	el := e.build(v)
	e.Doc.AppendChild(container, el)
	return nil
}

// build creates the detached element tree for v. Static attributes and
// text are written directly; bindings and handlers go through the document
// so they stay live after the tree is inserted.
func (e *Engine) build(v *VNode) *html.Node {
	el := e.Doc.CreateElement(v.Tag)
	v.El = el

	for _, a := range v.Props {
		switch {
		case IsBinding(a.Key):
			e.bindAttr(v, a.Key[1:], a.Value)
		case IsEventHandler(a.Key):
			e.bindHandler(v, a.Key, a.Value)
		default:
			el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Value})
		}
	}

	if v.Kind == ChildText {
		if v.Text != "" {
			el.AppendChild(e.Doc.CreateText(v.Text))
		}
		return el
	}
	for _, c := range v.Children {
		el.AppendChild(e.build(c))
	}
	return el
}

// bindAttr installs an effect that keeps attribute name on v's element equal
// to the evaluated expression.
func (e *Engine) bindAttr(v *VNode, name, expr string) {
	el := v.El
	env := v.Env
	if e.bindings == nil {
		e.bindings = make(map[*html.Node]map[string]*reactive.Effect)
	}
	byName := e.bindings[el]
	if byName == nil {
		byName = make(map[string]*reactive.Effect)
		e.bindings[el] = byName
	}
	byName[name].Dispose()
	byName[name] = e.Effects.Effect(func() {
		val := e.Eval.Evaluate(expr, env)
		e.Doc.SetAttribute(el, name, eval.String(val))
	})
}

// release disposes the attribute effects of a subtree leaving the document.
func (e *Engine) release(v *VNode) {
	v.Walk(func(n *VNode) {
		if n.El == nil {
			return
		}
		for _, eff := range e.bindings[n.El] {
			eff.Dispose()
		}
		delete(e.bindings, n.El)
	})
}

func (e *Engine) unbindAttr(el *html.Node, name string) {
	if eff := e.bindings[el][name]; eff != nil {
		eff.Dispose()
		delete(e.bindings[el], name)
	}
}

// bindHandler registers a listener that evaluates expr when the event fires.
// A callable result is invoked with the event; any other result is the
// side effect of evaluating the expression itself.
func (e *Engine) bindHandler(v *VNode, key, expr string) {
	typ := EventType(key)
	scope := v.Env
	if scope == nil {
		scope = eval.NewEnv()
	}
	log := e.logger()
	e.Doc.SetHandler(v.El, typ, func(ev *dom.Event) {
		event := map[string]any{"type": ev.Type, "value": ev.Value}
		env := scope.Child().Set("event", event)
		res, err := e.Eval.Eval(expr, env)
		if err != nil {
			log.Warn("vdom: handler failed", "code", "E001", "event", typ, "expr", expr, "error", err)
			return
		}
		if !eval.IsFunc(res) {
			return
		}
		if _, err := eval.Call(res, event); err != nil {
			log.Warn("vdom: handler failed", "event", typ, "expr", expr, "error", err)
		}
	})
}

// Patch reconciles the mounted tree old against next, mutating the live DOM
// in place. On success next is the mounted tree.
func (e *Engine) Patch(old, next *VNode) error {
	if old == nil || old.El == nil {
		return tnterrors.New("E003")
	}
	if old.Tag != next.Tag {
		return tnterrors.New("E002").
			WithNode(dom.Path(old.El)).
			WithDetailf("root tag changed from <%s> to <%s>", old.Tag, next.Tag)
	}
	e.patch(old, next)
	return nil
}

func (e *Engine) patch(old, next *VNode) {
	el := old.El
	next.El = el
	e.patchProps(old, next)

	switch {
	case next.Kind == ChildText && old.Kind == ChildText:
		if next.Text != old.Text {
			e.Doc.SetTextContent(el, next.Text)
		}
	case next.Kind == ChildText:
		for _, c := range old.Children {
			e.release(c)
		}
		e.Doc.SetTextContent(el, next.Text)
	case old.Kind == ChildText:
		e.Doc.SetTextContent(el, "")
		for _, c := range next.Children {
			e.Doc.AppendChild(el, e.build(c))
		}
	default:
		e.patchChildren(el, old.Children, next.Children)
	}
}

// patchChildren reconciles by position: the shared prefix is patched
// pairwise, then the tail is mounted or removed.
func (e *Engine) patchChildren(el *html.Node, oldKids, newKids []*VNode) {
	common := min(len(oldKids), len(newKids))
	for i := 0; i < common; i++ {
		oc, nc := oldKids[i], newKids[i]
		switch {
		case oc.El == nil:
			e.Doc.AppendChild(el, e.build(nc))
		case oc.Tag != nc.Tag:
			e.release(oc)
			e.Doc.ReplaceChild(el, e.build(nc), oc.El)
		default:
			e.patch(oc, nc)
		}
	}
	for _, nc := range newKids[common:] {
		e.Doc.AppendChild(el, e.build(nc))
	}
	for _, oc := range oldKids[common:] {
		if oc.El != nil {
			e.release(oc)
			e.Doc.RemoveChild(el, oc.El)
		}
	}
}

func (e *Engine) patchProps(old, next *VNode) {
	el := next.El
	for _, a := range next.Props {
		prev, had := old.Props.Get(a.Key)
		switch {
		case IsEventHandler(a.Key):
			// Rebind so the handler sees the new tree's scope.
			e.bindHandler(next, a.Key, a.Value)
		case IsBinding(a.Key):
			// The previous effect may have been owned by an earlier render
			// pass, so bindings are always re-established.
			e.bindAttr(next, a.Key[1:], a.Value)
		case !had || prev != a.Value:
			e.Doc.SetAttribute(el, a.Key, a.Value)
		}
	}
	for _, a := range old.Props {
		if next.Props.Has(a.Key) {
			continue
		}
		switch {
		case IsEventHandler(a.Key):
			e.Doc.SetHandler(el, EventType(a.Key), nil)
		case IsBinding(a.Key):
			// the bound attribute is left with its last value
			e.unbindAttr(el, a.Key[1:])
		default:
			e.Doc.RemoveAttribute(el, a.Key)
		}
	}
}
