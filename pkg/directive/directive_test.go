package directive_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/net/html"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/directive"
	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/reactive"
	"github.com/tnt-dev/tnt/pkg/template"
	"github.com/tnt-dev/tnt/pkg/vdom"
)

// fixture holds a detached template and the pieces needed to render it.
type fixture struct {
	doc       *dom.Document
	container *html.Node
	tmpl      *html.Node
	effects   *reactive.Registry
	builder   *template.Builder
	engine    *vdom.Engine
	logs      *bytes.Buffer
}

func newFixture(t *testing.T, markup string) *fixture {
	t.Helper()
	doc := dom.MustParseString(`<div id="app">` + markup + `</div>`)
	container := doc.ElementByID("app")
	tmpl := dom.FirstElementChild(container)
	doc.Detach(tmpl)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	effects := reactive.NewRegistry(reactive.WithLogger(logger))
	ev := eval.New(eval.WithLogger(logger))
	return &fixture{
		doc:       doc,
		container: container,
		tmpl:      tmpl,
		effects:   effects,
		builder:   template.New(effects, ev, doc, template.WithLogger(logger)),
		engine:    vdom.NewEngine(doc, effects, ev, logger),
		logs:      logs,
	}
}

// drive installs a root effect that rebuilds and reconciles the tree on
// every change, the way the application driver does.
func (f *fixture) drive(t *testing.T, env *eval.Env) (current func() *vdom.VNode) {
	t.Helper()
	var prev *vdom.VNode
	f.effects.Effect(func() {
		next, err := f.builder.BuildRoot(f.tmpl, env)
		if err != nil {
			t.Errorf("build: %v", err)
			return
		}
		if prev == nil {
			err = f.engine.Mount(next, f.container)
		} else {
			err = f.engine.Patch(prev, next)
		}
		if err != nil {
			t.Errorf("reconcile: %v", err)
			return
		}
		prev = next
	})
	return func() *vdom.VNode { return prev }
}

func (f *fixture) html() string {
	return dom.InnerHTML(f.container)
}

func TestVariableText(t *testing.T) {
	f := newFixture(t, `<div><v data="state.n * 2"></v></div>`)
	state := f.effects.Object(map[string]any{"n": 2})
	env := eval.NewEnv().Set("state", state)

	// Built and mounted outside any effect: the directive's own effect
	// keeps the mounted text current.
	root, err := f.builder.BuildRoot(f.tmpl, env)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.engine.Mount(root, f.container); err != nil {
		t.Fatal(err)
	}
	v := root.Children[0]
	if v.Kind != vdom.ChildText || v.Text != "4" {
		t.Fatalf("v text = %q, want 4", v.Text)
	}

	state.Set("n", 5)
	if got := dom.TextContent(v.El); got != "10" {
		t.Errorf("live text = %q, want 10", got)
	}
}

func TestVariableShowsErrorText(t *testing.T) {
	f := newFixture(t, `<div><v data="nope.x"></v></div>`)
	root, err := f.builder.BuildRoot(f.tmpl, eval.NewEnv())
	if err != nil {
		t.Fatalf("evaluation failures must not abort the build: %v", err)
	}
	if text := root.Children[0].Text; !strings.Contains(text, "Unknown variable") {
		t.Errorf("text = %q, want the error description", text)
	}
}

func TestConditionalChainExclusive(t *testing.T) {
	f := newFixture(t, `<div>`+
		`<t-if cond="state.a"><p>A</p></t-if>`+
		`<t-elif cond="state.b"><p>B</p></t-elif>`+
		`<t-else><p>C</p></t-else>`+
		`</div>`)
	state := f.effects.Object(map[string]any{"a": false, "b": true})
	current := f.drive(t, eval.NewEnv().Set("state", state))

	check := func(want string) {
		t.Helper()
		rendered := 0
		for _, c := range current().Children {
			if len(c.Children) > 0 {
				rendered++
				if c.Children[0].Text != want {
					t.Errorf("rendered branch %s shows %q, want %q", c.Tag, c.Children[0].Text, want)
				}
			}
		}
		if rendered != 1 {
			t.Errorf("%d branches rendered, want exactly 1", rendered)
		}
		live := f.html()
		for _, s := range []string{"A", "B", "C"} {
			has := strings.Contains(live, "<p>"+s+"</p>")
			if has != (s == want) {
				t.Errorf("live DOM %q: <p>%s</p> present = %v", live, s, has)
			}
		}
	}

	check("B")
	props := current().Children
	for i, want := range []string{"false", "true", "false"} {
		if got := props[i].Props.Value(directive.RenderedProp); got != want {
			t.Errorf("%s rendered = %q, want %q", props[i].Tag, got, want)
		}
	}

	state.Set("a", true)
	check("A")
	state.Set("a", false)
	state.Set("b", false)
	check("C")
	state.Set("b", true)
	check("B")
}

func TestConditionalWithoutPrecedingIf(t *testing.T) {
	f := newFixture(t, `<div><p>x</p><t-elif cond="true"><b>no</b></t-elif><t-else><i>no</i></t-else></div>`)
	root, err := f.builder.BuildRoot(f.tmpl, eval.NewEnv())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(root.Children[1].Children); n != 0 {
		t.Errorf("orphan t-elif rendered %d children", n)
	}
	if root.Children[1].Props.Has(directive.RenderedProp) {
		t.Error("orphan t-elif should not record a result")
	}
	// t-else follows a t-elif that never matched, so it renders.
	if n := len(root.Children[2].Children); n != 1 {
		t.Errorf("t-else rendered %d children, want 1", n)
	}
}

func TestLoopMaterializesItems(t *testing.T) {
	f := newFixture(t, `<div><t-for data="item in [1, 2, 3]"><p><v data="item * 10"></v></p></t-for></div>`)
	root, err := f.builder.BuildRoot(f.tmpl, eval.NewEnv())
	if err != nil {
		t.Fatal(err)
	}
	loop := root.Children[0]
	if len(loop.Children) != 3 {
		t.Fatalf("loop children = %d, want 3", len(loop.Children))
	}
	for i, child := range loop.Children {
		got, ok := child.Env.Lookup("item")
		if !ok || got != i+1 {
			t.Errorf("child %d item = %v, want %d", i, got, i+1)
		}
		if text := child.Children[0].Text; text != string(rune('0'+i+1))+"0" {
			t.Errorf("child %d text = %q", i, text)
		}
	}
	if tmpl := dom.FirstElementChild(f.tmpl); dom.FirstElementChild(tmpl) == nil {
		t.Error("template must not be consumed by the loop")
	}
}

func TestLoopFollowsCollectionLength(t *testing.T) {
	f := newFixture(t, `<ul><t-for data="x in state.items"><li><v data="x"></v></li></t-for></ul>`)
	state := f.effects.Object(map[string]any{"items": []any{"a", "b"}})
	current := f.drive(t, eval.NewEnv().Set("state", state))

	count := func() int { return strings.Count(f.html(), "<li>") }
	if count() != 2 {
		t.Fatalf("li count = %d, want 2; html %s", count(), f.html())
	}

	items := state.Value("items").(*reactive.List)
	items.Append("c")
	if count() != 3 || len(current().Children[0].Children) != 3 {
		t.Errorf("after append li count = %d, want 3", count())
	}
	items.RemoveAt(0)
	items.RemoveAt(0)
	if count() != 1 || !strings.Contains(f.html(), "<li><v data=\"x\">c</v></li>") {
		t.Errorf("after removals html = %s", f.html())
	}
}

func TestLoopErrors(t *testing.T) {
	tests := []struct {
		data string
		code string
	}{
		{"item of items", "E004"},
		{"in items", "E004"},
		{"1x in items", "E004"},
		{"x in 42", "E005"},
		{`x in "abc"`, "E005"},
		{"x in missing", "E005"},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			f := newFixture(t, `<div><t-for data='`+tt.data+`'><p></p></t-for></div>`)
			_, err := f.builder.BuildRoot(f.tmpl, eval.NewEnv().Set("items", []any{1}))
			if got := tnterrors.Code(err); got != tt.code {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseLoop(t *testing.T) {
	name, expr, err := directive.ParseLoop("  row in  state.rows ")
	if err != nil || name != "row" || expr != "state.rows" {
		t.Errorf("ParseLoop = %q, %q, %v", name, expr, err)
	}
}

func TestAttributeBindingRoundTrip(t *testing.T) {
	f := newFixture(t, `<div><p id="p" :class="state.color" title="t">x</p></div>`)
	state := f.effects.Object(map[string]any{"color": "red"})
	env := eval.NewEnv().Set("state", state)

	root, err := f.builder.BuildRoot(f.tmpl, env)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.engine.Mount(root, f.container); err != nil {
		t.Fatal(err)
	}
	p := root.Children[0]
	if got := p.Props.Keys(); strings.Join(got, ",") != "id,class,title" {
		t.Errorf("props = %v, want the binding renamed in place", got)
	}
	if _, ok := dom.Attribute(p.El, ":class"); ok {
		t.Error("literal :class attribute should be absent")
	}
	if got, _ := dom.Attribute(p.El, "class"); got != "red" {
		t.Errorf("class = %q, want red", got)
	}

	before := p.El
	state.Set("color", "green")
	if got, _ := dom.Attribute(p.El, "class"); got != "green" {
		t.Errorf("class = %q, want green", got)
	}
	if p.El != before {
		t.Error("binding update should not re-mount the element")
	}
	if _, ok := dom.Attribute(dom.FirstElementChild(f.tmpl), ":class"); !ok {
		t.Error("the template itself must keep its binding")
	}
}

func TestAttributeBindingUnderDriver(t *testing.T) {
	f := newFixture(t, `<div><p :data-n="state.n">x</p></div>`)
	state := f.effects.Object(map[string]any{"n": 1})
	current := f.drive(t, eval.NewEnv().Set("state", state))

	state.Set("n", 2)
	el := current().Children[0].El
	if got, _ := dom.Attribute(el, "data-n"); got != "2" {
		t.Errorf("data-n = %q, want 2", got)
	}
}

func TestAttributeWarnings(t *testing.T) {
	f := newFixture(t, `<div><button :title="1" onclick="f"></button><a :onclick="g"></a></div>`)
	if _, err := f.builder.BuildRoot(f.tmpl, eval.NewEnv()); err != nil {
		t.Fatal(err)
	}
	logs := f.logs.String()
	if !strings.Contains(logs, "reactive bindings and event handlers on one node") {
		t.Errorf("missing coexistence warning in logs:\n%s", logs)
	}
	if !strings.Contains(logs, "reactive binding on an event attribute") {
		t.Errorf("missing :on* warning in logs:\n%s", logs)
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := directive.Default()
	var names []string
	for _, r := range reg.Renderers() {
		names = append(names, r.Name())
	}
	if strings.Join(names, ",") != "variable,condition,loop,attribute" {
		t.Errorf("renderers = %v", names)
	}

	v := vdom.H("t-for", vdom.NewProps("data", "x in y", ":class", "c"))
	var matched []string
	for _, r := range reg.Match(v) {
		matched = append(matched, r.Name())
	}
	if strings.Join(matched, ",") != "loop,attribute" {
		t.Errorf("Match = %v", matched)
	}
}
