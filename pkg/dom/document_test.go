package dom

import (
	"strings"
	"testing"
)

func TestParseAndFind(t *testing.T) {
	doc := MustParseString(`<div id="app"><p class="x">hi</p><span>there</span></div>`)

	app := doc.ElementByID("app")
	if app == nil {
		t.Fatal("ElementByID(app) = nil")
	}
	kids := ElementChildren(app)
	if len(kids) != 2 {
		t.Fatalf("ElementChildren = %d, want 2", len(kids))
	}
	if kids[0].Data != "p" || kids[1].Data != "span" {
		t.Errorf("children = %s, %s", kids[0].Data, kids[1].Data)
	}
	if FirstElementChild(app) != kids[0] {
		t.Error("FirstElementChild mismatch")
	}
	if got := TextContent(app); got != "hithere" {
		t.Errorf("TextContent = %q", got)
	}
	if doc.Body() == nil {
		t.Error("Body() = nil")
	}
	if got := Path(kids[0]); got != "html>body>div#app>p" {
		t.Errorf("Path = %q", got)
	}
}

func TestAttributeMutations(t *testing.T) {
	doc := MustParseString(`<div id="app"></div>`)
	app := doc.ElementByID("app")

	var got []Mutation
	stop := doc.Observe(func(m Mutation) { got = append(got, m) })

	doc.SetAttribute(app, "class", "a")
	doc.SetAttribute(app, "class", "a") // unchanged, no mutation
	doc.SetAttribute(app, "class", "b")
	doc.RemoveAttribute(app, "class")
	doc.RemoveAttribute(app, "missing")

	if len(got) != 3 {
		t.Fatalf("mutations = %d, want 3", len(got))
	}
	want := []MutationKind{MutationSetAttr, MutationSetAttr, MutationRemoveAttr}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("mutation %d = %v, want %v", i, got[i].Kind, k)
		}
	}
	if _, ok := Attribute(app, "class"); ok {
		t.Error("class should be removed")
	}

	stop()
	doc.SetAttribute(app, "title", "x")
	if len(got) != 3 {
		t.Error("observer should be removed")
	}
}

func TestTextAndChildren(t *testing.T) {
	doc := MustParseString(`<div id="app"><b>old</b></div>`)
	app := doc.ElementByID("app")

	doc.SetTextContent(app, "new")
	if got := InnerHTML(app); got != "new" {
		t.Errorf("InnerHTML = %q, want new", got)
	}

	li := doc.CreateElement("LI")
	if li.Data != "li" {
		t.Errorf("CreateElement should lowercase, got %q", li.Data)
	}
	doc.SetTextContent(app, "")
	doc.AppendChild(app, li)
	first := doc.CreateElement("em")
	doc.InsertBefore(app, first, li)
	if got := InnerHTML(app); got != "<em></em><li></li>" {
		t.Errorf("InnerHTML = %q", got)
	}

	repl := doc.CreateElement("strong")
	doc.ReplaceChild(app, repl, first)
	if got := InnerHTML(app); got != "<strong></strong><li></li>" {
		t.Errorf("after replace InnerHTML = %q", got)
	}

	doc.RemoveChild(app, li)
	doc.RemoveChild(app, li) // not a child anymore
	if got := InnerHTML(app); got != "<strong></strong>" {
		t.Errorf("after remove InnerHTML = %q", got)
	}
}

func TestClone(t *testing.T) {
	doc := MustParseString(`<ul id="l"><li a="1">x<b>y</b></li></ul>`)
	li := FirstElementChild(doc.ElementByID("l"))

	c := Clone(li)
	if c.Parent != nil {
		t.Error("clone should be detached")
	}
	if OuterHTML(c) != OuterHTML(li) {
		t.Errorf("clone = %q, want %q", OuterHTML(c), OuterHTML(li))
	}
	c.Attr[0].Val = "2"
	if v, _ := Attribute(li, "a"); v != "1" {
		t.Error("clone shares attribute storage with original")
	}
}

func TestDispatchBubbles(t *testing.T) {
	doc := MustParseString(`<div id="outer"><button id="btn">go</button></div>`)
	outer := doc.ElementByID("outer")
	btn := doc.ElementByID("btn")

	var order []string
	doc.SetHandler(outer, "click", func(ev *Event) {
		order = append(order, "outer")
		if ev.Target != btn {
			t.Error("Target should be the button")
		}
	})
	doc.SetHandler(btn, "Click", func(ev *Event) {
		order = append(order, "btn:"+ev.Value)
	})

	if n := doc.Dispatch(btn, "click", "v"); n != 2 {
		t.Errorf("Dispatch ran %d handlers, want 2", n)
	}
	if strings.Join(order, ",") != "btn:v,outer" {
		t.Errorf("order = %v", order)
	}

	doc.SetHandler(btn, "click", func(ev *Event) { ev.StopPropagation() })
	if n := doc.Dispatch(btn, "click", ""); n != 1 {
		t.Errorf("StopPropagation: ran %d handlers, want 1", n)
	}

	doc.SetHandler(btn, "click", nil)
	if doc.HasHandler(btn, "click") {
		t.Error("nil handler should remove it")
	}
}

func TestHydrationIDs(t *testing.T) {
	doc := MustParseString(`<div><button id="a"></button><button id="b"></button></div>`)
	doc.EnableHydrationIDs()
	a, b := doc.ElementByID("a"), doc.ElementByID("b")

	doc.SetHandler(a, "click", func(*Event) {})
	doc.SetHandler(a, "input", func(*Event) {})
	doc.SetHandler(b, "click", func(*Event) {})

	if v, _ := Attribute(a, HIDAttr); v != "h1" {
		t.Errorf("a hid = %q, want h1", v)
	}
	if v, _ := Attribute(b, HIDAttr); v != "h2" {
		t.Errorf("b hid = %q, want h2", v)
	}
	if doc.ElementByHID("h2") != b {
		t.Error("ElementByHID(h2) should resolve to b")
	}

	doc.RemoveChild(b.Parent, b)
	if doc.ElementByHID("h2") != nil {
		t.Error("removed element should be forgotten")
	}
}

func TestStyleProperty(t *testing.T) {
	doc := MustParseString(`<div id="x" style="color: red; display:block"></div>`)
	x := doc.ElementByID("x")

	doc.SetStyleProperty(x, "display", "none")
	if got := StyleProperty(x, "display"); got != "none" {
		t.Errorf("display = %q", got)
	}
	if got := StyleProperty(x, "color"); got != "red" {
		t.Errorf("color = %q", got)
	}
	doc.SetStyleProperty(x, "margin", "0")
	if v, _ := Attribute(x, "style"); v != "color: red; display: none; margin: 0" {
		t.Errorf("style = %q", v)
	}
}

func TestHIDGenerator(t *testing.T) {
	gen := NewHIDGenerator()
	gen.Next()
	if gen.Next() != "h2" {
		t.Error("second id should be h2")
	}
	if gen.Current() != 2 {
		t.Errorf("Current() = %d", gen.Current())
	}
	gen.Reset()
	if gen.Next() != "h1" {
		t.Error("after reset Next() should be h1")
	}
}

func TestMutationKindString(t *testing.T) {
	if MutationReplaceNode.String() != "ReplaceNode" {
		t.Error("ReplaceNode string")
	}
	if MutationKind(0xFF).String() != "Unknown" {
		t.Error("unknown kind string")
	}
}
