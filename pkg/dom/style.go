package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// SetStyleProperty sets one declaration in el's style attribute, keeping the
// others in place.
func (d *Document) SetStyleProperty(el *html.Node, prop, value string) {
	style, _ := Attribute(el, "style")
	decls := parseStyle(style)
	found := false
	for i := range decls {
		if decls[i][0] == prop {
			decls[i][1] = value
			found = true
		}
	}
	if !found {
		decls = append(decls, [2]string{prop, value})
	}
	d.SetAttribute(el, "style", formatStyle(decls))
}

// StyleProperty returns the value of one declaration in el's style attribute.
func StyleProperty(el *html.Node, prop string) string {
	style, _ := Attribute(el, "style")
	for _, decl := range parseStyle(style) {
		if decl[0] == prop {
			return decl[1]
		}
	}
	return ""
}

func parseStyle(style string) [][2]string {
	var out [][2]string
	for _, part := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		out = append(out, [2]string{name, strings.TrimSpace(value)})
	}
	return out
}

func formatStyle(decls [][2]string) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1]
	}
	return strings.Join(parts, "; ")
}
