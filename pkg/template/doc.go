// Package template walks literal DOM markup and builds VNode trees from it.
//
// Each element child becomes a VNode. Matching directive renderers run
// against it in registry order; unless one of them asks to skip, the
// builder recurses into the element's own children with the renderers'
// bindings added to a child scope. An element that produced no child nodes
// and no text takes its first non-blank text node as content.
//
// The template is only read. Live elements are created later, when the
// tree is mounted.
package template
