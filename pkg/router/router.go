package router

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/reactive"
)

// Display values written to route elements.
const (
	DisplayShown  = "block"
	DisplayHidden = "none"
)

// Attributes read by Discover.
const (
	RouteAttr = "data-route"
	MainAttr  = "data-route-main"
)

// Route pairs a hash path with the element shown for it.
type Route struct {
	Path string
	El   *html.Node
}

// Router shows the element of the route matching the current hash and hides
// every other route element. It is not safe for concurrent use.
type Router struct {
	doc     *dom.Document
	routes  []Route
	main    string
	hasMain bool
	hash    *reactive.Ref[string]
	logger  *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHash sets the initial hash.
func WithHash(hash string) Option {
	return func(r *Router) {
		r.hash.Set(Normalize(hash))
	}
}

// New creates a router over doc. The hash ref is owned by effects so that
// templates can depend on the current route.
func New(doc *dom.Document, effects *reactive.Registry, opts ...Option) *Router {
	r := &Router{
		doc:    doc,
		hash:   reactive.NewRef(effects, ""),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalize strips the leading "#" and surrounding slashes from a hash.
func Normalize(hash string) string {
	hash = strings.TrimPrefix(strings.TrimSpace(hash), "#")
	return strings.Trim(hash, "/")
}

// Use registers el as the element for path and re-applies the current hash.
func (r *Router) Use(path string, el *html.Node) {
	if el == nil {
		r.logger.Warn("router: route without an element", "path", path)
		return
	}
	r.routes = append(r.routes, Route{Path: Normalize(path), El: el})
	r.apply()
}

// UseMain sets the route shown when the hash is empty.
func (r *Router) UseMain(path string) {
	r.main = Normalize(path)
	r.hasMain = true
	r.apply()
}

// Discover registers every element under root carrying RouteAttr, in
// document order. The first element that also carries MainAttr becomes the
// main route. Routes inside an excluded subtree, such as a mount container
// whose content is re-rendered, are skipped with a warning. It returns the
// number of routes registered.
func (r *Router) Discover(root *html.Node, exclude ...*html.Node) int {
	skip := make(map[*html.Node]bool, len(exclude))
	for _, n := range exclude {
		if n != nil {
			skip[n] = true
		}
	}

	var found []Route
	main, hasMain := "", false
	var walk func(n *html.Node, excluded bool)
	walk = func(n *html.Node, excluded bool) {
		excluded = excluded || skip[n]
		if dom.IsElement(n) {
			if path, ok := dom.Attribute(n, RouteAttr); ok {
				if excluded {
					r.logger.Warn("router: route inside a re-rendered container is ignored",
						"path", path, "node", dom.Path(n))
				} else {
					found = append(found, Route{Path: Normalize(path), El: n})
					if _, ok := dom.Attribute(n, MainAttr); ok && !hasMain {
						main, hasMain = Normalize(path), true
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, excluded)
		}
	}
	if root != nil {
		walk(root, false)
	}
	r.routes = append(r.routes, found...)
	if hasMain {
		r.main, r.hasMain = main, true
	}
	r.apply()
	return len(found)
}

// Change navigates to hash.
func (r *Router) Change(hash string) {
	r.hash.Set(Normalize(hash))
	r.apply()
}

// Toggle navigates to path. It is the programmatic form of following a
// "#path" link.
func (r *Router) Toggle(path string) {
	r.Change(path)
}

// Hash returns the reactive current hash, without the leading "#".
func (r *Router) Hash() *reactive.Ref[string] {
	return r.hash
}

// Current returns the path of the route that should be shown: the hash, or
// the main route when the hash is empty.
func (r *Router) Current() string {
	if h := r.hash.Peek(); h != "" {
		return h
	}
	return r.main
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// apply writes the display property of every route element. Nothing is
// touched until a main route is set.
func (r *Router) apply() {
	if !r.hasMain {
		return
	}
	target := r.Current()
	shown := false
	for _, route := range r.routes {
		display := DisplayHidden
		if !shown && route.Path == target {
			display = DisplayShown
			shown = true
		}
		r.doc.SetStyleProperty(route.El, "display", display)
	}
	if !shown && len(r.routes) > 0 {
		r.logger.Debug("router: no route for hash", "hash", target)
	}
}
