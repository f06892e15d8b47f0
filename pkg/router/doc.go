// Package router switches between sections of a page by URL hash.
//
// Each route is an element registered under a path. When the hash changes,
// the element of the matching route gets display:block and every other route
// element gets display:none. An empty hash selects the main route:
//
//	r := router.New(doc, app.Registry())
//	r.Use("home", doc.ElementByID("home"))
//	r.Use("about", doc.ElementByID("about"))
//	r.UseMain("home")
//	r.Change("#about")
//
// Hash is a reactive ref, so a template bound to it re-renders on navigation.
package router
