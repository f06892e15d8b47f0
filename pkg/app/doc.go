// Package app drives a template: it owns the reactive registry and the
// expression environment, lifts the template out of its container, and keeps
// the container in sync through a single root effect.
//
// A minimal counter:
//
//	a := app.New()
//	a.Data("state", map[string]any{"count": 0})
//	err := a.Mount(doc, doc.ElementByID("app"))
//
// with the container holding
//
//	<div>
//	  <button onclick='set("state.count", state.count + 1)'>+</button>
//	  <v data="state.count"></v>
//	</div>
//
// Every render pass rebuilds the VNode tree from the detached template and
// patches the live tree. Errors abort the pass, are logged and are kept in
// Err until a later pass succeeds.
package app
