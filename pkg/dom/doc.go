// Package dom provides the live element tree that TNT templates are read from
// and rendered into.
//
// The tree is a golang.org/x/net/html node tree. Document wraps it with the
// operations a browser DOM offers the renderer: element creation, attribute
// and text mutation, child insertion and removal, event listeners with
// bubbling, and serialization back to HTML.
//
// Every structural or attribute change made through a Document is reported to
// its observers as a Mutation. The preview server uses this to decide when to
// push a fresh render to connected clients, and telemetry counts them.
//
// # Hydration IDs
//
// When EnableHydrationIDs is set, every element that receives an event
// handler is stamped with a data-tid attribute ("h1", "h2", ...). Remote
// clients report events by that ID and ElementByHID resolves it back to the
// element.
package dom
