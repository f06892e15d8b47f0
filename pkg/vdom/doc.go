// Package vdom provides the virtual DOM used by TNT templates.
//
// A VNode describes one element: its tag, ordered props and either child
// nodes or literal text. Trees are built fresh on every render pass and
// reconciled against the previous tree by an Engine, which applies the
// difference to the live dom.Document in place.
//
// # Props
//
// Three kinds of prop are treated specially when a tree is mounted or
// patched:
//
//   - ":name" is a reactive binding. The engine installs an effect that
//     evaluates the value and writes it to the attribute "name". The literal
//     ":name" is never written.
//   - "on<event>" binds an event handler. The value is evaluated when the
//     event fires; if the result is callable it is invoked with the event.
//   - anything else is written as a plain attribute.
//
// # Reconciliation
//
// Children are reconciled by position only: the shared prefix is patched
// pairwise, then surplus new children are mounted or surplus old children
// removed. There are no keys. A root tag change is an error; a tag change
// below the root replaces that child.
package vdom
