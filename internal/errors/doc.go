// Package errors provides structured, actionable error values for TNT.
//
// Every error raised by the template pipeline carries a stable code that maps
// to a registered template:
//   - a short message describing the failure
//   - a category (runtime, template, config, protocol, publish)
//   - a longer explanation
//
// Errors can be decorated with the template node they refer to, a fix
// suggestion and a wrapped cause. errors.Is matches two TNT errors by code,
// so callers can test for a failure class without string matching:
//
//	err := errors.New("E004").
//	    WithNode("html>body>div>t-for").
//	    WithSuggestion(`Write the binding as "item in items"`)
//
//	if stderrors.Is(err, errors.New("E004")) { ... }
//
// Format renders an error for terminal display:
//
//	ERROR E004: Malformed loop binding
//
//	  at html>body>div>t-for
//
//	  The data attribute of a t-for element must have the form "name in expression".
//
//	  Hint: Write the binding as "item in items"
package errors
