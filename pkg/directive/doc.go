// Package directive implements the renderers that turn template markup into
// reactive VNodes.
//
// The built-in renderers, in priority order:
//
//	<v data="expr">                      text interpolation
//	<t-if cond> <t-elif cond> <t-else>   conditional chain
//	<t-for data="name in expr">          iteration
//	<any :attr="expr">                   attribute binding
//
// A renderer inspects one freshly built VNode, may install effects that keep
// it current, and tells the builder whether to descend into the element's
// own children.
package directive
