// Package eval evaluates template expressions.
//
// Expressions use HCL native expression syntax: attribute access
// (state.count), operators, conditionals (a ? b : c), template strings
// ("${a}-${b}"), collection literals, for expressions and function calls.
// Names resolve against an Env, a chain of frames in which children see
// every ancestor binding and siblings never see each other's.
//
// Reads are precise. Before evaluating, the evaluator inspects which
// attribute paths the expression references and resolves only those through
// the reactive wrappers, so an expression that reads state.count subscribes
// to count and nothing else on state.
//
// Evaluate never fails: any parse error, unknown name, type error or panic is
// returned as its description string. Use Eval when the error matters.
package eval
