// Package reactive implements TNT's dependency-tracking core.
//
// A Registry is the subscription table. It maps a (target, key) pair to the
// ordered set of effects that read it. Reads made while an effect runs are
// tracked for every effect on the active stack, and writes re-run the
// subscribed effects synchronously before the write returns. There is no
// scheduler and no batching.
//
// Plain data enters the system through Wrap (or Registry.Reactive), which turns
// map[string]any into *Object and []any into *List. Both call the injected
// hooks on every read, write and delete. Ref holds a single value under the
// key "value", and Computed keeps a Ref current through an owned effect.
//
// # Lifetimes
//
// An effect created while another effect runs becomes its child. Children are
// disposed before the parent re-runs, so re-rendering a template does not
// accumulate stale subscriptions. WithRetainNested turns this off and keeps
// every effect alive for the life of the registry.
//
// Effects never drop dependencies between runs: a key read once stays
// subscribed until the effect is disposed.
//
// # Cascades
//
// Effects that write state they (transitively) read would recurse forever.
// The registry bounds trigger nesting with a maximum depth. An effect that
// would run past it is dropped and reported (code E006).
package reactive
