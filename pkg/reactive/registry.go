package reactive

import (
	"log/slog"
)

// DefaultMaxDepth bounds nested trigger runs when no option overrides it.
const DefaultMaxDepth = 100

// depKey identifies one subscription slot.
type depKey struct {
	target any
	key    string
}

// depSet is an insertion-ordered set of effects.
type depSet struct {
	effects []*Effect
	index   map[*Effect]struct{}
}

func (s *depSet) add(e *Effect) bool {
	if _, ok := s.index[e]; ok {
		return false
	}
	s.index[e] = struct{}{}
	s.effects = append(s.effects, e)
	return true
}

func (s *depSet) remove(e *Effect) {
	if _, ok := s.index[e]; !ok {
		return
	}
	delete(s.index, e)
	for i, existing := range s.effects {
		if existing == e {
			s.effects = append(s.effects[:i], s.effects[i+1:]...)
			return
		}
	}
}

// Registry is the subscription table and active-effect stack.
// It is not safe for concurrent use.
type Registry struct {
	deps map[any]map[string]*depSet

	// stack holds the effects currently running, innermost last.
	stack []*Effect

	// depth counts nested trigger-initiated runs.
	depth    int
	maxDepth int

	retainNested bool
	logger       *slog.Logger
	onRun        func(*Effect)
	onDrop       func(*Effect, int)
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxDepth sets how deeply triggered effects may nest.
func WithMaxDepth(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithRetainNested keeps nested effects alive when their parent re-runs.
func WithRetainNested() Option {
	return func(r *Registry) {
		r.retainNested = true
	}
}

// WithLogger sets the logger used for dropped-effect warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunHook is called before every effect run.
func WithRunHook(fn func(*Effect)) Option {
	return func(r *Registry) {
		r.onRun = fn
	}
}

// WithDropHook is called when an effect is dropped by the depth guard.
func WithDropHook(fn func(e *Effect, depth int)) Option {
	return func(r *Registry) {
		r.onDrop = fn
	}
}

// NewRegistry creates an empty subscription table.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		deps:     make(map[any]map[string]*depSet),
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Track subscribes every running effect to (target, key). It does nothing
// when no effect is running. target must be comparable.
func (r *Registry) Track(target any, key string) {
	if len(r.stack) == 0 {
		return
	}
	keys := r.deps[target]
	if keys == nil {
		keys = make(map[string]*depSet)
		r.deps[target] = keys
	}
	set := keys[key]
	if set == nil {
		set = &depSet{index: make(map[*Effect]struct{})}
		keys[key] = set
	}
	for _, e := range r.stack {
		if e.disposed {
			continue
		}
		if set.add(e) {
			e.deps = append(e.deps, depKey{target: target, key: key})
		}
	}
}

// Trigger runs, in registration order, every effect subscribed to
// (target, key). Effects subscribed while the trigger is in progress are
// not run by it.
func (r *Registry) Trigger(target any, key string) {
	set := r.deps[target][key]
	if set == nil || len(set.effects) == 0 {
		return
	}
	snapshot := make([]*Effect, len(set.effects))
	copy(snapshot, set.effects)

	for _, e := range snapshot {
		r.rerun(e)
	}
}

func (r *Registry) rerun(e *Effect) {
	if e.disposed {
		return
	}
	if r.depth >= r.maxDepth {
		r.logger.Warn("reactive: effect dropped",
			"code", "E006",
			"effect", e.id,
			"depth", r.depth,
		)
		if r.onDrop != nil {
			r.onDrop(e, r.depth)
		}
		return
	}
	r.depth++
	defer func() { r.depth-- }()
	e.run()
}

// Effect creates an effect and runs it once immediately. Reads made during
// that run subscribe it. The new effect becomes a child of the running
// effect, if any.
func (r *Registry) Effect(fn func()) *Effect {
	e := &Effect{
		id:  nextID(),
		fn:  fn,
		reg: r,
	}
	if parent := r.current(); parent != nil && !r.retainNested {
		e.parent = parent
		parent.children = append(parent.children, e)
	}
	e.run()
	return e
}

// Dispose disposes e. See Effect.Dispose.
func (r *Registry) Dispose(e *Effect) {
	if e != nil {
		e.Dispose()
	}
}

// Active reports whether an effect is currently running.
func (r *Registry) Active() bool {
	return len(r.stack) > 0
}

// Untracked runs fn with the active stack hidden, so its reads subscribe
// nothing.
func (r *Registry) Untracked(fn func()) {
	saved := r.stack
	r.stack = nil
	defer func() { r.stack = saved }()
	fn()
}

// Subscribers returns how many effects are subscribed to (target, key).
func (r *Registry) Subscribers(target any, key string) int {
	set := r.deps[target][key]
	if set == nil {
		return 0
	}
	return len(set.effects)
}

// Subscriptions returns the total number of (target, key, effect) entries.
func (r *Registry) Subscriptions() int {
	n := 0
	for _, keys := range r.deps {
		for _, set := range keys {
			n += len(set.effects)
		}
	}
	return n
}

// Reactive wraps v with hooks bound to this registry's Track and Trigger.
func (r *Registry) Reactive(v any) any {
	return Wrap(v, r.Hooks())
}

// Object wraps m as a reactive object.
func (r *Registry) Object(m map[string]any) *Object {
	return Wrap(m, r.Hooks()).(*Object)
}

// List wraps items as a reactive list.
func (r *Registry) List(items []any) *List {
	return Wrap(items, r.Hooks()).(*List)
}

// Hooks returns wrapper hooks that track reads and trigger on writes and
// deletes.
func (r *Registry) Hooks() Hooks {
	return Hooks{
		OnRead: r.Track,
		OnWrite: func(target any, key string, _ any) {
			r.Trigger(target, key)
		},
		OnDelete: r.Trigger,
	}
}

func (r *Registry) current() *Effect {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Registry) unsubscribe(e *Effect, k depKey) {
	keys := r.deps[k.target]
	if keys == nil {
		return
	}
	set := keys[k.key]
	if set == nil {
		return
	}
	set.remove(e)
	if len(set.effects) == 0 {
		delete(keys, k.key)
	}
	if len(keys) == 0 {
		delete(r.deps, k.target)
	}
}
