package eval

import (
	"sort"

	"github.com/zclconf/go-cty/cty/function"
)

// Env is one frame of an environment chain.
type Env struct {
	parent *Env
	vars   map[string]any
	funcs  map[string]function.Function
}

// NewEnv returns an empty root frame.
func NewEnv() *Env {
	return &Env{}
}

// Child returns a new frame whose lookups fall back to e.
func (e *Env) Child() *Env {
	return &Env{parent: e}
}

// Parent returns the enclosing frame, or nil for a root.
func (e *Env) Parent() *Env {
	return e.parent
}

// Set binds name in this frame and returns e.
func (e *Env) Set(name string, v any) *Env {
	if e.vars == nil {
		e.vars = make(map[string]any)
	}
	e.vars[name] = v
	return e
}

// SetFunc binds fn both as a callable value and as a function, so the
// expression "inc" yields the callable and "inc(1)" calls it.
func (e *Env) SetFunc(name string, fn Func) *Env {
	e.Set(name, fn)
	if e.funcs == nil {
		e.funcs = make(map[string]function.Function)
	}
	e.funcs[name] = fn.Function()
	return e
}

// Lookup finds name in this frame or the nearest ancestor that binds it.
func (e *Env) Lookup(name string) (any, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Names returns every visible variable name, sorted.
func (e *Env) Names() []string {
	seen := make(map[string]struct{})
	for f := e; f != nil; f = f.parent {
		for k := range f.vars {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// functions flattens the chain's functions, innermost frames winning.
func (e *Env) functions() map[string]function.Function {
	var out map[string]function.Function
	for f := e; f != nil; f = f.parent {
		for k, fn := range f.funcs {
			if out == nil {
				out = make(map[string]function.Function)
			}
			if _, ok := out[k]; !ok {
				out[k] = fn
			}
		}
	}
	return out
}
