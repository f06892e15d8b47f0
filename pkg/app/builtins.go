package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tnt-dev/tnt/pkg/eval"
	"github.com/tnt-dev/tnt/pkg/reactive"
)

// Names of the mutation functions available to every expression.
const (
	FuncSet    = "set"
	FuncToggle = "toggle"
	FuncPush   = "push"
	FuncRemove = "remove"
)

func (a *App) registerBuiltins() {
	a.env.SetFunc(FuncSet, func(args ...any) (any, error) {
		path, err := pathArg(FuncSet, args, 2)
		if err != nil {
			return nil, err
		}
		return nil, a.SetPath(path, args[1])
	})
	a.env.SetFunc(FuncToggle, func(args ...any) (any, error) {
		path, err := pathArg(FuncToggle, args, 1)
		if err != nil {
			return nil, err
		}
		cur, err := a.GetPath(path)
		if err != nil {
			return nil, err
		}
		next := !eval.Truthy(cur)
		return next, a.SetPath(path, next)
	})
	a.env.SetFunc(FuncPush, func(args ...any) (any, error) {
		path, err := pathArg(FuncPush, args, 2)
		if err != nil {
			return nil, err
		}
		list, err := a.listAt(path)
		if err != nil {
			return nil, err
		}
		list.Append(args[1])
		return nil, nil
	})
	a.env.SetFunc(FuncRemove, func(args ...any) (any, error) {
		path, err := pathArg(FuncRemove, args, 2)
		if err != nil {
			return nil, err
		}
		i, ok := toIndex(args[1])
		if !ok {
			return nil, fmt.Errorf("remove: index must be a whole number, got %v", args[1])
		}
		list, err := a.listAt(path)
		if err != nil {
			return nil, err
		}
		list.RemoveAt(i)
		return nil, nil
	})
}

func pathArg(name string, args []any, want int) (string, error) {
	if len(args) != want {
		return "", fmt.Errorf("%s: expected %d arguments, got %d", name, want, len(args))
	}
	path, ok := args[0].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("%s: first argument must be a path string", name)
	}
	return path, nil
}

func toIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

// lookupRoot resolves the first segment of a dotted path.
func (a *App) lookupRoot(path string) (any, bool) {
	name, _, _ := strings.Cut(path, ".")
	v, ok := a.bound[name]
	return v, ok
}

// resolve walks path and returns the value holding its last segment along
// with that segment. A single-segment path returns the bound value itself
// and an empty key.
func (a *App) resolve(path string) (holder any, key string, err error) {
	root, ok := a.lookupRoot(path)
	if !ok {
		return nil, "", fmt.Errorf("unknown binding %q", path)
	}
	segs := strings.Split(path, ".")
	if len(segs) == 1 {
		return root, "", nil
	}
	cur := root
	for _, seg := range segs[1 : len(segs)-1] {
		cur, err = child(cur, seg)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
	}
	if src, ok := cur.(reactive.Source); ok {
		cur = src.PeekAny()
	}
	return cur, segs[len(segs)-1], nil
}

func child(v any, seg string) (any, error) {
	if src, ok := v.(reactive.Source); ok {
		v = src.PeekAny()
	}
	switch c := v.(type) {
	case *reactive.Object:
		next, ok := c.Get(seg)
		if !ok {
			return nil, fmt.Errorf("no field %q", seg)
		}
		return next, nil
	case *reactive.List:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= c.Len() {
			return nil, fmt.Errorf("index %q out of range", seg)
		}
		return c.At(i), nil
	}
	return nil, fmt.Errorf("cannot select %q from %T", seg, v)
}

// GetPath returns the value at a dotted path such as "state.items.0".
func (a *App) GetPath(path string) (any, error) {
	holder, key, err := a.resolve(path)
	if err != nil {
		return nil, err
	}
	if key == "" {
		if src, ok := holder.(reactive.Source); ok {
			return src.Any(), nil
		}
		return holder, nil
	}
	v, err := child(holder, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// SetPath writes value at a dotted path. Writing a bare name requires the
// binding to be a Ref.
func (a *App) SetPath(path string, value any) error {
	holder, key, err := a.resolve(path)
	if err != nil {
		return err
	}
	switch h := holder.(type) {
	case *reactive.Object:
		if key == "" {
			return fmt.Errorf("%s: cannot replace a data object", path)
		}
		h.Set(key, value)
		return nil
	case *reactive.List:
		if key == "" {
			return fmt.Errorf("%s: cannot replace a list binding", path)
		}
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 {
			return fmt.Errorf("%s: invalid index %q", path, key)
		}
		h.Set(i, value)
		return nil
	case reactive.Sink:
		if key != "" {
			return fmt.Errorf("%s: cannot select %q from a ref", path, key)
		}
		return h.SetAny(value)
	}
	return fmt.Errorf("%s: cannot assign into %T", path, holder)
}

func (a *App) listAt(path string) (*reactive.List, error) {
	v, err := a.GetPath(path)
	if err != nil {
		return nil, err
	}
	list, ok := v.(*reactive.List)
	if !ok {
		return nil, fmt.Errorf("%s: not a list", path)
	}
	return list, nil
}
