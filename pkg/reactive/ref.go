package reactive

import (
	"fmt"
	"reflect"
)

// RefKey is the property name a Ref tracks and triggers under.
const RefKey = "value"

// Source is implemented by every Ref regardless of its type parameter, so
// evaluators can read refs without knowing T.
type Source interface {
	// Any returns the current value and tracks the read.
	Any() any
	// PeekAny returns the current value without tracking.
	PeekAny() any
}

// Sink is implemented by every Ref so that values of unknown type can be
// stored into it.
type Sink interface {
	SetAny(v any) error
}

// Ref is a single reactive cell.
type Ref[T any] struct {
	reg   *Registry
	value T
}

// NewRef creates a ref holding initial.
func NewRef[T any](r *Registry, initial T) *Ref[T] {
	return &Ref[T]{reg: r, value: initial}
}

// Get returns the value and tracks the read.
func (c *Ref[T]) Get() T {
	c.reg.Track(c, RefKey)
	return c.value
}

// Peek returns the value without tracking.
func (c *Ref[T]) Peek() T {
	return c.value
}

// Set stores v and triggers dependents. Setting an equal value does nothing.
func (c *Ref[T]) Set(v T) {
	if reflect.DeepEqual(any(c.value), any(v)) {
		return
	}
	c.value = v
	c.reg.Trigger(c, RefKey)
}

// Update applies fn to the current value without tracking and stores the result.
func (c *Ref[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// SetAny implements Sink. It fails when v is not assignable to T; nil stores
// the zero value.
func (c *Ref[T]) SetAny(v any) error {
	if v == nil {
		var zero T
		c.Set(zero)
		return nil
	}
	t, ok := v.(T)
	if !ok {
		return fmt.Errorf("reactive: cannot store %T in Ref[%v]", v, reflect.TypeFor[T]())
	}
	c.Set(t)
	return nil
}

// Any implements Source.
func (c *Ref[T]) Any() any {
	return c.Get()
}

// PeekAny implements Source.
func (c *Ref[T]) PeekAny() any {
	return c.value
}

// Computed returns a ref kept current by a permanent effect that reruns getter
// whenever one of its reads changes. The effect is created outside any
// running effect so that it outlives the caller's effect.
func Computed[T any](r *Registry, getter func() T) *Ref[T] {
	ref := &Ref[T]{reg: r}
	r.Untracked(func() {
		r.Effect(func() {
			ref.Set(getter())
		})
	})
	return ref
}
