package reactive

import (
	"iter"
	"reflect"
	"sort"
	"strconv"
)

// Pseudo-keys reported for structural reads and writes.
const (
	// IterateKey is read when an object's key set is enumerated and written
	// when a key is added or deleted.
	IterateKey = "[[keys]]"

	// LengthKey is read and written for a list's length.
	LengthKey = "length"
)

// Hooks are the callbacks a wrapper reports accesses to.
type Hooks struct {
	OnRead   func(target any, key string)
	OnWrite  func(target any, key string, value any)
	OnDelete func(target any, key string)
}

func (h Hooks) read(target any, key string) {
	if h.OnRead != nil {
		h.OnRead(target, key)
	}
}

func (h Hooks) write(target any, key string, value any) {
	if h.OnWrite != nil {
		h.OnWrite(target, key, value)
	}
}

func (h Hooks) del(target any, key string) {
	if h.OnDelete != nil {
		h.OnDelete(target, key)
	}
}

// Wrap returns an observable wrapper over v. Maps with string keys become
// *Object and slices become *List, recursively. Other values, including
// values that are already wrapped, are returned unchanged.
func Wrap(v any, hooks Hooks) any {
	switch val := v.(type) {
	case nil:
		return nil
	case *Object, *List:
		return v
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := &Object{hooks: hooks, values: make(map[string]any, len(val))}
		for _, k := range keys {
			o.keys = append(o.keys, k)
			o.values[k] = Wrap(val[k], hooks)
		}
		return o
	case []any:
		l := &List{hooks: hooks, items: make([]any, len(val))}
		for i, item := range val {
			l.items[i] = Wrap(item, hooks)
		}
		return l
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return Wrap(items, hooks)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return Wrap(m, hooks)
	}
	return v
}

// Object is an observable string-keyed record with stable key order.
type Object struct {
	hooks  Hooks
	keys   []string
	values map[string]any
}

// Get returns the value under key and whether it exists.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	o.hooks.read(o, key)
	return v, ok
}

// Value returns the value under key, or nil.
func (o *Object) Value(key string) any {
	v, _ := o.Get(key)
	return v
}

// Has reports whether key exists.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set writes key. Map and slice values are wrapped before they are stored.
// Every Set reports a write, even when the value is unchanged.
func (o *Object) Set(key string, v any) {
	v = Wrap(v, o.hooks)
	_, existed := o.values[key]
	if !existed {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	o.hooks.write(o, key, v)
	if !existed {
		o.hooks.write(o, IterateKey, nil)
	}
}

// Delete removes key if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	o.hooks.del(o, key)
	o.hooks.del(o, IterateKey)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	o.hooks.read(o, IterateKey)
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *Object) Len() int {
	o.hooks.read(o, IterateKey)
	return len(o.keys)
}

// All iterates the entries in key order, reading each one.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			if !yield(k, v) {
				return
			}
		}
	}
}

// Snapshot returns a deep, unwrapped copy without reporting reads.
func (o *Object) Snapshot() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = Unwrap(v)
	}
	return out
}

// List is an observable sequence. Index reads and writes are reported under
// the decimal index; length changes under LengthKey.
type List struct {
	hooks Hooks
	items []any
}

// Len returns the number of items.
func (l *List) Len() int {
	l.hooks.read(l, LengthKey)
	return len(l.items)
}

// At returns the item at i, or nil when i is out of range.
func (l *List) At(i int) any {
	l.hooks.read(l, strconv.Itoa(i))
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// Set writes the item at i, growing the list with nils when i is past the end.
func (l *List) Set(i int, v any) {
	if i < 0 {
		return
	}
	v = Wrap(v, l.hooks)
	grew := false
	for i >= len(l.items) {
		l.items = append(l.items, nil)
		grew = true
	}
	l.items[i] = v
	l.hooks.write(l, strconv.Itoa(i), v)
	if grew {
		l.hooks.write(l, LengthKey, len(l.items))
	}
}

// Append adds items to the end.
func (l *List) Append(vs ...any) {
	if len(vs) == 0 {
		return
	}
	for _, v := range vs {
		v = Wrap(v, l.hooks)
		l.items = append(l.items, v)
		l.hooks.write(l, strconv.Itoa(len(l.items)-1), v)
	}
	l.hooks.write(l, LengthKey, len(l.items))
}

// RemoveAt removes the item at i, shifting later items down.
func (l *List) RemoveAt(i int) {
	if i < 0 || i >= len(l.items) {
		return
	}
	oldLen := len(l.items)
	l.items = append(l.items[:i], l.items[i+1:]...)
	for j := i; j < oldLen; j++ {
		if j < len(l.items) {
			l.hooks.write(l, strconv.Itoa(j), l.items[j])
		} else {
			l.hooks.del(l, strconv.Itoa(j))
		}
	}
	l.hooks.write(l, LengthKey, len(l.items))
}

// Values returns a copy of the items, reading the length and every index.
func (l *List) Values() []any {
	n := l.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = l.At(i)
	}
	return out
}

// All iterates the items in order, reading each one.
func (l *List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		n := l.Len()
		for i := 0; i < n; i++ {
			if !yield(i, l.At(i)) {
				return
			}
		}
	}
}

// Snapshot returns a deep, unwrapped copy without reporting reads.
func (l *List) Snapshot() []any {
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = Unwrap(v)
	}
	return out
}

// Unwrap converts wrappers back to plain maps and slices without reporting
// reads. Refs are unwrapped to their current value.
func Unwrap(v any) any {
	switch val := v.(type) {
	case *Object:
		return val.Snapshot()
	case *List:
		return val.Snapshot()
	case Source:
		return Unwrap(val.PeekAny())
	}
	return v
}
