package vdom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr is a single prop.
type Attr struct {
	Key   string
	Value string
}

// Props is an ordered list of props with unique keys.
type Props []Attr

// NewProps builds Props from alternating keys and values. A trailing key
// without a value is ignored.
func NewProps(kv ...string) Props {
	p := make(Props, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(kv[i], kv[i+1])
	}
	return p
}

// Get returns the value for key.
func (p Props) Get(key string) (string, bool) {
	for _, a := range p {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Value returns the value for key, or "".
func (p Props) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Has reports whether key is present.
func (p Props) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set replaces the value for key in place or appends it.
func (p *Props) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Attr{Key: key, Value: value})
}

// Delete removes key, keeping the order of the rest.
func (p *Props) Delete(key string) {
	for i, a := range *p {
		if a.Key == key {
			*p = append((*p)[:i], (*p)[i+1:]...)
			return
		}
	}
}

// Keys returns the keys in order.
func (p Props) Keys() []string {
	keys := make([]string, len(p))
	for i, a := range p {
		keys[i] = a.Key
	}
	return keys
}

// Len returns the number of props.
func (p Props) Len() int {
	return len(p)
}

// Clone returns a copy that shares no storage with p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	copy(out, p)
	return out
}

// Attrs returns the props as html attributes.
func (p Props) Attrs() []html.Attribute {
	out := make([]html.Attribute, len(p))
	for i, a := range p {
		out[i] = html.Attribute{Key: a.Key, Val: a.Value}
	}
	return out
}

// IsEventHandler reports whether key binds an event listener ("onclick").
func IsEventHandler(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// IsBinding reports whether key is a reactive attribute binding (":class").
func IsBinding(key string) bool {
	return len(key) > 1 && key[0] == ':'
}

// EventType returns the lowercase event name of a handler key.
func EventType(key string) string {
	return strings.ToLower(key[2:])
}
