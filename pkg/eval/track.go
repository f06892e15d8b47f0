package eval

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/tnt-dev/tnt/pkg/reactive"
)

// shape records which attribute paths under one variable an expression
// reads. A whole node is used in full and converted entirely.
type shape struct {
	whole bool
	attrs map[string]*shape
}

func (s *shape) child(name string) *shape {
	if s.attrs == nil {
		s.attrs = make(map[string]*shape)
	}
	c := s.attrs[name]
	if c == nil {
		c = &shape{}
		s.attrs[name] = c
	}
	return c
}

// shapesOf groups the expression's variable traversals by root name.
func shapesOf(traversals []hcl.Traversal) map[string]*shape {
	roots := make(map[string]*shape)
	for _, tr := range traversals {
		name := tr.RootName()
		root := roots[name]
		if root == nil {
			root = &shape{}
			roots[name] = root
		}
		node := root
		for _, step := range tr[1:] {
			attr, ok := attrName(step)
			if !ok {
				break
			}
			node = node.child(attr)
		}
		node.whole = true
	}
	return roots
}

func attrName(step hcl.Traverser) (string, bool) {
	switch s := step.(type) {
	case hcl.TraverseAttr:
		return s.Name, true
	case hcl.TraverseIndex:
		if s.Key.IsKnown() && !s.Key.IsNull() && s.Key.Type() == cty.String {
			return s.Key.AsString(), true
		}
	}
	return "", false
}

// resolve converts only the parts of v that sh names. Each attribute hop on
// a reactive object is a tracked read of that key alone.
func resolve(v any, sh *shape) cty.Value {
	if sh.whole || len(sh.attrs) == 0 {
		return toCty(v)
	}
	switch val := v.(type) {
	case reactive.Source:
		return resolve(val.Any(), sh)
	case *reactive.Object:
		attrs := make(map[string]cty.Value, len(sh.attrs))
		for _, name := range sortedKeys(sh.attrs) {
			item, ok := val.Get(name)
			if !ok {
				attrs[name] = cty.NullVal(cty.DynamicPseudoType)
				continue
			}
			attrs[name] = resolve(item, sh.attrs[name])
		}
		return cty.ObjectVal(attrs)
	case map[string]any:
		attrs := make(map[string]cty.Value, len(sh.attrs))
		for name, child := range sh.attrs {
			item, ok := val[name]
			if !ok {
				attrs[name] = cty.NullVal(cty.DynamicPseudoType)
				continue
			}
			attrs[name] = resolve(item, child)
		}
		return cty.ObjectVal(attrs)
	}
	return toCty(v)
}

func sortedKeys(m map[string]*shape) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
