package eval

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Func is a callable value that expressions can pass around and invoke.
// Event handlers evaluate to a Func; methods and built-ins are Funcs.
type Func func(args ...any) (any, error)

// funcType is the cty capsule type carrying a Func.
var funcType = cty.Capsule("function", reflect.TypeOf(Func(nil)))

// Function adapts f to a cty function taking any number of arguments of
// any type.
func (f Func) Function() function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{
			Name:             "args",
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		},
		Type: function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			in := make([]any, len(args))
			for i, a := range args {
				in[i] = fromCty(a)
			}
			out, err := f(in...)
			if err != nil {
				return cty.NilVal, err
			}
			return toCty(out), nil
		},
	})
}

// Call invokes v when it is a Func. Calling anything else is an error.
func Call(v any, args ...any) (any, error) {
	fn, ok := v.(Func)
	if !ok || fn == nil {
		return nil, fmt.Errorf("%s is not callable", String(v))
	}
	return fn(args...)
}

// IsFunc reports whether v is callable.
func IsFunc(v any) bool {
	fn, ok := v.(Func)
	return ok && fn != nil
}
