package eval

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/tnt-dev/tnt/pkg/reactive"
)

// toCty converts a Go value to a cty value. Reactive wrappers are read in
// full, so every key and index they hold is tracked.
func toCty(v any) cty.Value {
	switch val := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType)
	case cty.Value:
		return val
	case string:
		return cty.StringVal(val)
	case bool:
		return cty.BoolVal(val)
	case int:
		return cty.NumberIntVal(int64(val))
	case int64:
		return cty.NumberIntVal(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return cty.NullVal(cty.Number)
		}
		return cty.NumberFloatVal(val)
	case Func:
		if val == nil {
			return cty.NullVal(funcType)
		}
		return cty.CapsuleVal(funcType, &val)
	case *reactive.Object:
		attrs := make(map[string]cty.Value)
		for k, item := range val.All() {
			attrs[k] = toCty(item)
		}
		return objectVal(attrs)
	case *reactive.List:
		return tupleVal(val.Values())
	case reactive.Source:
		return toCty(val.Any())
	case map[string]any:
		attrs := make(map[string]cty.Value, len(val))
		for k, item := range val {
			attrs[k] = toCty(item)
		}
		return objectVal(attrs)
	case []any:
		return tupleVal(val)
	case error:
		return cty.StringVal(val.Error())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return tupleVal(items)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			attrs := make(map[string]cty.Value, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				attrs[iter.Key().String()] = toCty(iter.Value().Interface())
			}
			return objectVal(attrs)
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType)
		}
	}

	if ty, err := gocty.ImpliedType(v); err == nil {
		if cv, err := gocty.ToCtyValue(v, ty); err == nil {
			return cv
		}
	}
	return cty.StringVal(fmt.Sprint(v))
}

func objectVal(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

func tupleVal(items []any) cty.Value {
	if len(items) == 0 {
		return cty.EmptyTupleVal
	}
	vals := make([]cty.Value, len(items))
	for i, item := range items {
		vals[i] = toCty(item)
	}
	return cty.TupleVal(vals)
}

// fromCty converts a cty value back to plain Go values: string, bool, int,
// float64, []any, map[string]any, Func or nil.
func fromCty(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		return fromNumber(v.AsBigFloat())
	case ty.Equals(funcType):
		return *(v.EncapsulatedValue().(*Func))
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, item := it.Element()
			out[k.AsString()] = fromCty(item)
		}
		return out
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, item := it.Element()
			out = append(out, fromCty(item))
		}
		return out
	case ty.IsCapsuleType():
		return v.EncapsulatedValue()
	}
	return v.GoString()
}

func fromNumber(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
	}
	f, _ := bf.Float64()
	return f
}
