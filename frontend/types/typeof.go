package types

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/cottand/extunify/frontend/typerr"
)

// Typed is implemented by host values which know their own static type
type Typed interface {
	StaticType() Type
}

// Wrapped is a host value of the Parametric type Tag(typeof(Value))
type Wrapped struct {
	Tag   string
	Value any
}

// TupleValue is a host value of a heterogeneous Tuple type
type TupleValue []any

// TypeOf maps a Go host value to its static Type.
//
// Values with no registered mapping fail with typerr.NewUnsupportedValue.
func (r *Registry) TypeOf(value any) (Type, error) {
	switch v := value.(type) {
	case nil:
		return nil, r.unsupported(value)
	case Typed:
		if t := v.StaticType(); t != nil {
			return t, nil
		}
		return nil, fmt.Errorf("value of Go type %T reported no static type", value)
	case Wrapped:
		inner, err := r.TypeOf(v.Value)
		if err != nil {
			return nil, err
		}
		return r.Construct(v.Tag, inner), nil
	case TupleValue:
		return r.tupleOf(len(v), func(i int) any { return v[i] })
	}

	rv := reflect.ValueOf(value)
	if t, ok := r.hosts.Get(hostKey(rv.Type())); ok {
		return t, nil
	}
	switch rv.Kind() {
	case reflect.Bool:
		return Bool, nil
	case reflect.Int:
		return Int64, nil
	case reflect.Uint, reflect.Uintptr:
		return UInt64, nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if p, ok := SignedOfWidth(rv.Type().Bits()); ok {
			return p, nil
		}
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if p, ok := UnsignedOfWidth(rv.Type().Bits()); ok {
			return p, nil
		}
	case reflect.Float32:
		return Float32, nil
	case reflect.Float64:
		return Float64, nil
	case reflect.Complex64:
		return Complex64, nil
	case reflect.Complex128:
		return Complex128, nil
	case reflect.Array:
		return r.tupleOf(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	}
	return nil, r.unsupported(value)
}

func (r *Registry) tupleOf(n int, at func(int) any) (Type, error) {
	elems := make([]Type, n)
	for i := range elems {
		elem, err := r.TypeOf(at(i))
		if err != nil {
			return nil, err
		}
		elems[i] = elem
	}
	return NewTuple(elems...), nil
}

func (r *Registry) unsupported(value any) error {
	goType := fmt.Sprintf("%T", value)
	r.logger.Debug("no static type for host value", slog.String("goType", goType))
	return typerr.New(typerr.NewUnsupportedValue{GoType: goType})
}
