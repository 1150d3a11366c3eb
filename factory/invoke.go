package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Constructor wraps a function that builds a new instance. Unlike a factory
// function, whatever a constructor returns is taken as the instance: it is
// never awaited, even when it implements Deferred.
type Constructor struct {
	fn reflect.Value
}

// NewConstructor wraps fn, which must be a function returning the instance
// and optionally an error. It panics otherwise, as registration is a
// programming-time concern.
func NewConstructor(fn any) Constructor {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		panic(fmt.Sprintf("factory: constructor must be a non-nil function, got %T", fn))
	}
	if err := checkResults(rv.Type()); err != nil {
		panic(fmt.Sprintf("factory: invalid constructor %T: %v", fn, err))
	}
	return Constructor{fn: rv}
}

func (c Constructor) construct(ctx context.Context, params []any) (any, error) {
	return call(ctx, c.fn, params)
}

// instantiate allocates a new value of t. Params fill the exported fields of
// a struct positionally; a non-struct type takes at most one param.
func instantiate(t reflect.Type, params []any) (out any, err error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ptr := reflect.New(t)
	elem := ptr.Elem()

	if t.Kind() != reflect.Struct {
		switch len(params) {
		case 0:
		case 1:
			v, err := convertParam(params[0], t)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFactoryInvocation, err)
			}
			elem.Set(v)
		default:
			return nil, fmt.Errorf("%w: %s takes at most one param, got %d", ErrFactoryInvocation, t, len(params))
		}
		return ptr.Interface(), nil
	}

	fields := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			fields = append(fields, i)
		}
	}
	if len(params) > len(fields) {
		return nil, fmt.Errorf("%w: %s has %d exported fields, got %d params", ErrFactoryInvocation, t, len(fields), len(params))
	}
	for i, p := range params {
		field := t.Field(fields[i])
		v, err := convertParam(p, field.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", ErrFactoryInvocation, field.Name, err)
		}
		elem.Field(fields[i]).Set(v)
	}
	return ptr.Interface(), nil
}

// checkResults accepts functions returning nothing, a value, an error, or a
// value and an error.
func checkResults(t reflect.Type) error {
	switch t.NumOut() {
	case 0, 1:
		return nil
	case 2:
		if t.Out(1) == errorType {
			return nil
		}
		return fmt.Errorf("second result must be error, got %s", t.Out(1))
	default:
		return fmt.Errorf("returns %d results, want at most 2", t.NumOut())
	}
}

// call invokes fn with params. A leading context.Context parameter receives
// ctx; missing trailing params are zero values. A returned error or a panic
// is reported as ErrFactoryInvocation.
func call(ctx context.Context, fn reflect.Value, params []any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: panic: %v", ErrFactoryInvocation, r)
		}
	}()

	args, err := arguments(ctx, fn.Type(), params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFactoryInvocation, err)
	}

	results := fn.Call(args)
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		if fn.Type().Out(0) == errorType {
			if e, _ := results[0].Interface().(error); e != nil {
				return nil, fmt.Errorf("%w: %w", ErrFactoryInvocation, e)
			}
			return nil, nil
		}
		return results[0].Interface(), nil
	default:
		if e, _ := results[1].Interface().(error); e != nil {
			return nil, fmt.Errorf("%w: %w", ErrFactoryInvocation, e)
		}
		return results[0].Interface(), nil
	}
}

func arguments(ctx context.Context, t reflect.Type, params []any) ([]reflect.Value, error) {
	numIn := t.NumIn()
	args := make([]reflect.Value, 0, max(numIn, len(params)))

	first := 0
	if numIn > 0 && t.In(0) == contextType {
		args = append(args, reflect.ValueOf(&ctx).Elem())
		first = 1
	}

	fixed := numIn
	if t.IsVariadic() {
		fixed = numIn - 1
	}
	if !t.IsVariadic() && len(params) > numIn-first {
		return nil, fmt.Errorf("%s takes %d params, got %d", t, numIn-first, len(params))
	}

	for i := first; i < fixed; i++ {
		idx := i - first
		if idx >= len(params) {
			args = append(args, reflect.Zero(t.In(i)))
			continue
		}
		v, err := convertParam(params[idx], t.In(i))
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", idx, err)
		}
		args = append(args, v)
	}

	if t.IsVariadic() {
		elemType := t.In(numIn - 1).Elem()
		for idx := fixed - first; idx < len(params); idx++ {
			v, err := convertParam(params[idx], elemType)
			if err != nil {
				return nil, fmt.Errorf("param %d: %w", idx, err)
			}
			args = append(args, v)
		}
	}
	return args, nil
}

// convertParam turns a loosely typed param (as decoded from JSON or HCL) into
// a value of type t.
func convertParam(p any, t reflect.Type) (reflect.Value, error) {
	if p == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(p)
	if v.Type().AssignableTo(t) {
		return v, nil
	}

	switch {
	case isNumber(v.Kind()) && isNumber(t.Kind()):
		if !fitsNumber(v, t) {
			return reflect.Value{}, fmt.Errorf("cannot use %v as %s without losing precision", v.Interface(), t)
		}
		return v.Convert(t), nil
	case v.Kind() == reflect.String && t.Kind() == reflect.String:
		return v.Convert(t), nil
	case v.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		return v.Convert(t), nil
	}

	// Composite params arrive as generic maps and slices; round-trip them
	// through JSON into the declared type.
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
		raw, err := json.Marshal(p)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %T as %s: %w", p, t, err)
		}
		target := reflect.New(t)
		if err := json.Unmarshal(raw, target.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("cannot use %T as %s: %w", p, t, err)
		}
		return target.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", p, t)
}

// fitsNumber reports whether the number v converts to t without wrapping,
// truncation or overflow.
func fitsNumber(v reflect.Value, t reflect.Type) bool {
	zero := reflect.Zero(t)
	switch {
	case isSigned(t.Kind()):
		switch {
		case isSigned(v.Kind()):
			return !zero.OverflowInt(v.Int())
		case isUnsigned(v.Kind()):
			return v.Uint() <= math.MaxInt64 && !zero.OverflowInt(int64(v.Uint()))
		default:
			f := v.Float()
			return f == math.Trunc(f) && f >= -0x1p63 && f < 0x1p63 && !zero.OverflowInt(int64(f))
		}
	case isUnsigned(t.Kind()):
		switch {
		case isSigned(v.Kind()):
			return v.Int() >= 0 && !zero.OverflowUint(uint64(v.Int()))
		case isUnsigned(v.Kind()):
			return !zero.OverflowUint(v.Uint())
		default:
			f := v.Float()
			return f == math.Trunc(f) && f >= 0 && f < 0x1p64 && !zero.OverflowUint(uint64(f))
		}
	default:
		// Integers must be exactly representable as float64.
		switch {
		case isSigned(v.Kind()):
			i := v.Int()
			f := float64(i)
			return f < 0x1p63 && int64(f) == i && !zero.OverflowFloat(f)
		case isUnsigned(v.Kind()):
			u := v.Uint()
			f := float64(u)
			return f < 0x1p64 && uint64(f) == u && !zero.OverflowFloat(f)
		default:
			return !zero.OverflowFloat(v.Float())
		}
	}
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumber(k reflect.Kind) bool {
	return isInteger(k) || k == reflect.Float32 || k == reflect.Float64
}

func isInteger(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k)
}
