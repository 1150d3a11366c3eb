package factory

import (
	"reflect"
	"strconv"
	"strings"
)

// Lookup resolves a dotted path ("foo.bar.0.baz") against a module. The first
// segment names an export; later segments walk maps with string keys, struct
// fields (by name or json tag), methods, and slice or array indices. Pointers
// and interfaces are followed transparently.
func Lookup(mod Module, path string) (any, bool) {
	segments := strings.Split(strings.TrimSpace(path), ".")
	if len(segments) == 0 || segments[0] == "" {
		return nil, false
	}
	v, ok := mod.Export(segments[0])
	if !ok {
		return nil, false
	}
	for _, seg := range segments[1:] {
		if seg == "" {
			return nil, false
		}
		v, ok = child(v, seg)
		if !ok {
			return nil, false
		}
	}
	return v, true
}

func child(parent any, name string) (any, bool) {
	if m, ok := parent.(Module); ok {
		return m.Export(name)
	}

	rv := reflect.ValueOf(parent)
	if !rv.IsValid() {
		return nil, false
	}
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		if f, ok := structField(rv, name); ok {
			return f.Interface(), true
		}
		if rv.CanAddr() {
			if m := rv.Addr().MethodByName(name); m.IsValid() {
				return m.Interface(), true
			}
		}
		return nil, false
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	default:
		return nil, false
	}
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if field.Name == name || (tag != "" && tag != "-" && tag == name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
