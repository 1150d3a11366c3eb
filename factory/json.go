package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/afero"
)

// LoadJSONResource reads the JSON document at def.ModuleName (a path or file
// URL) from the factory filesystem and validates it against def.LoadSchema.
func (f *Factory) LoadJSONResource(ctx context.Context, def ModuleDefinition) (any, error) {
	ctx = f.withLogger(ctx)
	name := strings.TrimSpace(def.ModuleName)
	if name == "" {
		return nil, f.fail(ctx, fmt.Errorf("%w: moduleName is required", ErrDefinitionIncomplete))
	}
	path, ok := FilePath(name)
	if !ok {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s is not a file path or file URL", ErrResourceLoad, name))
	}

	f.log(ctx).DebugContext(ctx, "Reading JSON resource.", "path", path)
	raw, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %w", ErrResourceLoad, err))
	}
	doc, err := parseJSON(raw)
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s: %w", ErrResourceLoad, path, err))
	}
	return f.validate(ctx, def.ModuleName, def, doc)
}

// LoadJSONFromModule obtains a JSON string from a module, either by calling
// the function def.FunctionName with no arguments or by reading the property
// def.PropertyName, then parses and validates it. Exactly one of the two must
// be set; this is checked before the module is imported.
func (f *Factory) LoadJSONFromModule(ctx context.Context, def ModuleDefinition) (any, error) {
	ctx = f.withLogger(ctx)
	functionName := strings.TrimSpace(def.FunctionName)
	propertyName := strings.TrimSpace(def.PropertyName)

	switch {
	case strings.TrimSpace(def.ModuleName) == "" || (functionName == "" && propertyName == ""):
		return nil, f.fail(ctx, fmt.Errorf("%w: moduleName [%s] and either functionName [%s] or propertyName [%s] are required",
			ErrDefinitionIncomplete, def.ModuleName, def.FunctionName, def.PropertyName))
	case functionName != "" && propertyName != "":
		return nil, f.fail(ctx, fmt.Errorf("%w: only one of functionName %s or propertyName %s may be specified for module %s",
			ErrDefinitionConflict, def.FunctionName, def.PropertyName, def.ModuleName))
	}

	mod, err := f.resolve(ctx, def)
	if err != nil {
		return nil, err
	}

	var (
		resource any
		ref      string
	)
	if functionName != "" {
		ref = functionName
		export, ok := Lookup(mod, functionName)
		fn := reflect.ValueOf(export)
		if !ok || fn.Kind() != reflect.Func || fn.IsNil() {
			return nil, f.fail(ctx, fmt.Errorf("%w: module property %s.%s does not point to a function", ErrInvalidFactoryReference, def.ModuleName, functionName))
		}
		if err := checkResults(fn.Type()); err != nil {
			return nil, f.fail(ctx, fmt.Errorf("%w: %s.%s %w", ErrInvalidFactoryReference, def.ModuleName, functionName, err))
		}
		resource, err = call(ctx, fn, nil)
		if err != nil {
			return nil, f.fail(ctx, fmt.Errorf("%s.%s: %w", def.ModuleName, functionName, err))
		}
	} else {
		ref = propertyName
		resource, _ = Lookup(mod, propertyName)
	}

	if d, ok := resource.(Deferred); ok {
		resource, err = d.AwaitValue(ctx)
		if err != nil {
			return nil, f.fail(ctx, fmt.Errorf("%w: %s.%s: %w", ErrFactoryInvocation, def.ModuleName, ref, err))
		}
	}

	rv := reflect.ValueOf(resource)
	if !rv.IsValid() || rv.Kind() != reflect.String {
		return nil, f.fail(ctx, fmt.Errorf("%w: module %s.%s does not produce a string, got %T",
			ErrContractViolation, def.ModuleName, ref, resource))
	}
	doc, err := parseJSON([]byte(rv.String()))
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s.%s: %w", ErrResourceLoad, def.ModuleName, ref, err))
	}
	return f.validate(ctx, def.ModuleName, def, doc)
}

// LoadJSONResource is the typed form of (*Factory).LoadJSONResource.
func LoadJSONResource[T any](ctx context.Context, f *Factory, def ModuleDefinition) (T, error) {
	doc, err := f.LoadJSONResource(ctx, def)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeDocument[T](ctx, f, def.ModuleName, doc)
}

// LoadJSONFromModule is the typed form of (*Factory).LoadJSONFromModule.
func LoadJSONFromModule[T any](ctx context.Context, f *Factory, def ModuleDefinition) (T, error) {
	doc, err := f.LoadJSONFromModule(ctx, def)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeDocument[T](ctx, f, def.ModuleName, doc)
}

func decodeDocument[T any](ctx context.Context, f *Factory, moduleName string, doc any) (T, error) {
	if v, ok := doc.(T); ok {
		return v, nil
	}
	var out T
	raw, err := json.Marshal(doc)
	if err == nil {
		err = json.Unmarshal(raw, &out)
	}
	if err != nil {
		var zero T
		return zero, f.fail(ctx, fmt.Errorf("%w: %s: decoding into %T: %w", ErrContractViolation, moduleName, out, err))
	}
	return out, nil
}

// parseJSON decodes exactly one JSON document.
func parseJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON document")
	}
	return v, nil
}
