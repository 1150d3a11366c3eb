package factory

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/modfactory/internal/ctxlog"
)

// defaultFunction is called when a definition names neither a function nor a
// constructor.
const defaultFunction = "default"

// Result carries a loaded value and whether it was produced through a
// Deferred.
type Result[T any] struct {
	Value    T
	WasAsync bool
}

// LoadFromModule resolves def.ModuleName and produces an instance by calling
// the named factory function or constructor, then validates it against
// def.LoadSchema. def is never modified.
func (f *Factory) LoadFromModule(ctx context.Context, def ModuleDefinition) (Result[any], error) {
	ctx = f.withLogger(ctx)
	mod, err := f.resolve(ctx, def)
	if err != nil {
		return Result[any]{}, err
	}

	functionName := def.FunctionName
	if functionName == "" && def.ConstructorName == "" {
		functionName = defaultFunction
	}

	var (
		value    any
		wasAsync bool
	)
	switch {
	case functionName != "":
		value, wasAsync, err = f.invokeFactory(ctx, mod, def.ModuleName, functionName, def.Params)
	case def.ConstructorName != "":
		value, err = f.construct(ctx, mod, def.ModuleName, def.ConstructorName, def.Params)
	default:
		err = f.fail(ctx, fmt.Errorf("%w: %s", ErrMissingFactoryReference, def.ModuleName))
	}
	if err != nil {
		return Result[any]{WasAsync: wasAsync}, err
	}

	value, err = f.validate(ctx, def.ModuleName, def, value)
	if err != nil {
		return Result[any]{WasAsync: wasAsync}, err
	}
	f.log(ctx).DebugContext(ctx, "Module instance loaded.", "module", def.ModuleName, "async", wasAsync)
	return Result[any]{Value: value, WasAsync: wasAsync}, nil
}

// LoadFromModuleAsync runs LoadFromModule on its own goroutine.
func (f *Factory) LoadFromModuleAsync(ctx context.Context, def ModuleDefinition) *Future[Result[any]] {
	return Go(func() (Result[any], error) {
		return f.LoadFromModule(ctx, def)
	})
}

// LoadFromModule is the typed form of (*Factory).LoadFromModule. A value that
// is not a T is reported as ErrContractViolation.
func LoadFromModule[T any](ctx context.Context, f *Factory, def ModuleDefinition) (Result[T], error) {
	res, err := f.LoadFromModule(ctx, def)
	if err != nil {
		return Result[T]{WasAsync: res.WasAsync}, err
	}
	v, err := as[T](res.Value)
	if err != nil {
		return Result[T]{WasAsync: res.WasAsync}, f.fail(ctx, fmt.Errorf("%s: %w", def.ModuleName, err))
	}
	return Result[T]{Value: v, WasAsync: res.WasAsync}, nil
}

func (f *Factory) invokeFactory(ctx context.Context, mod Module, moduleName, name string, params []any) (any, bool, error) {
	export, ok := Lookup(mod, name)
	fn := reflect.ValueOf(export)
	if !ok || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, false, f.fail(ctx, fmt.Errorf("%w: %s has no function %q", ErrInvalidFactoryReference, moduleName, name))
	}
	if err := checkResults(fn.Type()); err != nil {
		return nil, false, f.fail(ctx, fmt.Errorf("%w: %s.%s %w", ErrInvalidFactoryReference, moduleName, name, err))
	}

	f.log(ctx).Log(ctx, ctxlog.LevelTrace, "Invoking factory function.", "module", moduleName, "function", name, "params", len(params))
	out, err := call(ctx, fn, params)
	if err != nil {
		return nil, false, f.fail(ctx, fmt.Errorf("%s.%s: %w", moduleName, name, err))
	}

	d, ok := out.(Deferred)
	if !ok {
		return out, false, nil
	}
	out, err = d.AwaitValue(ctx)
	if err != nil {
		return nil, true, f.fail(ctx, fmt.Errorf("%w: %s.%s: %w", ErrFactoryInvocation, moduleName, name, err))
	}
	return out, true, nil
}

func (f *Factory) construct(ctx context.Context, mod Module, moduleName, name string, params []any) (any, error) {
	export, ok := Lookup(mod, name)
	if !ok {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s has no constructor %q", ErrInvalidConstructorReference, moduleName, name))
	}

	var (
		out any
		err error
	)
	switch c := export.(type) {
	case Constructor:
		out, err = c.construct(ctx, params)
	case reflect.Type:
		out, err = instantiate(c, params)
	default:
		return nil, f.fail(ctx, fmt.Errorf("%w: %s.%s is a %T", ErrInvalidConstructorReference, moduleName, name, export))
	}
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%s.%s: %w", moduleName, name, err))
	}
	return out, nil
}

// as converts v to T. A nil v converts to the zero value of nilable types.
func as[T any](v any) (T, error) {
	var zero T
	if t, ok := v.(T); ok {
		return t, nil
	}
	if v == nil {
		switch reflect.TypeFor[T]().Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return zero, nil
		}
	}
	return zero, fmt.Errorf("%w: got %T, want %s", ErrContractViolation, v, reflect.TypeFor[T]())
}
