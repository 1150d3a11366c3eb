package factory

import (
	"context"
	"fmt"
)

// validate routes value through the load schema of def. It returns value
// unchanged when it is accepted; a rejected value is never returned.
func (f *Factory) validate(ctx context.Context, moduleName string, def ModuleDefinition, value any) (any, error) {
	var (
		check  Check
		schema string
	)
	switch s := def.LoadSchema.(type) {
	case nil:
		return value, nil
	case TypeOf:
		if !s.valid() {
			return nil, f.fail(ctx, fmt.Errorf("%w: %d is not a primitive type tag for %s", ErrConfiguration, uint8(s), moduleName))
		}
		return f.validateTypeOf(ctx, moduleName, def, s, value)
	case *LoadSchema:
		if s == nil {
			return value, nil
		}
		compiled, err := f.compiler.Compile(ctx, s.ValidationSchema, CompileOptions{
			UseNewCheckerFunction: s.UseNewCheckerFunction,
			Async:                 s.Async,
		})
		if err != nil {
			return nil, f.fail(ctx, fmt.Errorf("compiling load schema for %s: %w", moduleName, err))
		}
		check, schema = compiled, s.ValidationSchema
	case SyncCheck:
		if s == nil {
			return value, nil
		}
		check, schema = s, "compiled"
	case AsyncCheck:
		if s == nil {
			return value, nil
		}
		check, schema = s, "compiled"
	default:
		return nil, f.fail(ctx, fmt.Errorf("%w: unsupported load schema %T for %s", ErrConfiguration, s, moduleName))
	}

	var (
		errs []ValidationError
		err  error
		mode string
	)
	switch c := check.(type) {
	case SyncCheck:
		mode = "Sync"
		errs, err = runSync(c, value)
	case AsyncCheck:
		mode = "Async"
		fut := c(ctx, value)
		if fut == nil {
			return nil, f.fail(ctx, fmt.Errorf("%w: async check for %s returned no future", ErrConfiguration, moduleName))
		}
		errs, err = fut.Await(ctx)
	default:
		return nil, f.fail(ctx, fmt.Errorf("%w: compiler returned unsupported check %T", ErrConfiguration, check))
	}
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%s validation of %s could not run: %w", mode, moduleName, err))
	}
	if len(errs) == 0 {
		return value, nil
	}

	failure := &ValidationFailure{
		ModuleName: moduleName,
		Definition: def,
		Schema:     schema,
		Value:      value,
		Errors:     errs,
		kind:       ErrSchemaValidation,
		mode:       mode,
	}
	f.warnFailure(ctx, failure)
	return nil, f.fail(ctx, failure)
}

func (f *Factory) validateTypeOf(ctx context.Context, moduleName string, def ModuleDefinition, t TypeOf, value any) (any, error) {
	actual := TypeTag(value)
	if actual == t.Tag() {
		return value, nil
	}
	failure := &ValidationFailure{
		ModuleName: moduleName,
		Definition: def,
		Schema:     "TypeOf",
		Value:      value,
		Errors: []ValidationError{{
			Field:    "n/a",
			Actual:   actual,
			Expected: t.Tag(),
			Message:  fmt.Sprintf("returned instance failed 'typeof instance === %q'", t.Tag()),
			Type:     "n/a",
		}},
		kind: ErrTypeMismatch,
		mode: "TypeOf",
	}
	f.warnFailure(ctx, failure)
	return nil, f.fail(ctx, failure)
}

func (f *Factory) warnFailure(ctx context.Context, failure *ValidationFailure) {
	f.log(ctx).WarnContext(ctx, failure.mode+" validation failed.",
		"moduleDef", failure.Definition,
		"moduleName", failure.ModuleName,
		"schema", failure.Schema,
		"obj", failure.Value,
		"result", failure.Errors,
	)
}

// runSync reports a panicking check as an error.
func runSync(check SyncCheck, value any) (errs []ValidationError, err error) {
	defer func() {
		if r := recover(); r != nil {
			errs, err = nil, fmt.Errorf("check panicked: %v", r)
		}
	}()
	return check(value)
}
