package factory

import (
	"context"
	"fmt"

	"github.com/specialistvlad/modfactory/internal/cueschema"
)

// CompileOptions carries the LoadSchema flags through to a SchemaCompiler.
type CompileOptions struct {
	UseNewCheckerFunction bool
	Async                 bool
}

// SchemaCompiler turns a declarative schema into a Check.
type SchemaCompiler interface {
	Compile(ctx context.Context, source string, opts CompileOptions) (Check, error)
}

// CUECompiler is the default SchemaCompiler. Schemas are CUE source; with
// UseNewCheckerFunction the schema is closed.
type CUECompiler struct{}

// Compile implements SchemaCompiler.
func (CUECompiler) Compile(_ context.Context, source string, opts CompileOptions) (Check, error) {
	return compileCUE(source, opts)
}

func compileCUE(source string, opts CompileOptions) (Check, error) {
	checker, err := cueschema.Compile(source, cueschema.WithClosed(opts.UseNewCheckerFunction))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	check := SyncCheck(func(v any) ([]ValidationError, error) {
		violations, err := checker.Check(v)
		if err != nil {
			return nil, err
		}
		return fromViolations(violations), nil
	})
	if !opts.Async {
		return check, nil
	}
	return AsyncCheck(func(_ context.Context, v any) *Future[[]ValidationError] {
		return Go(func() ([]ValidationError, error) {
			return check(v)
		})
	}), nil
}

func fromViolations(violations []cueschema.Violation) []ValidationError {
	if len(violations) == 0 {
		return nil
	}
	errs := make([]ValidationError, 0, len(violations))
	for _, v := range violations {
		field := v.Field
		if field == "" {
			field = "<root>"
		}
		e := ValidationError{
			Field:   field,
			Actual:  v.Actual,
			Message: v.Message,
			Type:    v.Code,
		}
		if v.Expected != "" {
			e.Expected = v.Expected
		}
		errs = append(errs, e)
	}
	return errs
}
