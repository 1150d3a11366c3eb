package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/specialistvlad/modfactory/internal/schema"
)

// isExprDefined reports whether an optional attribute was written in the
// source. gohcl fills omitted expression fields with a zero-width
// placeholder, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte
	ctxlog.FromContext(ctx).Log(ctx, ctxlog.LevelTrace, "Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// translateModule converts a decoded `module` block into a config.Entry.
func translateModule(ctx context.Context, m *schema.Module, source string) (*config.Entry, error) {
	kind, err := config.ParseLoaderKind(m.Loader)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", m.Name, err)
	}

	def := factory.ModuleDefinition{
		ModuleName:      config.ResolveRelative(m.ModuleName, source),
		FunctionName:    m.FunctionName,
		ConstructorName: m.ConstructorName,
		PropertyName:    m.PropertyName,
	}

	if isExprDefined(ctx, m.Params, "params") {
		params, err := translateParams(m.Params)
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", m.Name, err)
		}
		def.Params = params
	}

	switch {
	case m.TypeOf != "" && m.LoadSchema != nil:
		return nil, fmt.Errorf("%w: module %q sets both type_of and load_schema", factory.ErrConfiguration, m.Name)
	case m.TypeOf != "":
		typeOf, err := factory.ParseTypeOf(strings.TrimSpace(m.TypeOf))
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", m.Name, err)
		}
		def.LoadSchema = typeOf
	case m.LoadSchema != nil:
		def.LoadSchema = &factory.LoadSchema{
			ValidationSchema:      m.LoadSchema.ValidationSchema,
			UseNewCheckerFunction: m.LoadSchema.UseNewCheckerFunction,
			Async:                 m.LoadSchema.Async,
		}
	}

	return &config.Entry{
		Name:       m.Name,
		Loader:     kind,
		Definition: def,
		Source:     source,
	}, nil
}

// translateParams evaluates the params expression, which must be a list or
// tuple, into positional Go values.
func translateParams(expr hcl.Expression) ([]any, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid params: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() {
		return nil, fmt.Errorf("%w: params must be a list, got %s", factory.ErrConfiguration, ty.FriendlyName())
	}
	native, err := ctyToNative(val)
	if err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return native.([]any), nil
}
