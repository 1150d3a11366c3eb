package factory

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"
)

// ModuleDefinition describes one load request: which module to resolve, which
// export inside it builds the value, and how the value is validated.
type ModuleDefinition struct {
	// ModuleName is a file path, file URL, relative path (resolved against the
	// working directory) or an opaque package-style name.
	ModuleName string `json:"moduleName"`

	// At most one of the three references may be set. Each may be a dotted
	// path into the module's exports, e.g. "foo.bar".
	FunctionName    string `json:"functionName,omitempty"`
	ConstructorName string `json:"constructorName,omitempty"`
	PropertyName    string `json:"propertyName,omitempty"`

	// Params are positional arguments for a factory function or constructor.
	Params []any `json:"paramsArray,omitempty"`

	// LoadSchema validates the produced value. nil skips validation.
	LoadSchema Schema `json:"-"`
}

// Schema is the post-load validation strategy of a ModuleDefinition. It is a
// closed union of TypeOf, *LoadSchema, SyncCheck and AsyncCheck.
type Schema interface {
	isSchema()
}

// Check is a compiled check function: either a SyncCheck or an AsyncCheck.
type Check interface {
	Schema
	isCheck()
}

// LoadSchema is a declarative schema that still has to be compiled into a
// Check by the factory's SchemaCompiler.
type LoadSchema struct {
	// ValidationSchema is the declarative description of the value (CUE
	// source with the default compiler).
	ValidationSchema string `json:"validationSchema"`
	// UseNewCheckerFunction is handed to the compiler; the CUE compiler treats
	// the schema as closed, rejecting fields it does not name.
	UseNewCheckerFunction bool `json:"useNewCheckerFunction,omitempty"`
	// Async asks the compiler for an AsyncCheck.
	Async bool `json:"async,omitempty"`
}

func (*LoadSchema) isSchema() {}

// SyncCheck validates v immediately. An empty result means v is valid.
type SyncCheck func(v any) ([]ValidationError, error)

func (SyncCheck) isSchema() {}
func (SyncCheck) isCheck()  {}

// AsyncCheck validates v and settles the returned future with the list of
// errors, empty when v is valid.
type AsyncCheck func(ctx context.Context, v any) *Future[[]ValidationError]

func (AsyncCheck) isSchema() {}
func (AsyncCheck) isCheck()  {}

func (d ModuleDefinition) references() int {
	n := 0
	for _, ref := range []string{d.FunctionName, d.ConstructorName, d.PropertyName} {
		if ref != "" {
			n++
		}
	}
	return n
}

// IsModuleDefinition reports whether d names a module and sets at most one of
// FunctionName, ConstructorName and PropertyName.
func IsModuleDefinition(d ModuleDefinition) bool {
	return d.ModuleName != "" && d.references() <= 1
}

// IsConstrainedModuleDefinition reports whether d is a module definition with
// exactly one reference set.
func IsConstrainedModuleDefinition(d ModuleDefinition) bool {
	return IsModuleDefinition(d) && d.references() == 1
}

//go:embed definition.cue
var definitionSchema string

var definitionCheck = sync.OnceValue(func() Check {
	check, err := compileCUE(definitionSchema, CompileOptions{UseNewCheckerFunction: true})
	if err != nil {
		panic(fmt.Sprintf("factory: module definition schema does not compile: %v", err))
	}
	return check
})

// ValidateModuleDefinition checks the structure of d and returns every
// violation found; nil means d is well formed. It never defers: the
// definition schema is compiled synchronously, and an asynchronous checker
// here is a programming error that panics.
func ValidateModuleDefinition(d ModuleDefinition) []ValidationError {
	check, ok := definitionCheck().(SyncCheck)
	if !ok {
		panic("factory: module definition check cannot be asynchronous")
	}
	errs, err := check(describeDefinition(d))
	if err != nil {
		errs = append(errs, ValidationError{Field: "<root>", Message: err.Error(), Type: "invalid"})
	}
	if d.references() > 1 {
		errs = append(errs, ValidationError{
			Field:    "functionName|constructorName|propertyName",
			Actual:   d.references(),
			Expected: "at most one",
			Message:  "only one of functionName, constructorName or propertyName may be set",
			Type:     "conflict",
		})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// describeDefinition flattens d into plain data the definition schema can be
// checked against. Functions and params are reduced to their shape.
func describeDefinition(d ModuleDefinition) map[string]any {
	desc := map[string]any{"moduleName": d.ModuleName}
	if d.FunctionName != "" {
		desc["functionName"] = strings.TrimSpace(d.FunctionName)
	}
	if d.ConstructorName != "" {
		desc["constructorName"] = strings.TrimSpace(d.ConstructorName)
	}
	if d.PropertyName != "" {
		desc["propertyName"] = strings.TrimSpace(d.PropertyName)
	}
	if d.Params != nil {
		desc["paramsArray"] = make([]any, len(d.Params))
	}
	switch s := d.LoadSchema.(type) {
	case nil:
	case TypeOf:
		desc["loadSchema"] = map[string]any{"kind": "typeOf", "tag": s.Tag()}
	case *LoadSchema:
		if s == nil {
			break
		}
		desc["loadSchema"] = map[string]any{
			"kind":                  "loadSchema",
			"validationSchema":      s.ValidationSchema,
			"useNewCheckerFunction": s.UseNewCheckerFunction,
			"async":                 s.Async,
		}
	case SyncCheck:
		desc["loadSchema"] = map[string]any{"kind": "syncCheck"}
	case AsyncCheck:
		desc["loadSchema"] = map[string]any{"kind": "asyncCheck"}
	}
	return desc
}
