package factory

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned (wrapped) by the loaders. Match them with errors.Is.
var (
	// ErrDefinitionStructure reports a malformed ModuleDefinition.
	ErrDefinitionStructure = errors.New("malformed module definition")
	// ErrDefinitionConflict reports mutually exclusive references set together.
	ErrDefinitionConflict = fmt.Errorf("%w: conflicting references", ErrDefinitionStructure)
	// ErrDefinitionIncomplete reports a definition missing a required reference.
	ErrDefinitionIncomplete = fmt.Errorf("%w: missing required reference", ErrDefinitionStructure)

	// ErrModuleNotFound is returned by an Importer that does not know a target.
	// Importers chains fall through to the next importer on it.
	ErrModuleNotFound = errors.New("module not found")
	// ErrModuleResolution reports a module that could not be located or loaded.
	ErrModuleResolution = errors.New("module resolution failed")

	ErrInvalidFactoryReference     = errors.New("reference does not resolve to a function")
	ErrInvalidConstructorReference = errors.New("reference does not resolve to a constructor")
	ErrMissingFactoryReference     = errors.New("neither function nor constructor reference provided")
	ErrFactoryInvocation           = errors.New("factory invocation failed")

	// ErrContractViolation reports a resolved export that did not produce the
	// shape the caller required, e.g. a non-string for JSON loading.
	ErrContractViolation = errors.New("contract violation")

	ErrTypeMismatch     = errors.New("type validation failed")
	ErrSchemaValidation = errors.New("schema validation failed")

	ErrResourceLoad = errors.New("resource load failed")

	ErrConfiguration  = errors.New("configuration error")
	ErrImmutableState = errors.New("immutable state")
)

// ValidationError is one structured entry produced by a failed check.
type ValidationError struct {
	Field    string `json:"field"`
	Actual   any    `json:"actual,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Message  string `json:"message"`
	Type     string `json:"type"`
}

// String implements the fmt.Stringer interface for ValidationError.
func (e ValidationError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationFailure is the error returned when a produced value is rejected
// by its load schema. It unwraps to ErrTypeMismatch or ErrSchemaValidation.
type ValidationFailure struct {
	ModuleName string
	Definition ModuleDefinition
	// Schema names the schema that was applied: "TypeOf", "compiled", or the
	// declarative source of a LoadSchema.
	Schema string
	Value  any
	Errors []ValidationError

	kind error
	mode string
}

// Error implements the error interface for ValidationFailure.
func (f *ValidationFailure) Error() string {
	msgs := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		msgs = append(msgs, e.String())
	}
	return fmt.Sprintf("%s validation failed for %s: %s", f.mode, f.ModuleName, strings.Join(msgs, "; "))
}

// Unwrap returns the sentinel classifying the failure.
func (f *ValidationFailure) Unwrap() error {
	return f.kind
}
