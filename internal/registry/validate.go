package registry

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
)

// ValidateEntries performs a parity check between manifest entries and the
// registered Go modules without invoking anything: every referenced module
// must be registered and every reference must point at an export of the
// right kind for the entry's loader.
func (r *Registry) ValidateEntries(ctx context.Context, entries map[string]*config.Entry) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range slices.Sorted(maps.Keys(entries)) {
		entry := entries[name]
		def := entry.Definition
		if entry.Loader == config.LoaderJSONResource {
			logger.Debug("Skipping parity check for file resource.", "entry", name, "path", def.ModuleName)
			continue
		}

		exports, ok := r.Lookup(def.ModuleName)
		if !ok {
			errs = append(errs, fmt.Sprintf("entry '%s': module '%s' is not registered", name, def.ModuleName))
			continue
		}

		switch entry.Loader {
		case config.LoaderInstance:
			errs = append(errs, checkInstance(name, exports, def)...)
		case config.LoaderJSONModule:
			errs = append(errs, checkJSONModule(name, exports, def)...)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: registry validation failed:\n- %s", factory.ErrConfiguration, strings.Join(errs, "\n- "))
	}
	return nil
}

func checkInstance(entry string, exports factory.Exports, def factory.ModuleDefinition) []string {
	functionName := def.FunctionName
	if functionName == "" && def.ConstructorName == "" {
		functionName = "default"
	}
	if functionName != "" {
		return checkFunction(entry, exports, def.ModuleName, functionName)
	}

	export, ok := factory.Lookup(exports, def.ConstructorName)
	if !ok {
		return []string{fmt.Sprintf("entry '%s': module '%s' has no export '%s'", entry, def.ModuleName, def.ConstructorName)}
	}
	switch export.(type) {
	case factory.Constructor, reflect.Type:
		return nil
	default:
		return []string{fmt.Sprintf("entry '%s': export '%s.%s' is a %T, not a constructor", entry, def.ModuleName, def.ConstructorName, export)}
	}
}

func checkJSONModule(entry string, exports factory.Exports, def factory.ModuleDefinition) []string {
	functionName := strings.TrimSpace(def.FunctionName)
	propertyName := strings.TrimSpace(def.PropertyName)
	switch {
	case functionName != "" && propertyName != "":
		return []string{fmt.Sprintf("entry '%s': only one of function_name or property_name may be set", entry)}
	case functionName != "":
		return checkFunction(entry, exports, def.ModuleName, functionName)
	case propertyName != "":
		if _, ok := factory.Lookup(exports, propertyName); !ok {
			return []string{fmt.Sprintf("entry '%s': module '%s' has no export '%s'", entry, def.ModuleName, propertyName)}
		}
		return nil
	default:
		return []string{fmt.Sprintf("entry '%s': one of function_name or property_name is required", entry)}
	}
}

func checkFunction(entry string, exports factory.Exports, moduleName, functionName string) []string {
	export, ok := factory.Lookup(exports, functionName)
	if !ok {
		return []string{fmt.Sprintf("entry '%s': module '%s' has no export '%s'", entry, moduleName, functionName)}
	}
	if v := reflect.ValueOf(export); v.Kind() != reflect.Func || v.IsNil() {
		return []string{fmt.Sprintf("entry '%s': export '%s.%s' is a %T, not a function", entry, moduleName, functionName, export)}
	}
	return nil
}
