// Package print renders key/value maps as sorted, quoted lines. It is
// registered as the "print" module.
package print

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/specialistvlad/modfactory/internal/registry"
)

// Name is the module name print registers under.
const Name = "print"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Lines renders values as `key = "value"` lines sorted by key, each indented
// by indent spaces.
func Lines(ctx context.Context, values map[string]string, indent int) string {
	ctxlog.FromContext(ctx).Debug("Printing input.", "keys", len(values))
	if values == nil {
		return strings.Repeat(" ", indent) + "(null)\n"
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s%s = %q\n", strings.Repeat(" ", indent), k, values[k])
	}
	return b.String()
}

// Register registers the module.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModule(Name, factory.Exports{
		"default": Lines,
		"lines":   Lines,
	})
}
