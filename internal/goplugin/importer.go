// Package goplugin resolves file targets ending in .so by opening them as Go
// plugins built with -buildmode=plugin.
package goplugin

import (
	"context"
	"fmt"
	"plugin"
	"reflect"
	"strings"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
)

// Extension is the file extension of targets this importer handles.
const Extension = ".so"

// Importer opens Go plugins. Targets that are not .so files fail with
// factory.ErrModuleNotFound so that other importers can be tried.
type Importer struct {
	open func(path string) (*plugin.Plugin, error)
}

// New returns a plugin Importer.
func New() *Importer {
	return &Importer{open: plugin.Open}
}

// Handles reports whether target names a plugin file.
func Handles(target string) bool {
	path, ok := factory.FilePath(target)
	return ok && strings.HasSuffix(path, Extension)
}

// Import implements factory.Importer.
func (i *Importer) Import(ctx context.Context, target string) (factory.Module, error) {
	if !Handles(target) {
		return nil, fmt.Errorf("%w: %s is not a plugin file", factory.ErrModuleNotFound, target)
	}
	path, _ := factory.FilePath(target)

	ctxlog.FromContext(ctx).Debug("Opening Go plugin.", "path", path)
	p, err := i.open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plugin %s: %w", path, err)
	}
	return module{p: p}, nil
}

// module exposes the exported symbols of a plugin. Variables are returned by
// value rather than as the pointer plugin.Lookup hands out.
type module struct {
	p *plugin.Plugin
}

// Export implements factory.Module.
func (m module) Export(name string) (any, bool) {
	sym, err := m.p.Lookup(name)
	if err != nil {
		return nil, false
	}
	v := reflect.ValueOf(sym)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return v.Elem().Interface(), true
	}
	return sym, true
}
