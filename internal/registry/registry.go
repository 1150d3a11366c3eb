package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps module names to their exports. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]factory.Exports
}

// New creates a Registry and registers the given modules.
func New(modules ...Module) *Registry {
	r := &Registry{modules: make(map[string]factory.Exports)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterModule registers exports under name. Relative names are stored as
// the file URL they resolve to, matching what the factory asks for. It
// panics on a duplicate name.
func (r *Registry) RegisterModule(name string, exports factory.Exports) {
	key := normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[key]; exists {
		panic(fmt.Sprintf("module with name '%s' already registered", name))
	}
	slog.Debug("Registering module.", "name", name, "exports", len(exports))
	r.modules[key] = exports
}

// Lookup returns the exports registered under name.
func (r *Registry) Lookup(name string) (factory.Exports, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exports, ok := r.modules[normalize(name)]
	return exports, ok
}

// Names returns the registered module names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Import implements factory.Importer. Unknown targets fail with
// factory.ErrModuleNotFound so that an Importers chain can fall through.
func (r *Registry) Import(ctx context.Context, target string) (factory.Module, error) {
	exports, ok := r.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", factory.ErrModuleNotFound, target)
	}
	ctxlog.FromContext(ctx).Log(ctx, ctxlog.LevelTrace, "Imported registered module.", "target", target)
	return exports, nil
}

func normalize(name string) string {
	target, err := factory.ToAbsoluteLoadTarget(name)
	if err != nil {
		return name
	}
	return target
}
