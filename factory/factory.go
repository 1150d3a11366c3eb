package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/spf13/afero"
)

// Module is a resolved module: a set of named exports.
type Module interface {
	// Export returns the top-level export called name.
	Export(name string) (any, bool)
}

// Exports is a map-backed Module.
type Exports map[string]any

// Export implements Module.
func (e Exports) Export(name string) (any, bool) {
	v, ok := e[name]
	return v, ok
}

// Importer resolves a load target (a file URL, path, or package-style name)
// to a Module.
type Importer interface {
	Import(ctx context.Context, target string) (Module, error)
}

// ImporterFunc adapts a function to the Importer interface.
type ImporterFunc func(ctx context.Context, target string) (Module, error)

// Import implements Importer.
func (f ImporterFunc) Import(ctx context.Context, target string) (Module, error) {
	return f(ctx, target)
}

// Importers tries each importer in order. An importer returning
// ErrModuleNotFound passes the target on to the next one.
type Importers []Importer

// Import implements Importer.
func (is Importers) Import(ctx context.Context, target string) (Module, error) {
	for _, imp := range is {
		mod, err := imp.Import(ctx, target)
		if errors.Is(err, ErrModuleNotFound) {
			continue
		}
		return mod, err
	}
	return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, target)
}

// Factory loads values described by ModuleDefinitions. A Factory is safe for
// concurrent use as long as its collaborators are.
type Factory struct {
	importer Importer
	fs       afero.Fs
	compiler SchemaCompiler
	logger   *slog.Logger
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFs sets the filesystem JSON resources are read from. The default is the
// OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(f *Factory) {
		if fs != nil {
			f.fs = fs
		}
	}
}

// WithCompiler sets the compiler used for LoadSchema descriptors. The default
// is CUECompiler.
func WithCompiler(c SchemaCompiler) Option {
	return func(f *Factory) {
		if c != nil {
			f.compiler = c
		}
	}
}

// New returns a Factory resolving modules through importer.
func New(importer Importer, opts ...Option) *Factory {
	f := &Factory{
		importer: importer,
		fs:       afero.NewOsFs(),
		compiler: CUECompiler{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Logger returns the factory's logger.
func (f *Factory) Logger() *slog.Logger {
	return f.logger
}

// withLogger makes the factory logger available to collaborators through ctx.
// A logger the caller already put in ctx is kept.
func (f *Factory) withLogger(ctx context.Context) context.Context {
	if _, ok := ctxlog.Lookup(ctx); ok {
		return ctx
	}
	return ctxlog.WithLogger(ctx, f.logger)
}

// log returns the logger of the current call: the caller's, or the
// factory's when ctx carries none.
func (f *Factory) log(ctx context.Context) *slog.Logger {
	if logger, ok := ctxlog.Lookup(ctx); ok {
		return logger
	}
	return f.logger
}

// fail logs err once at the point of detection and returns it.
func (f *Factory) fail(ctx context.Context, err error) error {
	f.log(ctx).ErrorContext(ctx, "Module factory operation failed.", "error", err)
	return err
}

// resolve imports the module behind def.ModuleName.
func (f *Factory) resolve(ctx context.Context, def ModuleDefinition) (Module, error) {
	target, err := ToAbsoluteLoadTarget(def.ModuleName)
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s: %w", ErrModuleResolution, def.ModuleName, err))
	}
	if f.importer == nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s: no importer configured", ErrModuleResolution, target))
	}

	f.log(ctx).DebugContext(ctx, "Resolving module.", "module", def.ModuleName, "target", target)
	mod, err := f.importer.Import(ctx, target)
	if err != nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s: %w", ErrModuleResolution, target, err))
	}
	if mod == nil {
		return nil, f.fail(ctx, fmt.Errorf("%w: %s: importer returned no module", ErrModuleResolution, target))
	}
	return mod, nil
}
