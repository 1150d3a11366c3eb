// Package factory loads values described by declarative module definitions.
//
// A ModuleDefinition names a module and, inside it, a factory function, a
// constructor or a property. The Factory resolves the module through an
// Importer, produces the value and optionally checks it against a load
// schema before handing it back:
//
//	f := factory.New(reg, factory.WithLogger(logger))
//	res, err := f.LoadFromModule(ctx, factory.ModuleDefinition{
//	    ModuleName:   "sample",
//	    FunctionName: "create2",
//	    LoadSchema:   factory.TypeOfObject,
//	})
//
// Load schemas come in four forms: a TypeOf shortcut comparing primitive
// type tags, a declarative *LoadSchema compiled by a SchemaCompiler (CUE by
// default), and precompiled SyncCheck or AsyncCheck functions.
//
// Factories may return a Deferred (usually a *Future) instead of a value;
// the loaders await it and report it through Result.WasAsync. Every
// operation blocks until the value is ready or ctx is done.
//
// Failures wrap one of the sentinel errors declared in errors.go and are
// logged once, where they are detected.
package factory
