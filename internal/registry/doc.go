// Package registry provides the in-process module system.
//
// Go cannot import code by name at runtime, so modules compiled into the
// binary register their exports here under a module name. The Registry then
// acts as the factory.Importer that resolves those names for the loaders.
//
// During startup the registry is populated and can be validated against the
// loaded manifests, so that the Go code and the manifests are known to be in
// sync before anything is invoked.
package registry
