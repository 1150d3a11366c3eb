// Package config defines the format-agnostic model of a manifest: a set of
// named entries, each pairing a loader kind with a factory.ModuleDefinition.
//
// Concrete manifest formats, such as HCL, implement the Loader interface in
// separate packages.
package config
