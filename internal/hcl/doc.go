// Package hcl provides the HCL implementation of config.Loader. It parses
// manifest files, decodes `module` blocks and translates them into
// factory.ModuleDefinitions, converting cty params into plain Go values.
package hcl
