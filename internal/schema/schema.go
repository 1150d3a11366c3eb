// Package schema holds the HCL decoding structs for manifest files.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// LoadSchema is the `load_schema` block of a module entry.
type LoadSchema struct {
	ValidationSchema      string `hcl:"validation_schema"`
	UseNewCheckerFunction bool   `hcl:"use_new_checker_function,optional"`
	Async                 bool   `hcl:"async,optional"`
}

// Module represents a `module "<name>" { ... }` block: one named load
// request.
type Module struct {
	Name            string         `hcl:"name,label"`
	Loader          string         `hcl:"loader,optional"`
	ModuleName      string         `hcl:"module_name"`
	FunctionName    string         `hcl:"function_name,optional"`
	ConstructorName string         `hcl:"constructor_name,optional"`
	PropertyName    string         `hcl:"property_name,optional"`
	Params          hcl.Expression `hcl:"params,optional"`
	TypeOf          string         `hcl:"type_of,optional"`
	LoadSchema      *LoadSchema    `hcl:"load_schema,block"`
}

// ManifestConfig represents the top-level structure of a manifest file.
type ManifestConfig struct {
	Modules []*Module `hcl:"module,block"`
	Body    hcl.Body  `hcl:",remain"`
}
