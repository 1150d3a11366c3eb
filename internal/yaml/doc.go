// Package yaml implements config.Loader for YAML manifests. A manifest maps
// entry names to module definitions under a top-level "modules" key:
//
//	modules:
//	  greeting:
//	    loader: instance
//	    module_name: sample
//	    function_name: create2
//	    params: ["widget", 7]
//	    load_schema:
//	      validation_schema: "name: string"
//
// ${VAR} references are expanded from the environment before parsing.
package yaml
