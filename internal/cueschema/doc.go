// Package cueschema compiles declarative CUE schemas into reusable checkers.
//
// A schema is compiled once and then checked against any number of Go values:
//
//  1. Compile the schema source (optionally as a closed definition)
//  2. Encode the Go value and unify it with the schema
//  3. Validate the unified value and report every violation with its path
//
// # Usage
//
//	checker, err := cueschema.Compile(`name: string, id: number`, cueschema.WithClosed(false))
//	if err != nil {
//	    return err
//	}
//	violations, err := checker.Check(map[string]any{"name": "X", "id": 1})
//
// Violations carry a JSON-path style field ("items[0].name"), the rejected
// value when it exists, the schema constraint, and the CUE message.
package cueschema
