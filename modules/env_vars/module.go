// Package env_vars exposes the process environment as a module: a JSON
// snapshot for the JSON loaders and a lookup function for instances.
package env_vars

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/registry"
)

// Name is the module name env_vars registers under.
const Name = "env_vars"

// Module implements the registry.Module interface for this package.
type Module struct{}

// environ returns the environment as a map.
func environ() map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Snapshot returns the current environment as a JSON object string.
func Snapshot() (string, error) {
	raw, err := json.Marshal(environ())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Lookup returns the value of the environment variable name, or "" if unset.
func Lookup(name string) string {
	return os.Getenv(name)
}

// Register registers the module. The "environ" property is a snapshot
// taken, asynchronously, at registration time.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModule(Name, factory.Exports{
		"snapshot": Snapshot,
		"lookup":   Lookup,
		"environ":  factory.Go(Snapshot),
	})
}
