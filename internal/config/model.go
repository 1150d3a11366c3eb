package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/modfactory/factory"
)

// LoaderKind selects the factory operation an entry is loaded with.
type LoaderKind string

const (
	// LoaderInstance loads with factory.LoadFromModule.
	LoaderInstance LoaderKind = "instance"
	// LoaderJSONModule loads with factory.LoadJSONFromModule.
	LoaderJSONModule LoaderKind = "json_module"
	// LoaderJSONResource loads with factory.LoadJSONResource.
	LoaderJSONResource LoaderKind = "json_resource"
)

// ParseLoaderKind validates s. An empty string selects LoaderInstance.
func ParseLoaderKind(s string) (LoaderKind, error) {
	switch k := LoaderKind(s); k {
	case "":
		return LoaderInstance, nil
	case LoaderInstance, LoaderJSONModule, LoaderJSONResource:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown loader %q, want one of %q, %q or %q",
			factory.ErrConfiguration, s, LoaderInstance, LoaderJSONModule, LoaderJSONResource)
	}
}

// Model is the unified, format-agnostic representation of all loaded
// manifests.
type Model struct {
	Entries map[string]*Entry
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{Entries: make(map[string]*Entry)}
}

// Add stores e, rejecting a second entry with the same name.
func (m *Model) Add(e *Entry) error {
	if prev, exists := m.Entries[e.Name]; exists {
		return fmt.Errorf("%w: entry %q declared in %s and %s", factory.ErrConfiguration, e.Name, prev.Source, e.Source)
	}
	m.Entries[e.Name] = e
	return nil
}

// Names returns the entry names in sorted order.
func (m *Model) Names() []string {
	names := make([]string, 0, len(m.Entries))
	for name := range m.Entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Entry is one named load request from a manifest.
type Entry struct {
	Name       string
	Loader     LoaderKind
	Definition factory.ModuleDefinition
	// Source is the file the entry was declared in.
	Source string
}

// ResolveRelative rebases a "./" or "../" module name onto the directory of
// the manifest declaring it. The result stays relative when the manifest path
// was, so the factory resolves it against the working directory.
func ResolveRelative(name, source string) string {
	if !factory.IsRelativePath(name) {
		return name
	}
	joined := filepath.Join(filepath.Dir(source), name)
	if filepath.IsAbs(joined) || strings.HasPrefix(filepath.ToSlash(joined), "../") {
		return joined
	}
	return "./" + filepath.ToSlash(joined)
}
