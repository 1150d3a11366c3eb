package yaml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/specialistvlad/modfactory/internal/fsutil"
	"github.com/spf13/afero"
	goyaml "gopkg.in/yaml.v3"
)

// Extensions are the file extensions the loader picks up.
var Extensions = []string{".yaml", ".yml"}

type manifest struct {
	Modules map[string]*module `yaml:"modules"`
}

type module struct {
	Loader          string      `yaml:"loader"`
	ModuleName      string      `yaml:"module_name"`
	FunctionName    string      `yaml:"function_name"`
	ConstructorName string      `yaml:"constructor_name"`
	PropertyName    string      `yaml:"property_name"`
	Params          []any       `yaml:"params"`
	TypeOf          string      `yaml:"type_of"`
	LoadSchema      *loadSchema `yaml:"load_schema"`
}

type loadSchema struct {
	ValidationSchema      string `yaml:"validation_schema"`
	UseNewCheckerFunction bool   `yaml:"use_new_checker_function"`
	Async                 bool   `yaml:"async"`
}

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a YAML manifest loader reading from fsys. A nil fsys
// selects the OS filesystem.
func NewLoader(fsys afero.Fs) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{fs: fsys}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	var files []string
	for _, ext := range Extensions {
		found, err := fsutil.FindFilesByExtension(l.fs, ext, paths...)
		if err != nil {
			return nil, fmt.Errorf("failed to discover manifests: %w", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no YAML files in %v", config.ErrNoManifests, paths)
	}
	slices.Sort(files)

	model := config.NewModel()
	for _, file := range files {
		m, err := l.readFile(file)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(m.Modules))
		for name := range m.Modules {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			entry, err := translate(name, m.Modules[name], file)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if err := model.Add(entry); err != nil {
				return nil, err
			}
		}
		logger.Debug("Successfully loaded definitions from YAML file.", "file", file, "modules", len(names))
	}

	logger.Debug("YAML loading complete.", "entries", len(model.Entries))
	return model, nil
}

func (l *Loader) readFile(file string) (*manifest, error) {
	data, err := afero.ReadFile(l.fs, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	dec := goyaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", file, err)
	}
	return &m, nil
}

func translate(name string, m *module, source string) (*config.Entry, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: module %q is empty", factory.ErrConfiguration, name)
	}
	if strings.TrimSpace(m.ModuleName) == "" {
		return nil, fmt.Errorf("%w: module %q: module_name is required", factory.ErrConfiguration, name)
	}
	kind, err := config.ParseLoaderKind(m.Loader)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", name, err)
	}

	def := factory.ModuleDefinition{
		ModuleName:      config.ResolveRelative(m.ModuleName, source),
		FunctionName:    m.FunctionName,
		ConstructorName: m.ConstructorName,
		PropertyName:    m.PropertyName,
		Params:          m.Params,
	}

	switch {
	case m.TypeOf != "" && m.LoadSchema != nil:
		return nil, fmt.Errorf("%w: module %q sets both type_of and load_schema", factory.ErrConfiguration, name)
	case m.TypeOf != "":
		typeOf, err := factory.ParseTypeOf(strings.TrimSpace(m.TypeOf))
		if err != nil {
			return nil, fmt.Errorf("module %q: %w", name, err)
		}
		def.LoadSchema = typeOf
	case m.LoadSchema != nil:
		def.LoadSchema = &factory.LoadSchema{
			ValidationSchema:      m.LoadSchema.ValidationSchema,
			UseNewCheckerFunction: m.LoadSchema.UseNewCheckerFunction,
			Async:                 m.LoadSchema.Async,
		}
	}

	return &config.Entry{
		Name:       name,
		Loader:     kind,
		Definition: def,
		Source:     source,
	}, nil
}
