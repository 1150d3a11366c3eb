package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/specialistvlad/modfactory/internal/fsutil"
	"github.com/specialistvlad/modfactory/internal/schema"
	"github.com/spf13/afero"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a new HCL manifest loader reading from fsys. A nil fsys
// selects the OS filesystem.
func NewLoader(fsys afero.Fs) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{fs: fsys}
}

// Load parses every .hcl file found under paths and merges their module
// blocks into one model. Entry names must be unique across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(l.fs, ".hcl", paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to discover manifests: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .hcl files in %v", config.ErrNoManifests, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := config.NewModel()
	parser := hclparse.NewParser()
	for _, file := range files {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read HCL file %s: %w", file, err)
		}
		hclFile, diags := parser.ParseHCL(src, file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.ManifestConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, m := range root.Modules {
			entry, err := translateModule(ctx, m, file)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if err := model.Add(entry); err != nil {
				return nil, err
			}
		}
		logger.Debug("Successfully loaded definitions from HCL file.", "file", file, "modules", len(root.Modules))
	}

	logger.Debug("HCL loading complete.", "entries", len(model.Entries))
	return model, nil
}
