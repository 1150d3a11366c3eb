package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
	"github.com/specialistvlad/modfactory/internal/executor"
	"github.com/specialistvlad/modfactory/internal/goplugin"
)

// Output is the JSON line written for every loaded entry.
type Output struct {
	Name   string            `json:"name"`
	Loader config.LoaderKind `json:"loader"`
	Async  bool              `json:"async,omitempty"`
	Type   string            `json:"type"`
	Value  any               `json:"value"`
}

// Load loads the named entries, or every entry when names is empty, on the
// configured number of workers and writes one JSON line per entry to the
// output writer, in request order. Every entry is attempted; the failures are
// joined into the returned error.
func (a *App) Load(ctx context.Context, names ...string) error {
	logger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Load method started.", "requested", len(names))

	if len(names) == 0 {
		names = a.model.Names()
	}
	if len(names) == 0 {
		logger.Warn("No entries found in manifests, nothing to load.")
		return nil
	}

	tasks := make([]executor.Task, len(names))
	for i, name := range names {
		tasks[i] = executor.Task{ID: name, Run: func(ctx context.Context) (any, error) {
			return a.loadEntry(ctx, name)
		}}
	}

	enc := json.NewEncoder(a.outW)
	var errs []error
	for _, res := range a.executor.Execute(ctx, tasks) {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("entry %q: %w", res.ID, res.Err))
			continue
		}
		out := res.Value.(*Output)
		if err := enc.Encode(out); err != nil {
			// Values that are not plain data, e.g. functions, print as text.
			out.Value = fmt.Sprintf("%v", out.Value)
			if err := enc.Encode(out); err != nil {
				errs = append(errs, fmt.Errorf("entry %q: %w", res.ID, err))
			}
		}
	}

	logger.Info("Entries loaded.", "loaded", len(names)-len(errs), "failed", len(errs))
	return errors.Join(errs...)
}

func (a *App) loadEntry(ctx context.Context, name string) (*Output, error) {
	entry, ok := a.model.Entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: no entry named %q", factory.ErrConfiguration, name)
	}
	out := &Output{Name: name, Loader: entry.Loader}

	var err error
	switch entry.Loader {
	case config.LoaderInstance:
		var res factory.Result[any]
		res, err = a.factory.LoadFromModule(ctx, entry.Definition)
		out.Value, out.Async = res.Value, res.WasAsync
	case config.LoaderJSONModule:
		out.Value, err = a.factory.LoadJSONFromModule(ctx, entry.Definition)
	case config.LoaderJSONResource:
		out.Value, err = a.factory.LoadJSONResource(ctx, entry.Definition)
	default:
		err = fmt.Errorf("%w: unknown loader %q", factory.ErrConfiguration, entry.Loader)
	}
	if err != nil {
		return nil, err
	}
	out.Type = factory.TypeTag(out.Value)
	return out, nil
}

// Validate checks every entry's definition structure and runs the registry
// parity check, without invoking any factory. It writes one line per entry
// to the output writer.
func (a *App) Validate(ctx context.Context) error {
	logger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Validate method started.", "entries", len(a.model.Entries))

	var failed []string
	for _, name := range a.model.Names() {
		entry := a.model.Entries[name]
		violations := factory.ValidateModuleDefinition(entry.Definition)
		if len(violations) == 0 {
			fmt.Fprintf(a.outW, "ok      %s\n", name)
			continue
		}
		failed = append(failed, name)
		fmt.Fprintf(a.outW, "invalid %s (%s)\n", name, entry.Source)
		for _, v := range violations {
			fmt.Fprintf(a.outW, "  - %s\n", v)
		}
	}

	// Plugin entries can only be checked by opening the plugin.
	registered := make(map[string]*config.Entry, len(a.model.Entries))
	for name, entry := range a.model.Entries {
		if goplugin.Handles(entry.Definition.ModuleName) {
			logger.Debug("Skipping parity check for plugin module.", "entry", name)
			continue
		}
		registered[name] = entry
	}
	parityErr := a.registry.ValidateEntries(ctx, registered)
	if len(failed) > 0 {
		err := fmt.Errorf("%w: invalid module definitions: %s", factory.ErrDefinitionStructure, strings.Join(failed, ", "))
		return errors.Join(err, parityErr)
	}
	if parityErr != nil {
		return parityErr
	}
	logger.Info("Manifest validation passed.", "entries", len(a.model.Entries))
	return nil
}
