package config

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoManifests is returned by a Loader that found no manifest files of its
// format under the given paths.
var ErrNoManifests = errors.New("no manifest files found")

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads the manifests found at paths (files or directories) and
	// translates them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Loaders runs several format loaders over the same paths and merges their
// models. A loader reporting ErrNoManifests is skipped; Loaders itself
// reports it only when no loader found anything. Entry names must be unique
// across formats.
type Loaders []Loader

// Load implements Loader.
func (ls Loaders) Load(ctx context.Context, paths ...string) (*Model, error) {
	merged := NewModel()
	found := false
	for _, l := range ls {
		m, err := l.Load(ctx, paths...)
		if errors.Is(err, ErrNoManifests) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found = true
		for _, name := range m.Names() {
			if err := merged.Add(m.Entries[name]); err != nil {
				return nil, err
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w in %v", ErrNoManifests, paths)
	}
	return merged, nil
}
