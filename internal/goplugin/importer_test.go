package goplugin

import (
	"context"
	"errors"
	"plugin"
	"testing"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImporter_SkipsNonPluginTargets(t *testing.T) {
	t.Parallel()
	imp := New()

	for _, target := range []string{"sample", "/abs/module.go", "https://example.com/x.so"} {
		_, err := imp.Import(context.Background(), target)
		assert.ErrorIs(t, err, factory.ErrModuleNotFound, target)
	}
}

func TestImporter_OpenFailure(t *testing.T) {
	t.Parallel()
	var opened string
	imp := &Importer{open: func(path string) (*plugin.Plugin, error) {
		opened = path
		return nil, errors.New("not a plugin")
	}}

	_, err := imp.Import(context.Background(), "file:///plugins/greeter.so")
	require.Error(t, err)
	assert.NotErrorIs(t, err, factory.ErrModuleNotFound)
	assert.Equal(t, "/plugins/greeter.so", opened)
}

func TestImporter_ChainFallsThrough(t *testing.T) {
	t.Parallel()
	chain := factory.Importers{New(), factory.ImporterFunc(func(context.Context, string) (factory.Module, error) {
		return factory.Exports{"default": func() string { return "fallback" }}, nil
	})}

	res, err := factory.New(chain).LoadFromModule(context.Background(), factory.ModuleDefinition{ModuleName: "sample"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", res.Value)
}

func TestHandles(t *testing.T) {
	t.Parallel()

	testCases := map[string]bool{
		"/plugins/a.so":          true,
		"file:///plugins/a.so":   true,
		"plugins/a.so":           true,
		"sample":                 false,
		"/plugins/a.go":          false,
		"https://example.com/so": false,
	}
	for target, want := range testCases {
		assert.Equal(t, want, Handles(target), target)
	}
}
