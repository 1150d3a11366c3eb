package config

import (
	"path/filepath"
	"testing"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoaderKind(t *testing.T) {
	t.Parallel()

	testCases := map[string]LoaderKind{
		"":              LoaderInstance,
		"instance":      LoaderInstance,
		"json_module":   LoaderJSONModule,
		"json_resource": LoaderJSONResource,
	}
	for in, want := range testCases {
		got, err := ParseLoaderKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLoaderKind("yaml")
	require.ErrorIs(t, err, factory.ErrConfiguration)
}

func TestModel_Add(t *testing.T) {
	t.Parallel()
	m := NewModel()

	require.NoError(t, m.Add(&Entry{Name: "b", Source: "one.hcl"}))
	require.NoError(t, m.Add(&Entry{Name: "a", Source: "one.hcl"}))
	err := m.Add(&Entry{Name: "b", Source: "two.hcl"})
	require.ErrorIs(t, err, factory.ErrConfiguration)
	assert.Contains(t, err.Error(), "one.hcl and two.hcl")

	assert.Equal(t, []string{"a", "b"}, m.Names())
}

func TestResolveRelative(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name, source, want string
	}{
		{name: "sample", source: "/m/a.hcl", want: "sample"},
		{name: "/abs/data.json", source: "/m/a.hcl", want: "/abs/data.json"},
		{name: "./data.json", source: "/m/a.hcl", want: "/m/data.json"},
		{name: "../data.json", source: "/m/sub/a.hcl", want: "/m/data.json"},
		{name: "./data.json", source: "manifests/a.hcl", want: "./manifests/data.json"},
		{name: "../../data.json", source: "manifests/a.hcl", want: "../data.json"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, filepath.ToSlash(ResolveRelative(tc.name, tc.source)), "%s from %s", tc.name, tc.source)
	}
}
