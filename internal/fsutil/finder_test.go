package fsutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	for _, name := range []string{"/m/b.hcl", "/m/a.hcl", "/m/sub/c.hcl", "/m/readme.md", "/single.hcl"} {
		require.NoError(t, afero.WriteFile(fsys, name, []byte("x"), 0o644))
	}

	files, err := FindFilesByExtension(fsys, ".hcl", "/m", "/single.hcl", "/m/a.hcl", "/missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"/m/a.hcl", "/m/b.hcl", "/m/sub/c.hcl", "/single.hcl"}, files)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		_, _ = FindFilesByExtension(afero.NewMemMapFs(), "", "/")
	})
}
