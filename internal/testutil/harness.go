// Package testutil holds helpers shared by the integration tests of the
// application packages.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/modfactory/internal/app"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/hcl"
	"github.com/specialistvlad/modfactory/internal/registry"
	"github.com/specialistvlad/modfactory/internal/yaml"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes files, keyed by slash-separated relative path, below a
// fresh temporary directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// Command is the App method a harness run exercises.
type Command func(ctx context.Context, a *app.App) error

// Load returns a Command loading the named entries.
func Load(names ...string) Command {
	return func(ctx context.Context, a *app.App) error {
		return a.Load(ctx, names...)
	}
}

// Validate returns a Command validating the manifests.
func Validate() Command {
	return func(ctx context.Context, a *app.App) error {
		return a.Validate(ctx)
	}
}

// RunApp writes files to a temporary directory, builds an App over the
// HCL and YAML manifests found there with debug logging and runs cmd. With no modules, the
// compiled-in ones are used.
func RunApp(t *testing.T, files map[string]string, cmd Command, modules ...registry.Module) *HarnessResult {
	t.Helper()
	root := WriteFiles(t, files)

	var out, logs SafeBuffer
	cfg, err := app.NewConfig(app.Config{
		ManifestPaths: []string{root},
		LogLevel:      "debug",
		LogFormat:     "json",
		Workers:       4,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("MODFACTORY_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	a, err := app.NewApp(&out, &logs, cfg, config.Loaders{hcl.NewLoader(nil), yaml.NewLoader(nil)}, modules...)
	if err != nil {
		return &HarnessResult{LogOutput: logs.String(), Err: err}
	}
	err = cmd(context.Background(), a)
	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       err,
		App:       a,
	}
}
