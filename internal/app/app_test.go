package app_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/app"
	"github.com/specialistvlad/modfactory/internal/hcl"
	"github.com/specialistvlad/modfactory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `
module "record" {
	module_name   = "sample"
	function_name = "create2"
	params        = ["widget", 7]
	load_schema {
		validation_schema        = "name: string\nid: int"
		use_new_checker_function = true
	}
}

module "number" {
	module_name   = "sample"
	function_name = "createNumberAsync"
	type_of       = "number"
}

module "document" {
	loader        = "json_module"
	module_name   = "sample"
	property_name = "jsonAsync"
}

module "file" {
	loader      = "json_resource"
	module_name = "./data/settings.json"
	load_schema {
		validation_schema = "port: number & >0"
	}
}
`

func decodeLines(t *testing.T, out string) map[string]app.Output {
	t.Helper()
	got := make(map[string]app.Output)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var o app.Output
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &o), scanner.Text())
		got[o.Name] = o
	}
	return got
}

func TestApp_LoadAll(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{
		"main.hcl":           manifest,
		"data/settings.json": `{"port": 8080}`,
	}, testutil.Load())
	require.NoError(t, result.Err, result.LogOutput)

	want := map[string]app.Output{
		"record":   {Name: "record", Loader: "instance", Type: "object", Value: map[string]any{"name": "widget", "id": 7.0}},
		"number":   {Name: "number", Loader: "instance", Async: true, Type: "number", Value: 49.0},
		"document": {Name: "document", Loader: "json_module", Type: "object", Value: map[string]any{"name": "sample", "id": 1.0, "tags": []any{"a", "b"}}},
		"file":     {Name: "file", Loader: "json_resource", Type: "object", Value: map[string]any{"port": 8080.0}},
	}
	if diff := cmp.Diff(want, decodeLines(t, result.Output)); diff != "" {
		t.Errorf("Load() output mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, result.LogOutput, "Entries loaded.")
	assert.Contains(t, result.LogOutput, `"run_id":`)
}

func TestApp_LoadFailureLogsCarryRunID(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"main.hcl": `
module "broken" {
	module_name   = "sample"
	function_name = "createString"
	type_of       = "number"
}
`}, testutil.Load())
	require.ErrorIs(t, result.Err, factory.ErrTypeMismatch)

	runIDs := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(result.LogOutput))
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line), scanner.Text())
		msg, _ := line["msg"].(string)
		id, _ := line["run_id"].(string)
		runIDs[msg] = id
	}

	runID := runIDs["Entries loaded."]
	require.NotEmpty(t, runID)
	for _, msg := range []string{"TypeOf validation failed.", "Module factory operation failed."} {
		assert.Equal(t, runID, runIDs[msg], msg)
	}
}

func TestApp_LoadYAMLManifest(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{
		"main.yaml": `
modules:
  lines:
    module_name: print
    function_name: lines
    params: [{b: "2", a: "1"}, 2]
    type_of: string
`,
		"main.hcl": `
module "greeting" {
	module_name   = "sample"
	function_name = "createString"
}
`,
	}, testutil.Load())
	require.NoError(t, result.Err, result.LogOutput)

	want := map[string]app.Output{
		"lines":    {Name: "lines", Loader: "instance", Type: "string", Value: "  a = \"1\"\n  b = \"2\"\n"},
		"greeting": {Name: "greeting", Loader: "instance", Type: "string", Value: "hello"},
	}
	if diff := cmp.Diff(want, decodeLines(t, result.Output)); diff != "" {
		t.Errorf("Load() output mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_LoadNamedAndFailures(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{
		"main.hcl": manifest + `
module "broken" {
	module_name = "sample"
	function_name = "createString"
	type_of     = "number"
}
`,
	}, testutil.Load("number", "broken", "missing"))

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, factory.ErrTypeMismatch)
	assert.ErrorIs(t, result.Err, factory.ErrConfiguration)
	assert.Contains(t, result.Err.Error(), `entry "missing"`)

	got := decodeLines(t, result.Output)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "number")
}

func TestApp_Validate(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"main.hcl": manifest}, testutil.Validate())
	require.NoError(t, result.Err, result.LogOutput)
	for _, name := range []string{"document", "file", "number", "record"} {
		assert.Contains(t, result.Output, "ok      "+name)
	}
}

func TestApp_ValidateSkipsPluginParity(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"main.hcl": `
module "plugin" {
	module_name   = "/plugins/greeter.so"
	function_name = "Greet"
}
`}, testutil.Validate())
	require.NoError(t, result.Err, result.LogOutput)
	assert.Contains(t, result.Output, "ok      plugin")
	assert.Contains(t, result.LogOutput, "Skipping parity check for plugin module.")
}

func TestApp_ValidateReportsProblems(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"main.hcl": `
module "conflict" {
	module_name      = "sample"
	function_name    = "create2"
	constructor_name = "TestDataType"
}

module "unknown" {
	module_name = "nope"
}

module "missing_export" {
	module_name   = "sample"
	function_name = "doesNotExist"
}
`}, testutil.Validate())

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, factory.ErrDefinitionStructure)
	assert.ErrorIs(t, result.Err, factory.ErrConfiguration)
	assert.Contains(t, result.Output, "invalid conflict")
	assert.Contains(t, result.Err.Error(), "module 'nope' is not registered")
	assert.Contains(t, result.Err.Error(), "doesNotExist")
}

func TestNewApp_Strict(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{"main.hcl": `
module "unknown" {
	module_name = "nope"
}
`})

	cfg, err := app.NewConfig(app.Config{ManifestPaths: []string{root}, Strict: true})
	require.NoError(t, err)
	_, err = app.NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, hcl.NewLoader(nil))
	require.ErrorIs(t, err, factory.ErrConfiguration)

	cfg.Strict = false
	a, err := app.NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, hcl.NewLoader(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"unknown"}, a.Model().Names())
	assert.Equal(t, []string{"env_vars", "http_client", "print", "sample"}, a.Registry().Names())
}

func TestNewApp_ManifestErrors(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"main.hcl": `module "x" {`}, testutil.Load())
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to load manifests")
	assert.Nil(t, result.App)
}

func TestApp_NoEntries(t *testing.T) {
	t.Parallel()

	result := testutil.RunApp(t, map[string]string{"empty.hcl": ""}, testutil.Load())
	require.NoError(t, result.Err)
	assert.Empty(t, result.Output)
	assert.Contains(t, result.LogOutput, "nothing to load")
}

func TestApp_LoadHonoursContext(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{"main.hcl": manifest})
	cfg, err := app.NewConfig(app.Config{ManifestPaths: []string{root}})
	require.NoError(t, err)
	a, err := app.NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, hcl.NewLoader(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = a.Load(ctx, "number")
	require.ErrorIs(t, err, context.Canceled)
}
