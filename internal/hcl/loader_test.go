package hcl

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return fsys
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()
	fsys := writeFiles(t, map[string]string{
		"/manifests/instances.hcl": `
			module "greeting" {
				module_name   = "sample"
				function_name = "create2"
				params        = ["a", 1, 2.5, true, null, { k = "v" }, [1, 2]]
				type_of       = "object"
			}

			module "typed" {
				loader           = "instance"
				module_name      = "sample"
				constructor_name = "TestDataType"
				load_schema {
					validation_schema        = "name: string"
					use_new_checker_function = true
					async                    = true
				}
			}
		`,
		"/manifests/json/data.hcl": `
			module "env" {
				loader        = "json_module"
				module_name   = "env_vars"
				property_name = "snapshot"
			}
		`,
	})

	model, err := NewLoader(fsys).Load(context.Background(), "/manifests")
	require.NoError(t, err)
	assert.Equal(t, []string{"env", "greeting", "typed"}, model.Names())

	want := map[string]*config.Entry{
		"greeting": {
			Name:   "greeting",
			Loader: config.LoaderInstance,
			Definition: factory.ModuleDefinition{
				ModuleName:   "sample",
				FunctionName: "create2",
				Params:       []any{"a", 1, 2.5, true, nil, map[string]any{"k": "v"}, []any{1, 2}},
				LoadSchema:   factory.TypeOfObject,
			},
			Source: "/manifests/instances.hcl",
		},
		"typed": {
			Name:   "typed",
			Loader: config.LoaderInstance,
			Definition: factory.ModuleDefinition{
				ModuleName:      "sample",
				ConstructorName: "TestDataType",
				LoadSchema: &factory.LoadSchema{
					ValidationSchema:      "name: string",
					UseNewCheckerFunction: true,
					Async:                 true,
				},
			},
			Source: "/manifests/instances.hcl",
		},
		"env": {
			Name:   "env",
			Loader: config.LoaderJSONModule,
			Definition: factory.ModuleDefinition{
				ModuleName:   "env_vars",
				PropertyName: "snapshot",
			},
			Source: "/manifests/json/data.hcl",
		},
	}
	if diff := cmp.Diff(want, model.Entries); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"invalid syntax": `module "x" {`,
		"unknown loader": `module "x" {
			module_name = "m"
			loader      = "nope"
		}`,
		"unknown type tag": `module "x" {
			module_name = "m"
			type_of     = "undefined"
		}`,
		"params not a list": `module "x" {
			module_name = "m"
			params      = "a"
		}`,
		"both schemas": `module "x" {
			module_name = "m"
			type_of     = "string"
			load_schema { validation_schema = "string" }
		}`,
		"missing module_name": `module "x" {}`,
		"duplicate names": `
			module "x" { module_name = "a" }
			module "x" { module_name = "b" }
		`,
	}

	for name, src := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fsys := writeFiles(t, map[string]string{"/m.hcl": src})
			_, err := NewLoader(fsys).Load(context.Background(), "/m.hcl")
			require.Error(t, err)
		})
	}
}

func TestLoader_NoFiles(t *testing.T) {
	t.Parallel()
	_, err := NewLoader(afero.NewMemMapFs()).Load(context.Background(), "/nowhere")
	require.ErrorIs(t, err, config.ErrNoManifests)
}

func TestCtyToNative(t *testing.T) {
	t.Parallel()

	got, err := ctyToNative(cty.ObjectVal(map[string]cty.Value{
		"n":   cty.NumberIntVal(3),
		"f":   cty.NumberFloatVal(0.5),
		"s":   cty.SetVal([]cty.Value{cty.StringVal("x")}),
		"nil": cty.NullVal(cty.String),
	}))
	require.NoError(t, err)
	want := map[string]any{"n": 3, "f": 0.5, "s": []any{"x"}, "nil": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ctyToNative() mismatch (-want +got):\n%s", diff)
	}

	_, err = ctyToNative(cty.UnknownVal(cty.String))
	require.Error(t, err)
}
