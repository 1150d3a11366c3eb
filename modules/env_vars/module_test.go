package env_vars

import (
	"context"
	"testing"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvVars(t *testing.T) {
	t.Setenv("MODFACTORY_TEST_VAR", "present")
	f := factory.New(registry.New(&Module{}))
	ctx := context.Background()

	doc, err := factory.LoadJSONFromModule[map[string]string](ctx, f, factory.ModuleDefinition{
		ModuleName:   Name,
		FunctionName: "snapshot",
		LoadSchema:   &factory.LoadSchema{ValidationSchema: "MODFACTORY_TEST_VAR: \"present\""},
	})
	require.NoError(t, err)
	assert.Equal(t, "present", doc["MODFACTORY_TEST_VAR"])

	prop, err := factory.LoadJSONFromModule[map[string]string](ctx, f, factory.ModuleDefinition{
		ModuleName:   Name,
		PropertyName: "environ",
	})
	require.NoError(t, err)
	assert.Equal(t, "present", prop["MODFACTORY_TEST_VAR"])

	res, err := f.LoadFromModule(ctx, factory.ModuleDefinition{
		ModuleName:   Name,
		FunctionName: "lookup",
		Params:       []any{"MODFACTORY_TEST_VAR"},
		LoadSchema:   factory.TypeOfString,
	})
	require.NoError(t, err)
	assert.Equal(t, "present", res.Value)
}
