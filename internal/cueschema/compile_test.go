package cueschema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_InvalidSource(t *testing.T) {
	t.Parallel()

	_, err := Compile("name: string &", WithFilename("broken.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestCheck_OpenSchema(t *testing.T) {
	t.Parallel()

	checker, err := Compile(`
name: string
age:  int & >=0
tags?: [...string]
`)
	require.NoError(t, err)

	violations, err := checker.Check(map[string]any{"name": "a", "age": 3, "extra": true})
	require.NoError(t, err)
	assert.Empty(t, violations, "open schemas accept unknown fields")

	violations, err = checker.Check(map[string]any{"name": "a", "age": -1})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "age", violations[0].Field)
	assert.Equal(t, "constraint", violations[0].Code)

	violations, err = checker.Check(map[string]any{"name": "a", "age": 1, "tags": []any{"x", 2}})
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Equal(t, "tags[1]", violations[0].Field)
}

func TestCheck_ClosedSchema(t *testing.T) {
	t.Parallel()

	checker, err := Compile("name: string", WithClosed(true))
	require.NoError(t, err)
	assert.Equal(t, "name: string", checker.Source())

	violations, err := checker.Check(map[string]any{"name": "a"})
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = checker.Check(map[string]any{"name": "a", "extra": 1})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "extra", violations[0].Field)
	assert.Equal(t, "unknown_field", violations[0].Code)
	assert.NotContains(t, violations[0].Message, rootDefinition)
}

func TestCheck_StructTags(t *testing.T) {
	t.Parallel()

	type person struct {
		Name string `json:"name"`
	}
	checker, err := Compile(`name: "bob"`)
	require.NoError(t, err)

	violations, err := checker.Check(person{Name: "bob"})
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = checker.Check(&person{Name: "alice"})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "name", violations[0].Field)
	assert.Equal(t, "alice", violations[0].Actual)
}

func TestCheck_Concurrent(t *testing.T) {
	t.Parallel()

	checker, err := Compile("n: number")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			violations, err := checker.Check(map[string]any{"n": i})
			assert.NoError(t, err)
			assert.Empty(t, violations)
		}(i)
	}
	wg.Wait()
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path []string
		want string
	}{
		{path: nil, want: ""},
		{path: []string{"a"}, want: "a"},
		{path: []string{"items", "0", "name"}, want: "items[0].name"},
		{path: []string{`"quoted-key"`, "1"}, want: "quoted-key[1]"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, formatPath(tc.path))
	}
}
