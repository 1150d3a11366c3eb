package factory

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseTypeOf(t *testing.T) {
	t.Parallel()

	for _, typeOf := range TypeOfs().All() {
		parsed, err := ParseTypeOf(typeOf.Tag())
		require.NoError(t, err)
		assert.Equal(t, typeOf, parsed, "parsing a tag yields the same constant")
		assert.True(t, IsTypeOf(parsed))
	}

	_, err := ParseTypeOf("undefined")
	require.ErrorIs(t, err, ErrConfiguration)
	_, err = ParseTypeOf("")
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestTypeOf_Predicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTypeOf(TypeOfString))
	assert.False(t, IsTypeOf(TypeOf(0)))
	assert.False(t, IsTypeOf(TypeOf(42)))
	assert.False(t, IsTypeOf("string"))
	assert.False(t, IsTypeOf(nil))

	assert.Equal(t, "TypeOf(bigint)", TypeOfBigInt.String())
	assert.Equal(t, "", TypeOf(42).Tag())
}

func TestTypeOf_Text(t *testing.T) {
	t.Parallel()

	text, err := TypeOfSymbol.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "symbol", string(text))

	var typeOf TypeOf
	require.NoError(t, typeOf.UnmarshalText([]byte("function")))
	assert.Equal(t, TypeOfFunction, typeOf)
	require.ErrorIs(t, typeOf.UnmarshalText([]byte("nope")), ErrConfiguration)

	_, err = TypeOf(0).MarshalText()
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestTypeOfSet_IsImmutable(t *testing.T) {
	t.Parallel()
	set := TypeOfs()

	assert.Equal(t, 7, set.Len())
	assert.True(t, set.Has("object"))
	assert.False(t, set.Has("undefined"))

	require.ErrorIs(t, set.Add("undefined"), ErrImmutableState)
	require.ErrorIs(t, set.Delete("string"), ErrImmutableState)
	require.ErrorIs(t, set.Clear(), ErrImmutableState)
	assert.Equal(t, 7, set.Len())
	assert.True(t, set.Has("string"))

	all := set.All()
	all[0] = TypeOfObject
	assert.Equal(t, TypeOfString, set.All()[0], "All returns a copy")
}

func TestTypeTag(t *testing.T) {
	t.Parallel()

	type named string

	testCases := []struct {
		name  string
		value any
		want  string
	}{
		{name: "string", value: "x", want: "string"},
		{name: "named string", value: named("x"), want: "string"},
		{name: "int", value: 49, want: "number"},
		{name: "float", value: 4.9, want: "number"},
		{name: "uint8", value: uint8(1), want: "number"},
		{name: "bool", value: true, want: "boolean"},
		{name: "big int", value: big.NewInt(1), want: "bigint"},
		{name: "big int value", value: *big.NewInt(1), want: "bigint"},
		{name: "function", value: func() {}, want: "function"},
		{name: "symbol", value: NewSymbol("s"), want: "symbol"},
		{name: "nil", value: nil, want: "object"},
		{name: "map", value: map[string]any{}, want: "object"},
		{name: "slice", value: []int{1}, want: "object"},
		{name: "struct pointer", value: &testDataType{}, want: "object"},
		{name: "cty string", value: cty.StringVal("x"), want: "string"},
		{name: "cty number", value: cty.NumberIntVal(1), want: "number"},
		{name: "cty bool", value: cty.True, want: "boolean"},
		{name: "cty object", value: cty.EmptyObjectVal, want: "object"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, TypeTag(tc.value))
		})
	}
}

func TestSymbol_Identity(t *testing.T) {
	t.Parallel()
	a, b := NewSymbol("same"), NewSymbol("same")
	assert.NotSame(t, a, b)
	assert.Equal(t, "Symbol(same)", a.String())
}
