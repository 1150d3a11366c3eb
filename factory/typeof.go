package factory

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// TypeOf is a validation shortcut: the produced value's primitive-type tag
// must equal the tag of the TypeOf. The enumeration is closed; only the seven
// constants below are valid.
type TypeOf uint8

const (
	typeOfInvalid TypeOf = iota
	TypeOfString
	TypeOfNumber
	TypeOfBoolean
	TypeOfBigInt
	TypeOfFunction
	TypeOfSymbol
	TypeOfObject
)

var typeOfTags = [...]string{
	TypeOfString:   "string",
	TypeOfNumber:   "number",
	TypeOfBoolean:  "boolean",
	TypeOfBigInt:   "bigint",
	TypeOfFunction: "function",
	TypeOfSymbol:   "symbol",
	TypeOfObject:   "object",
}

// ParseTypeOf returns the TypeOf carrying tag. Tags outside the seven legal
// primitive-type tags fail with ErrConfiguration.
func ParseTypeOf(tag string) (TypeOf, error) {
	for t := TypeOfString; t <= TypeOfObject; t++ {
		if typeOfTags[t] == tag {
			return t, nil
		}
	}
	return typeOfInvalid, fmt.Errorf("%w: %q is not a primitive type tag", ErrConfiguration, tag)
}

// IsTypeOf reports whether x is one of the seven TypeOf constants.
func IsTypeOf(x any) bool {
	t, ok := x.(TypeOf)
	return ok && t.valid()
}

func (t TypeOf) valid() bool {
	return t >= TypeOfString && t <= TypeOfObject
}

// Tag returns the primitive-type tag, e.g. "string".
func (t TypeOf) Tag() string {
	if !t.valid() {
		return ""
	}
	return typeOfTags[t]
}

// String implements the fmt.Stringer interface for TypeOf.
func (t TypeOf) String() string {
	if !t.valid() {
		return fmt.Sprintf("TypeOf(%d)", uint8(t))
	}
	return "TypeOf(" + typeOfTags[t] + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (t TypeOf) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("%w: invalid TypeOf %d", ErrConfiguration, uint8(t))
	}
	return []byte(t.Tag()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TypeOf) UnmarshalText(text []byte) error {
	parsed, err := ParseTypeOf(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (TypeOf) isSchema() {}

// TypeOfSet is a read-only set view over the TypeOf enumeration.
type TypeOfSet struct{}

// TypeOfs returns the set of all TypeOf constants.
func TypeOfs() TypeOfSet {
	return TypeOfSet{}
}

// Has reports whether tag is a member of the set.
func (TypeOfSet) Has(tag string) bool {
	_, err := ParseTypeOf(tag)
	return err == nil
}

// Len always returns seven.
func (TypeOfSet) Len() int {
	return int(TypeOfObject - typeOfInvalid)
}

// All returns a fresh slice holding every TypeOf constant.
func (TypeOfSet) All() []TypeOf {
	all := make([]TypeOf, 0, TypeOfObject)
	for t := TypeOfString; t <= TypeOfObject; t++ {
		all = append(all, t)
	}
	return all
}

// Add always fails: the set is immutable.
func (TypeOfSet) Add(string) error {
	return fmt.Errorf("%w: TypeOf set cannot be added to", ErrImmutableState)
}

// Delete always fails: the set is immutable.
func (TypeOfSet) Delete(string) error {
	return fmt.Errorf("%w: TypeOf set cannot be deleted from", ErrImmutableState)
}

// Clear always fails: the set is immutable.
func (TypeOfSet) Clear() error {
	return fmt.Errorf("%w: TypeOf set cannot be cleared", ErrImmutableState)
}

// Symbol is a unique, identity-compared token. Its primitive-type tag is
// "symbol".
type Symbol struct {
	description string
}

// NewSymbol returns a new Symbol; two symbols are only equal if they are the
// same pointer.
func NewSymbol(description string) *Symbol {
	return &Symbol{description: description}
}

// String implements the fmt.Stringer interface for Symbol.
func (s *Symbol) String() string {
	return "Symbol(" + s.description + ")"
}

var (
	bigIntType     = reflect.TypeOf(big.Int{})
	symbolType     = reflect.TypeOf(Symbol{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

// TypeTag returns the primitive-type tag of v. Values that are none of
// string, number, boolean, bigint, function or symbol are "object", and so is
// nil.
func TypeTag(v any) string {
	if cv, ok := v.(cty.Value); ok {
		return ctyTypeTag(cv)
	}
	if v == nil {
		return "object"
	}
	rt := reflect.TypeOf(v)
	if rt == jsonNumberType {
		return "number"
	}
	if rt.Kind() == reflect.Pointer {
		switch rt.Elem() {
		case bigIntType:
			return "bigint"
		case symbolType:
			return "symbol"
		}
	}
	switch rt {
	case bigIntType:
		return "bigint"
	case symbolType:
		return "symbol"
	}
	switch rt.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return "number"
	case reflect.Func:
		return "function"
	default:
		return "object"
	}
}

func ctyTypeTag(v cty.Value) string {
	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return "string"
	case ty.Equals(cty.Number):
		return "number"
	case ty.Equals(cty.Bool):
		return "boolean"
	default:
		return "object"
	}
}
