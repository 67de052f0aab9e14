// Package kind implements the DSL's value-type sum: the scalar and Array
// kinds columns and literals carry, with the cardinality order used for
// numeric promotion under arithmetic composition.
package kind

import (
	"fmt"
	"time"
)

// Code identifies a scalar or compound kind variant.
type Code uint8

// Scalar and compound kind codes, ordered by Code value for deterministic
// switch dispatch (not the promotion cardinality, see cardinality).
const (
	CodeBoolean Code = iota
	CodeInteger
	CodeFloat
	CodeDecimal
	CodeString
	CodeDate
	CodeTimestamp
	CodeArray
)

func (c Code) String() string {
	switch c {
	case CodeBoolean:
		return "Boolean"
	case CodeInteger:
		return "Integer"
	case CodeFloat:
		return "Float"
	case CodeDecimal:
		return "Decimal"
	case CodeString:
		return "String"
	case CodeDate:
		return "Date"
	case CodeTimestamp:
		return "Timestamp"
	case CodeArray:
		return "Array"
	default:
		return fmt.Sprintf("Code(%d)", uint8(c))
	}
}

// Kind is an immutable value-type descriptor. Array kinds carry an Element
// kind; all others leave Element nil.
type Kind struct {
	code    Code
	element *Kind
}

var (
	Boolean   = Kind{code: CodeBoolean}
	Integer   = Kind{code: CodeInteger}
	Float     = Kind{code: CodeFloat}
	Decimal   = Kind{code: CodeDecimal}
	String    = Kind{code: CodeString}
	Date      = Kind{code: CodeDate}
	Timestamp = Kind{code: CodeTimestamp}
)

// Array constructs the kind of an array whose elements are of kind elem.
func Array(elem Kind) Kind {
	e := elem

	return Kind{code: CodeArray, element: &e}
}

// Code returns the kind's variant tag.
func (k Kind) Code() Code { return k.code }

// Element returns the array element kind and true, or the zero Kind and
// false when k is not CodeArray.
func (k Kind) Element() (Kind, bool) {
	if k.code != CodeArray || k.element == nil {
		return Kind{}, false
	}

	return *k.element, true
}

// Equal reports whether two kinds are structurally identical (same code,
// and for Array, recursively equal element kinds).
func (k Kind) Equal(other Kind) bool {
	if k.code != other.code {
		return false
	}

	if k.code != CodeArray {
		return true
	}

	if k.element == nil || other.element == nil {
		return k.element == other.element
	}

	return k.element.Equal(*other.element)
}

func (k Kind) String() string {
	if k.code == CodeArray {
		elem, _ := k.Element()

		return fmt.Sprintf("Array<%s>", elem)
	}

	return k.code.String()
}

// cardinality orders the numeric-promotable kinds for arithmetic kind
// promotion (core spec 4.F): the result of combining two operand kinds is
// the operand of maximum cardinality. Non-numeric kinds have no defined
// promotion partner and are compared for equality only by callers.
var cardinality = map[Code]int{
	CodeBoolean: 0,
	CodeInteger: 1,
	CodeFloat:   2,
	CodeDecimal: 3,
}

// IsNumeric reports whether k participates in arithmetic promotion.
func (k Kind) IsNumeric() bool {
	_, ok := cardinality[k.code]

	return ok && k.code != CodeBoolean
}

// Promote returns the kind of greater arithmetic cardinality between a and
// b. Both must be numeric (Integer, Float, or Decimal); Promote panics on
// a non-numeric operand, as kind promotion is only ever invoked by the
// column algebra after both operands have already been validated.
func Promote(a, b Kind) Kind {
	ca, aok := cardinality[a.code]
	cb, bok := cardinality[b.code]

	if !aok || !bok || a.code == CodeBoolean || b.code == CodeBoolean {
		panic(fmt.Sprintf("kind: cannot promote non-numeric kinds %s, %s", a, b))
	}

	if ca >= cb {
		return a
	}

	return b
}

// Reflect infers the Kind of a native Go value, for constructing a Literal
// column from a bare value the caller hasn't already typed. It covers the
// scalar Go types the DSL's literal table supports; any other type is
// reported as an error rather than guessed.
func Reflect(value any) (Kind, error) {
	switch value.(type) {
	case bool:
		return Boolean, nil
	case int, int8, int16, int32, int64:
		return Integer, nil
	case float32, float64:
		return Float, nil
	case string:
		return String, nil
	case time.Time:
		return Timestamp, nil
	default:
		return Kind{}, fmt.Errorf("kind: cannot reflect literal kind for %T", value)
	}
}
