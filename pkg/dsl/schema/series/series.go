// Package series implements the column algebra: the hierarchical Column
// sum (Aliased, Literal, Field, Expression) used to build typed
// expression trees over a schema, a post-order Visitor, and the disect
// helper that extracts subexpression instances of a given shape.
package series

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/dsl/kind"
)

// Visitor receives a post-order callback for every Column node an
// expression tree's Accept traverses: operand terms are visited before
// the composite that holds them.
type Visitor interface {
	VisitColumn(Column)
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(Column)

// VisitColumn implements Visitor.
func (f VisitorFunc) VisitColumn(c Column) { f(c) }

// Column is the base contract of the column algebra: a typed, named (or
// anonymous) tree node that accepts a Visitor and exposes its unaliased
// Element form.
type Column interface {
	// Name is the column's name, or "" if it has none (only Field and
	// Aliased carry one).
	Name() string
	// Kind is the column's value type.
	Kind() kind.Kind
	// Accept visits this column's tree in post-order: operand terms
	// first, then this node.
	Accept(Visitor)
	// Element returns the unaliased column this one wraps: itself for
	// every variant except Aliased.
	Element() Element
}

// Element is any non-Aliased column: Literal, Field, or Expression. Only
// Elements can be combined by the comparison/logical/arithmetic
// constructors and carry an Alias method to wrap themselves.
type Element interface {
	Column
	Alias(name string) *Aliased
}

// cast wraps a bare Go value as a Literal unless it is already a Column.
func cast(value any) (Column, error) {
	if c, ok := value.(Column); ok {
		return c, nil
	}

	k, err := kind.Reflect(value)
	if err != nil {
		return nil, err
	}

	return NewLiteral(value, k), nil
}

func elementOf(value any) (Element, error) {
	c, err := cast(value)
	if err != nil {
		return nil, err
	}

	return c.Element(), nil
}

// Disect returns the set (by pointer identity) of subexpression instances
// matching predicate, reachable from any of the given columns' trees.
func Disect(predicate func(Column) bool, columns ...Column) []Column {
	var terms []Column

	seen := map[Column]bool{}

	visitor := VisitorFunc(func(c Column) {
		if !predicate(c) || seen[c] {
			return
		}

		seen[c] = true

		terms = append(terms, c)
	})

	for _, c := range columns {
		c.Accept(visitor)
	}

	return terms
}

// Aliased wraps an Element under an explicit name, e.g. the result of a
// `SELECT expr AS alias` clause.
type Aliased struct {
	elem Element
	name string
}

// NewAliased wraps column's unaliased Element under alias.
func NewAliased(column Column, alias string) *Aliased {
	return &Aliased{elem: column.Element(), name: alias}
}

func (a *Aliased) Name() string     { return a.name }
func (a *Aliased) Kind() kind.Kind  { return a.elem.Kind() }
func (a *Aliased) Element() Element { return a.elem }
func (a *Aliased) Accept(v Visitor) {
	a.elem.Accept(v)
	v.VisitColumn(a)
}

// Literal is a constant value column.
type Literal struct {
	value any
	kind  kind.Kind
}

// NewLiteral constructs a Literal of the given kind. A bare Go value passed
// to an expression constructor becomes a Literal whose kind is inferred
// via kind.Reflect.
func NewLiteral(value any, k kind.Kind) *Literal {
	return &Literal{value: value, kind: k}
}

func (l *Literal) Name() string        { return "" }
func (l *Literal) Kind() kind.Kind      { return l.kind }
func (l *Literal) Element() Element     { return l }
func (l *Literal) Value() any           { return l.value }
func (l *Literal) Accept(v Visitor)     { v.VisitColumn(l) }
func (l *Literal) Alias(name string) *Aliased { return NewAliased(l, name) }

// TableRef is the minimal surface a Field's owning table must expose;
// satisfied by frame.Table without creating a series<->frame import cycle.
type TableRef interface {
	TableName() string
}

// Field is a schema column bound to its owning table.
type Field struct {
	table TableRef
	name  string
	kind  kind.Kind
}

// NewField constructs a Field named name, of kind k, bound to table.
func NewField(table TableRef, name string, k kind.Kind) *Field {
	return &Field{table: table, name: name, kind: k}
}

func (f *Field) Name() string          { return f.name }
func (f *Field) Kind() kind.Kind       { return f.kind }
func (f *Field) Element() Element      { return f }
func (f *Field) Table() TableRef       { return f.table }
func (f *Field) Accept(v Visitor)      { v.VisitColumn(f) }
func (f *Field) Alias(name string) *Aliased { return NewAliased(f, name) }

// Op identifies an Expression's operator.
type Op uint8

const (
	OpEqual Op = iota
	OpNotEqual
	OpLessThan
	OpLessEqual
	OpGreaterThan
	OpGreaterEqual
	OpIsNull
	OpNotNull
	OpAnd
	OpOr
	OpNot
	OpAddition
	OpSubtraction
	OpMultiplication
	OpDivision
	OpModulus
	OpCast
	OpCount
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLessThan:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpIsNull:
		return "IS NULL"
	case OpNotNull:
		return "IS NOT NULL"
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpNot:
		return "NOT"
	case OpAddition:
		return "+"
	case OpSubtraction:
		return "-"
	case OpMultiplication:
		return "*"
	case OpDivision:
		return "/"
	case OpModulus:
		return "%"
	case OpCast:
		return "CAST"
	case OpCount:
		return "COUNT"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Expression is a composite column built from an operator and its operand
// terms. Operator-construction semantics define tree shape only;
// evaluation is an external collaborator's concern.
type Expression struct {
	op    Op
	terms []Element
	kind  kind.Kind
}

func (e *Expression) Name() string          { return "" }
func (e *Expression) Kind() kind.Kind       { return e.kind }
func (e *Expression) Element() Element      { return e }
func (e *Expression) Op() Op                { return e.op }
func (e *Expression) Alias(name string) *Aliased { return NewAliased(e, name) }

func (e *Expression) Terms() []Element {
	out := make([]Element, len(e.terms))
	copy(out, e.terms)

	return out
}

func (e *Expression) Accept(v Visitor) {
	for _, t := range e.terms {
		t.Accept(v)
	}

	v.VisitColumn(e)
}

func comparison(op Op, left, right any) (*Expression, error) {
	l, err := elementOf(left)
	if err != nil {
		return nil, err
	}

	r, err := elementOf(right)
	if err != nil {
		return nil, err
	}

	return &Expression{op: op, terms: []Element{l, r}, kind: kind.Boolean}, nil
}

// Equal builds an `a = b` comparison. It produces Boolean regardless of
// the operand kinds. It builds a tree node and does not evaluate it; each
// call returns a new *Expression, distinct by pointer identity.
func Equal(left, right any) (*Expression, error) { return comparison(OpEqual, left, right) }

// NotEqual builds an `a != b` comparison.
func NotEqual(left, right any) (*Expression, error) { return comparison(OpNotEqual, left, right) }

// LessThan builds an `a < b` comparison.
func LessThan(left, right any) (*Expression, error) { return comparison(OpLessThan, left, right) }

// LessEqual builds an `a <= b` comparison.
func LessEqual(left, right any) (*Expression, error) { return comparison(OpLessEqual, left, right) }

// GreaterThan builds an `a > b` comparison.
func GreaterThan(left, right any) (*Expression, error) {
	return comparison(OpGreaterThan, left, right)
}

// GreaterEqual builds an `a >= b` comparison.
func GreaterEqual(left, right any) (*Expression, error) {
	return comparison(OpGreaterEqual, left, right)
}

// IsNull builds an `a IS NULL` test.
func IsNull(operand any) (*Expression, error) {
	e, err := elementOf(operand)
	if err != nil {
		return nil, err
	}

	return &Expression{op: OpIsNull, terms: []Element{e}, kind: kind.Boolean}, nil
}

// NotNull builds an `a IS NOT NULL` test.
func NotNull(operand any) (*Expression, error) {
	e, err := elementOf(operand)
	if err != nil {
		return nil, err
	}

	return &Expression{op: OpNotNull, terms: []Element{e}, kind: kind.Boolean}, nil
}

// ErrNotBoolean is returned when a logical operator is given a non-Boolean
// operand.
var ErrNotBoolean = fmt.Errorf("series: operand not a Boolean-kind column")

func logical(op Op, operands ...any) (*Expression, error) {
	terms := make([]Element, 0, len(operands))

	for _, o := range operands {
		e, err := elementOf(o)
		if err != nil {
			return nil, err
		}

		if !e.Kind().Equal(kind.Boolean) {
			return nil, fmt.Errorf("%w: %s", ErrNotBoolean, e.Kind())
		}

		terms = append(terms, e)
	}

	return &Expression{op: op, terms: terms, kind: kind.Boolean}, nil
}

// And builds an `a AND b` conjunction; both operands must be Boolean-kind.
func And(left, right any) (*Expression, error) { return logical(OpAnd, left, right) }

// Or builds an `a OR b` disjunction; both operands must be Boolean-kind.
func Or(left, right any) (*Expression, error) { return logical(OpOr, left, right) }

// Not builds a `NOT a` negation; the operand must be Boolean-kind.
func Not(operand any) (*Expression, error) { return logical(OpNot, operand) }

func arithmetic(op Op, left, right any) (*Expression, error) {
	l, err := elementOf(left)
	if err != nil {
		return nil, err
	}

	r, err := elementOf(right)
	if err != nil {
		return nil, err
	}

	if !l.Kind().IsNumeric() || !r.Kind().IsNumeric() {
		return nil, fmt.Errorf("series: arithmetic operand not numeric: %s, %s", l.Kind(), r.Kind())
	}

	return &Expression{op: op, terms: []Element{l, r}, kind: kind.Promote(l.Kind(), r.Kind())}, nil
}

// Addition builds an `a + b` expression; the result kind is the greater
// cardinality of the two operand kinds.
func Addition(left, right any) (*Expression, error) { return arithmetic(OpAddition, left, right) }

// Subtraction builds an `a - b` expression.
func Subtraction(left, right any) (*Expression, error) {
	return arithmetic(OpSubtraction, left, right)
}

// Multiplication builds an `a * b` expression.
func Multiplication(left, right any) (*Expression, error) {
	return arithmetic(OpMultiplication, left, right)
}

// Division builds an `a / b` expression.
func Division(left, right any) (*Expression, error) { return arithmetic(OpDivision, left, right) }

// Modulus builds an `a % b` expression.
func Modulus(left, right any) (*Expression, error) { return arithmetic(OpModulus, left, right) }

// Cast builds a `CAST(a AS target)` expression. The expression's Kind is
// target, not a promotion of the operand's kind.
func Cast(operand any, target kind.Kind) (*Expression, error) {
	e, err := elementOf(operand)
	if err != nil {
		return nil, err
	}

	return &Expression{op: OpCast, terms: []Element{e}, kind: target}, nil
}

// Count builds a `COUNT(a)` aggregate, or `COUNT(*)` when called with no
// operand.
func Count(operand ...any) (*Expression, error) {
	if len(operand) > 1 {
		return nil, fmt.Errorf("series: count takes at most one operand, got %d", len(operand))
	}

	var terms []Element

	if len(operand) == 1 {
		e, err := elementOf(operand[0])
		if err != nil {
			return nil, err
		}

		terms = []Element{e}
	}

	return &Expression{op: OpCount, terms: terms, kind: kind.Integer}, nil
}
