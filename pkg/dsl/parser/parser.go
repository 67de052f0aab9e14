// Package parser implements the bundled bottom-up lowering engine: it
// walks a frame.Query's source and column trees in post order, keeping a
// stack of rendered fragments per tree, and delegates every node-type
// emission to a target-language Bundle.
package parser

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/dsl/kind"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/frame"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/series"
)

// ErrUnsupported is returned when a Bundle has no emitter registered for a
// node type the tree traversal encountered.
var ErrUnsupported = fmt.Errorf("parser: unsupported node")

// Bundle is the table-driven emitter a target query language implements.
// Every method receives already-rendered operand fragments; Bundle never
// walks the tree itself.
type Bundle interface {
	GenerateTable(table *frame.Table) (string, error)
	GenerateReference(source string, alias string) (string, error)
	GenerateJoin(left, right, condition string, kind frame.JoinKind) (string, error)
	GenerateSet(left, right string, kind frame.SetKind) (string, error)
	GenerateQuery(source string, columns []string, where string, groupby []string,
		having string, orderby []string, rows *frame.Rows) (string, error)
	GenerateOrdering(column string, direction frame.OrderDirection) (string, error)
	GenerateAlias(column, alias string) (string, error)
	GenerateLiteral(literal *series.Literal) (string, error)
	GenerateField(field *series.Field) (string, error)
	GenerateExpression(op series.Op, arguments []string, resultKind kind.Kind) (string, error)
}

// Parser drives a Bundle over a frame.Query, producing its rendered
// target-language statement.
type Parser struct {
	bundle Bundle
}

// New wraps bundle in a Parser.
func New(bundle Bundle) *Parser {
	return &Parser{bundle: bundle}
}

// Parse renders query's full statement.
func (p *Parser) Parse(query *frame.Query) (string, error) {
	source, err := p.source(query.Source())
	if err != nil {
		return "", err
	}

	columns := make([]string, len(query.Columns()))

	for i, c := range query.Columns() {
		rendered, err := p.column(c)
		if err != nil {
			return "", err
		}

		columns[i] = rendered
	}

	var where, having string

	if pred := query.Predicate(); pred != nil {
		if where, err = p.column(pred); err != nil {
			return "", err
		}
	}

	if pred := query.HavingPredicate(); pred != nil {
		if having, err = p.column(pred); err != nil {
			return "", err
		}
	}

	groupby := make([]string, len(query.Grouping()))

	for i, c := range query.Grouping() {
		if groupby[i], err = p.column(c); err != nil {
			return "", err
		}
	}

	orderby := make([]string, len(query.Ordering()))

	for i, o := range query.Ordering() {
		rendered, err := p.column(o.Column)
		if err != nil {
			return "", err
		}

		if orderby[i], err = p.bundle.GenerateOrdering(rendered, o.Direction); err != nil {
			return "", err
		}
	}

	return p.bundle.GenerateQuery(source, columns, where, groupby, having, orderby, query.Rows())
}

// source renders a frame.Source (Table, Join, Set, Reference, or a nested
// Query) via post-order traversal, one stack frame per call.
func (p *Parser) source(s frame.Source) (string, error) {
	switch v := s.(type) {
	case *frame.Table:
		return p.bundle.GenerateTable(v)
	case *frame.Join:
		left, err := p.source(v.Left())
		if err != nil {
			return "", err
		}

		right, err := p.source(v.Right())
		if err != nil {
			return "", err
		}

		var condition string

		if c := v.Condition(); c != nil {
			if condition, err = p.column(c); err != nil {
				return "", err
			}
		}

		return p.bundle.GenerateJoin(left, right, condition, v.Kind())
	case *frame.Set:
		left, err := p.source(v.Left())
		if err != nil {
			return "", err
		}

		right, err := p.source(v.Right())
		if err != nil {
			return "", err
		}

		return p.bundle.GenerateSet(left, right, v.Kind())
	case *frame.Reference:
		inner, err := p.source(v.Source())
		if err != nil {
			return "", err
		}

		return p.bundle.GenerateReference(inner, v.Alias())
	case *frame.Query:
		return p.Parse(v)
	default:
		return "", fmt.Errorf("%w: source type %T", ErrUnsupported, s)
	}
}

// column renders a series.Column via post-order traversal: operand terms
// are rendered (and their fragments popped off this call's local stack)
// before the composite itself is emitted.
func (p *Parser) column(c series.Column) (string, error) {
	switch v := c.(type) {
	case *series.Aliased:
		inner, err := p.column(v.Element())
		if err != nil {
			return "", err
		}

		return p.bundle.GenerateAlias(inner, v.Name())
	case *series.Literal:
		return p.bundle.GenerateLiteral(v)
	case *series.Field:
		return p.bundle.GenerateField(v)
	case *series.Expression:
		stack := make([]string, 0, len(v.Terms()))

		for _, term := range v.Terms() {
			rendered, err := p.column(term)
			if err != nil {
				return "", err
			}

			stack = append(stack, rendered)
		}

		return p.bundle.GenerateExpression(v.Op(), stack, v.Kind())
	default:
		return "", fmt.Errorf("%w: column type %T", ErrUnsupported, c)
	}
}
