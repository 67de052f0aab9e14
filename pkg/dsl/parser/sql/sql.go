// Package sql implements the reference ANSI SQL parser.Bundle: the
// table-driven emitter for every frame/series node type, with
// precedence-preserving parenthesization of rendered expression operands.
package sql

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/deeplearning2012/forml/pkg/dsl/kind"
	"github.com/deeplearning2012/forml/pkg/dsl/parser"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/frame"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/series"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05.000000"
)

// associative matches an operand fragment that is already atomic: a bare
// identifier/function call, a quoted string literal, or a typed-literal
// form (TIMESTAMP '...' / DATE '...'). clean also leaves a fragment alone
// when one outer pair of parentheses encloses all of it. Anything else is
// wrapped in parentheses before being spliced into a binary/unary
// expression template.
var associative = regexp.MustCompile(`^\s*(?:[\w.]+(?:\([^()]*\))?|'[^']*'|TIMESTAMP\s*'[^']*'|DATE\s*'[^']*')\s*$`)

func clean(arg string) string {
	if associative.MatchString(arg) {
		return arg
	}

	if strings.HasPrefix(arg, "(") && strings.HasSuffix(arg, ")") {
		depth := 0
		for i, r := range arg {
			if r == '(' {
				depth++
			} else if r == ')' {
				depth--
			}

			if depth == 0 {
				if i == len(arg)-1 {
					return arg
				}

				break
			}
		}
	}

	return "(" + arg + ")"
}

var kindNames = map[kind.Code]string{
	kind.CodeBoolean:   "BOOLEAN",
	kind.CodeInteger:   "BIGINT",
	kind.CodeFloat:     "DOUBLE",
	kind.CodeDecimal:   "DECIMAL",
	kind.CodeString:    "VARCHAR",
	kind.CodeDate:      "DATE",
	kind.CodeTimestamp: "TIMESTAMP",
}

var joinNames = map[frame.JoinKind]string{
	frame.JoinLeft:  "LEFT",
	frame.JoinRight: "RIGHT",
	frame.JoinInner: "INNER",
	frame.JoinFull:  "FULL",
	frame.JoinCross: "CROSS",
}

var setNames = map[frame.SetKind]string{
	frame.SetUnion:        "UNION",
	frame.SetIntersection: "INTERSECT",
	frame.SetDifference:   "EXCEPT",
}

var orderNames = map[frame.OrderDirection]string{
	frame.Ascending:  "ASC",
	frame.Descending: "DESC",
}

type expressionTemplate struct {
	format string
	arity  int
}

var expressionTemplates = map[series.Op]expressionTemplate{
	series.OpAddition:       {"%s + %s", 2},
	series.OpSubtraction:    {"%s - %s", 2},
	series.OpMultiplication: {"%s * %s", 2},
	series.OpDivision:       {"%s / %s", 2},
	series.OpModulus:        {"%s %% %s", 2},
	series.OpLessThan:       {"%s < %s", 2},
	series.OpLessEqual:      {"%s <= %s", 2},
	series.OpGreaterThan:    {"%s > %s", 2},
	series.OpGreaterEqual:   {"%s >= %s", 2},
	series.OpEqual:          {"%s = %s", 2},
	series.OpNotEqual:       {"%s != %s", 2},
	series.OpIsNull:         {"%s IS NULL", 1},
	series.OpNotNull:        {"%s IS NOT NULL", 1},
	series.OpAnd:            {"%s AND %s", 2},
	series.OpOr:             {"%s OR %s", 2},
	series.OpNot:            {"NOT %s", 1},
}

// Bundle is the ANSI SQL parser.Bundle implementation.
type Bundle struct{}

var _ parser.Bundle = Bundle{}

func (Bundle) GenerateTable(table *frame.Table) (string, error) {
	return table.TableName(), nil
}

func (Bundle) GenerateReference(source, alias string) (string, error) {
	return fmt.Sprintf("%s AS %s", source, alias), nil
}

func (Bundle) GenerateJoin(left, right, condition string, k frame.JoinKind) (string, error) {
	name, ok := joinNames[k]
	if !ok {
		return "", fmt.Errorf("%w: join kind %v", parser.ErrUnsupported, k)
	}

	if k == frame.JoinCross {
		return fmt.Sprintf("%s CROSS JOIN %s", left, right), nil
	}

	return fmt.Sprintf("%s %s JOIN %s ON %s", left, name, right, condition), nil
}

func (Bundle) GenerateSet(left, right string, k frame.SetKind) (string, error) {
	name, ok := setNames[k]
	if !ok {
		return "", fmt.Errorf("%w: set kind %v", parser.ErrUnsupported, k)
	}

	return fmt.Sprintf("%s %s %s", left, name, right), nil
}

func (Bundle) GenerateOrdering(column string, direction frame.OrderDirection) (string, error) {
	name, ok := orderNames[direction]
	if !ok {
		return "", fmt.Errorf("%w: order direction %v", parser.ErrUnsupported, direction)
	}

	return fmt.Sprintf("%s %s", column, name), nil
}

func (Bundle) GenerateAlias(column, alias string) (string, error) {
	return fmt.Sprintf("%s AS %s", column, alias), nil
}

func (Bundle) GenerateField(field *series.Field) (string, error) {
	return fmt.Sprintf("%s.%s", field.Table().TableName(), field.Name()), nil
}

func (b Bundle) GenerateLiteral(literal *series.Literal) (string, error) {
	return b.renderLiteral(literal.Value(), literal.Kind())
}

func (b Bundle) renderLiteral(value any, k kind.Kind) (string, error) {
	switch k.Code() {
	case kind.CodeString:
		return fmt.Sprintf("'%v'", value), nil
	case kind.CodeInteger, kind.CodeFloat, kind.CodeDecimal:
		return fmt.Sprintf("%v", value), nil
	case kind.CodeBoolean:
		return fmt.Sprintf("%v", value), nil
	case kind.CodeTimestamp:
		t, ok := value.(time.Time)
		if !ok {
			return "", fmt.Errorf("%w: timestamp literal value %T", parser.ErrUnsupported, value)
		}

		return fmt.Sprintf("TIMESTAMP '%s'", t.Format(timestampLayout)), nil
	case kind.CodeDate:
		t, ok := value.(time.Time)
		if !ok {
			return "", fmt.Errorf("%w: date literal value %T", parser.ErrUnsupported, value)
		}

		return fmt.Sprintf("DATE '%s'", t.Format(dateLayout)), nil
	case kind.CodeArray:
		elem, _ := k.Element()

		values, ok := value.([]any)
		if !ok {
			return "", fmt.Errorf("%w: array literal value %T", parser.ErrUnsupported, value)
		}

		rendered := make([]string, len(values))

		for i, v := range values {
			r, err := b.renderLiteral(v, elem)
			if err != nil {
				return "", err
			}

			rendered[i] = r
		}

		return fmt.Sprintf("ARRAY[%s]", strings.Join(rendered, ", ")), nil
	default:
		return "", fmt.Errorf("%w: literal kind %s", parser.ErrUnsupported, k)
	}
}

func (Bundle) GenerateExpression(op series.Op, arguments []string, resultKind kind.Kind) (string, error) {
	switch op {
	case series.OpCast:
		if len(arguments) != 1 {
			return "", fmt.Errorf("%w: cast expects 1 operand, got %d", parser.ErrUnsupported, len(arguments))
		}

		name, ok := kindNames[resultKind.Code()]
		if !ok {
			return "", fmt.Errorf("%w: cast target kind %s", parser.ErrUnsupported, resultKind)
		}

		return fmt.Sprintf("cast(%s AS %s)", clean(arguments[0]), name), nil
	case series.OpCount:
		if len(arguments) == 0 {
			return "count(*)", nil
		}

		if len(arguments) != 1 {
			return "", fmt.Errorf("%w: count expects 0 or 1 operand, got %d", parser.ErrUnsupported, len(arguments))
		}

		return fmt.Sprintf("count(%s)", clean(arguments[0])), nil
	}

	tpl, ok := expressionTemplates[op]
	if !ok {
		return "", fmt.Errorf("%w: expression %s", parser.ErrUnsupported, op)
	}

	if len(arguments) != tpl.arity {
		return "", fmt.Errorf("%w: expression %s expects %d operands, got %d",
			parser.ErrUnsupported, op, tpl.arity, len(arguments))
	}

	cleaned := make([]any, len(arguments))
	for i, a := range arguments {
		cleaned[i] = clean(a)
	}

	return fmt.Sprintf(tpl.format, cleaned...), nil
}

func (Bundle) GenerateQuery(source string, columns []string, where string, groupby []string,
	having string, orderby []string, rows *frame.Rows) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: query with no select columns", parser.ErrUnsupported)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "SELECT %s\nFROM %s", strings.Join(columns, ", "), source)

	if where != "" {
		fmt.Fprintf(&b, "\nWHERE %s", where)
	}

	if len(groupby) > 0 {
		fmt.Fprintf(&b, "\nGROUP BY %s", strings.Join(groupby, ", "))
	}

	if having != "" {
		fmt.Fprintf(&b, "\nHAVING %s", having)
	}

	if len(orderby) > 0 {
		fmt.Fprintf(&b, "\nORDER BY %s", strings.Join(orderby, ", "))
	}

	if rows != nil {
		b.WriteString("\nLIMIT")

		if rows.Offset != 0 {
			fmt.Fprintf(&b, " %d,", rows.Offset)
		}

		fmt.Fprintf(&b, " %d", rows.Count)
	}

	return b.String(), nil
}
