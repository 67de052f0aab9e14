// Package frame implements the frame algebra: Table, Query, Join, Set, and
// Reference, the sources a Query selects from and the compositional sum
// the DSL parser lowers into a target query language.
package frame

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/dsl/schema/series"
)

// Visitor receives a post-order callback for every Source a Query's tree
// traversal reaches.
type Visitor interface {
	VisitSource(Source)
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(Source)

// VisitSource implements Visitor.
func (f VisitorFunc) VisitSource(s Source) { f(s) }

// Source is anything a Query can select from: a Table, another Query, a
// Join, a Set, or a Reference.
type Source interface {
	Accept(Visitor)
	// Queryable wraps source in a Query over the given columns, the
	// entry point for attaching where/groupby/having/orderby/limit
	// clauses.
	Queryable
}

// Queryable is the subset of Source operations that build a Query on top
// of it.
type Queryable interface {
	Select(columns ...series.Column) *Query
}

// Table is a named schema source: the base case of the frame algebra.
type Table struct {
	name    string
	columns []*series.Field
}

// NewTable declares a table named name. Fields referencing this table are
// constructed separately via series.NewField(table, ...) and then listed
// here via Columns for introspection.
func NewTable(name string, columns ...*series.Field) *Table {
	return &Table{name: name, columns: columns}
}

// TableName implements series.TableRef.
func (t *Table) TableName() string { return t.name }

// Columns returns the table's declared fields.
func (t *Table) Columns() []*series.Field {
	out := make([]*series.Field, len(t.columns))
	copy(out, t.columns)

	return out
}

func (t *Table) Accept(v Visitor) { v.VisitSource(t) }

// Select wraps t in a Query over the given columns.
func (t *Table) Select(columns ...series.Column) *Query {
	return &Query{source: t, columns: columns}
}

// JoinKind identifies the kind of a Join.
type JoinKind uint8

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFull:
		return "FULL"
	case JoinCross:
		return "CROSS"
	default:
		return fmt.Sprintf("JoinKind(%d)", uint8(k))
	}
}

// Join combines two sources under a condition (nil for Cross).
type Join struct {
	left, right Source
	condition   series.Column
	kind        JoinKind
}

// NewJoin builds a Join of kind between left and right, under condition
// (condition must be nil for JoinCross).
func NewJoin(left, right Source, condition series.Column, kind JoinKind) *Join {
	return &Join{left: left, right: right, condition: condition, kind: kind}
}

func (j *Join) Left() Source            { return j.left }
func (j *Join) Right() Source           { return j.right }
func (j *Join) Condition() series.Column { return j.condition }
func (j *Join) Kind() JoinKind          { return j.kind }

func (j *Join) Accept(v Visitor) {
	j.left.Accept(v)
	j.right.Accept(v)
	v.VisitSource(j)
}

// Select wraps j in a Query over the given columns.
func (j *Join) Select(columns ...series.Column) *Query {
	return &Query{source: j, columns: columns}
}

// SetKind identifies the kind of a Set combination.
type SetKind uint8

const (
	SetUnion SetKind = iota
	SetIntersection
	SetDifference
)

func (k SetKind) String() string {
	switch k {
	case SetUnion:
		return "UNION"
	case SetIntersection:
		return "INTERSECT"
	case SetDifference:
		return "EXCEPT"
	default:
		return fmt.Sprintf("SetKind(%d)", uint8(k))
	}
}

// Set combines two sources positionally under a set operator.
type Set struct {
	left, right Source
	kind        SetKind
}

// NewSet builds a Set of kind between left and right.
func NewSet(left, right Source, kind SetKind) *Set {
	return &Set{left: left, right: right, kind: kind}
}

func (s *Set) Left() Source  { return s.left }
func (s *Set) Right() Source { return s.right }
func (s *Set) Kind() SetKind { return s.kind }

func (s *Set) Accept(v Visitor) {
	s.left.Accept(v)
	s.right.Accept(v)
	v.VisitSource(s)
}

// Select wraps s in a Query over the given columns.
func (s *Set) Select(columns ...series.Column) *Query {
	return &Query{source: s, columns: columns}
}

// Reference is an aliased subframe, used to disambiguate repeated use of
// the same source (e.g. a self-join).
type Reference struct {
	source Source
	alias  string
}

// NewReference aliases source as alias.
func NewReference(source Source, alias string) *Reference {
	return &Reference{source: source, alias: alias}
}

// TableName implements series.TableRef, letting a Reference's alias stand
// in as the owning table name for fields projected through it.
func (r *Reference) TableName() string { return r.alias }

func (r *Reference) Source() Source { return r.source }
func (r *Reference) Alias() string  { return r.alias }

func (r *Reference) Accept(v Visitor) {
	r.source.Accept(v)
	v.VisitSource(r)
}

// Select wraps r in a Query over the given columns.
func (r *Reference) Select(columns ...series.Column) *Query {
	return &Query{source: r, columns: columns}
}

// OrderDirection is the sort direction of a single Query.OrderBy term.
type OrderDirection uint8

const (
	Ascending OrderDirection = iota
	Descending
)

// Ordering pairs a column with its sort direction.
type Ordering struct {
	Column    series.Column
	Direction OrderDirection
}

// Rows bounds a Query's result with an optional offset, mirroring SQL's
// `LIMIT count [OFFSET offset]`.
type Rows struct {
	Count  int
	Offset int
}

// Query is a select statement over a Source: select list, optional
// predicates, grouping/having, ordering, and a row limit.
type Query struct {
	source  Source
	columns []series.Column
	where   series.Column
	groupBy []series.Column
	having  series.Column
	orderBy []Ordering
	rows    *Rows
}

// Source returns the query's underlying source.
func (q *Query) Source() Source { return q.source }

// Columns returns the query's select list.
func (q *Query) Columns() []series.Column {
	out := make([]series.Column, len(q.columns))
	copy(out, q.columns)

	return out
}

// Where returns a copy of the query with predicate added as its filter.
func (q *Query) Where(predicate series.Column) *Query {
	clone := *q
	clone.where = predicate

	return &clone
}

// Predicate returns the query's where clause, or nil if unset.
func (q *Query) Predicate() series.Column { return q.where }

// GroupBy returns a copy of the query grouped by the given columns.
func (q *Query) GroupBy(columns ...series.Column) *Query {
	clone := *q
	clone.groupBy = columns

	return &clone
}

// Grouping returns the query's group-by columns.
func (q *Query) Grouping() []series.Column {
	out := make([]series.Column, len(q.groupBy))
	copy(out, q.groupBy)

	return out
}

// Having returns a copy of the query with predicate added as its group
// filter.
func (q *Query) Having(predicate series.Column) *Query {
	clone := *q
	clone.having = predicate

	return &clone
}

// HavingPredicate returns the query's having clause, or nil if unset.
func (q *Query) HavingPredicate() series.Column { return q.having }

// OrderBy returns a copy of the query ordered by the given terms.
func (q *Query) OrderBy(orderings ...Ordering) *Query {
	clone := *q
	clone.orderBy = orderings

	return &clone
}

// Ordering returns the query's order-by terms.
func (q *Query) Ordering() []Ordering {
	out := make([]Ordering, len(q.orderBy))
	copy(out, q.orderBy)

	return out
}

// Limit returns a copy of the query bounded to rows.
func (q *Query) Limit(rows Rows) *Query {
	clone := *q
	clone.rows = &rows

	return &clone
}

// Rows returns the query's row bound, or nil if unset.
func (q *Query) Rows() *Rows { return q.rows }

func (q *Query) Accept(v Visitor) {
	q.source.Accept(v)
	v.VisitSource(q)
}

// Select wraps q in a new Query selecting the given columns from it as a
// subframe.
func (q *Query) Select(columns ...series.Column) *Query {
	return &Query{source: q, columns: columns}
}
