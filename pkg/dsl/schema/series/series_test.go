package series_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/pkg/dsl/kind"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/series"
)

type stubTable string

func (s stubTable) TableName() string { return string(s) }

func TestArithmeticPromotesKind(t *testing.T) {
	t.Parallel()

	age := series.NewField(stubTable("person"), "age", kind.Integer)
	weight := series.NewField(stubTable("person"), "weight", kind.Float)

	sum, err := series.Addition(age, weight)
	require.NoError(t, err)
	assert.True(t, sum.Kind().Equal(kind.Float))
}

func TestLogicalRejectsNonBoolean(t *testing.T) {
	t.Parallel()

	age := series.NewField(stubTable("person"), "age", kind.Integer)

	_, err := series.And(age, age)
	assert.ErrorIs(t, err, series.ErrNotBoolean)
}

func TestComparisonProducesBoolean(t *testing.T) {
	t.Parallel()

	age := series.NewField(stubTable("person"), "age", kind.Integer)

	cmp, err := series.GreaterThan(age, 18)
	require.NoError(t, err)
	assert.True(t, cmp.Kind().Equal(kind.Boolean))
}

func TestAliasPreservesElementKind(t *testing.T) {
	t.Parallel()

	age := series.NewField(stubTable("person"), "age", kind.Integer)
	aliased := age.Alias("years")

	assert.Equal(t, "years", aliased.Name())
	assert.True(t, aliased.Kind().Equal(kind.Integer))
	assert.Equal(t, series.Element(age), aliased.Element())
}

func TestDisectFindsFieldsInExpressionTree(t *testing.T) {
	t.Parallel()

	age := series.NewField(stubTable("person"), "age", kind.Integer)
	weight := series.NewField(stubTable("person"), "weight", kind.Float)

	sum, err := series.Addition(age, weight)
	require.NoError(t, err)

	cmp, err := series.GreaterThan(sum, 100)
	require.NoError(t, err)

	fields := series.Disect(func(c series.Column) bool {
		_, ok := c.(*series.Field)
		return ok
	}, cmp)

	require.Len(t, fields, 2)
}

func TestAcceptVisitsPostOrder(t *testing.T) {
	t.Parallel()

	age := series.NewField(stubTable("person"), "age", kind.Integer)
	weight := series.NewField(stubTable("person"), "weight", kind.Float)

	sum, err := series.Addition(age, weight)
	require.NoError(t, err)

	var order []series.Column
	sum.Accept(series.VisitorFunc(func(c series.Column) {
		order = append(order, c)
	}))

	require.Len(t, order, 3)
	assert.Equal(t, series.Column(age), order[0])
	assert.Equal(t, series.Column(weight), order[1])
	assert.Equal(t, series.Column(sum), order[2])
}
