package sql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/pkg/dsl/kind"
	"github.com/deeplearning2012/forml/pkg/dsl/parser"
	"github.com/deeplearning2012/forml/pkg/dsl/parser/sql"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/frame"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/series"
)

func TestSimpleSelectWhereOrderLimit(t *testing.T) {
	t.Parallel()

	person := frame.NewTable("person")
	age := series.NewField(person, "age", kind.Integer)
	name := series.NewField(person, "name", kind.String)

	pred, err := series.GreaterThan(age, 18)
	require.NoError(t, err)

	query := person.Select(name, age).
		Where(pred).
		OrderBy(frame.Ordering{Column: age, Direction: frame.Descending}).
		Limit(frame.Rows{Count: 10})

	p := parser.New(sql.Bundle{})
	rendered, err := p.Parse(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT person.name, person.age\n"+
		"FROM person\n"+
		"WHERE person.age > 18\n"+
		"ORDER BY person.age DESC\n"+
		"LIMIT 10", rendered)
}

func TestNestedExpressionIsMinimallyParenthesized(t *testing.T) {
	t.Parallel()

	person := frame.NewTable("person")
	age := series.NewField(person, "age", kind.Integer)
	weight := series.NewField(person, "weight", kind.Float)

	sum, err := series.Addition(age, weight)
	require.NoError(t, err)

	cmp, err := series.GreaterThan(sum, 100)
	require.NoError(t, err)

	query := person.Select(age).Where(cmp)

	p := parser.New(sql.Bundle{})
	rendered, err := p.Parse(query)
	require.NoError(t, err)

	assert.Contains(t, rendered, "WHERE (person.age + person.weight) > 100")
}

func TestJoinRendersOnClause(t *testing.T) {
	t.Parallel()

	person := frame.NewTable("person")
	pet := frame.NewTable("pet")
	personID := series.NewField(person, "id", kind.Integer)
	petOwner := series.NewField(pet, "owner_id", kind.Integer)

	cond, err := series.Equal(personID, petOwner)
	require.NoError(t, err)

	join := frame.NewJoin(person, pet, cond, frame.JoinLeft)
	query := join.Select(personID)

	p := parser.New(sql.Bundle{})
	rendered, err := p.Parse(query)
	require.NoError(t, err)

	assert.Contains(t, rendered, "person LEFT JOIN pet ON person.id = pet.owner_id")
}

func TestCastRendersTargetType(t *testing.T) {
	t.Parallel()

	person := frame.NewTable("person")
	age := series.NewField(person, "age", kind.Integer)

	cast, err := series.Cast(age, kind.String)
	require.NoError(t, err)

	query := person.Select(cast.Alias("age_str"))

	p := parser.New(sql.Bundle{})
	rendered, err := p.Parse(query)
	require.NoError(t, err)

	assert.Contains(t, rendered, "cast(person.age AS VARCHAR) AS age_str")
}

func TestCountStarRendersWildcard(t *testing.T) {
	t.Parallel()

	person := frame.NewTable("person")
	count, err := series.Count()
	require.NoError(t, err)

	query := person.Select(count.Alias("n"))

	p := parser.New(sql.Bundle{})
	rendered, err := p.Parse(query)
	require.NoError(t, err)

	assert.Contains(t, rendered, "SELECT count(*) AS n")
}

func TestStringLiteralIsQuoted(t *testing.T) {
	t.Parallel()

	person := frame.NewTable("person")
	name := series.NewField(person, "name", kind.String)

	eq, err := series.Equal(name, "Alice")
	require.NoError(t, err)

	query := person.Select(name).Where(eq)

	p := parser.New(sql.Bundle{})
	rendered, err := p.Parse(query)
	require.NoError(t, err)

	assert.Contains(t, rendered, "person.name = 'Alice'")
}
