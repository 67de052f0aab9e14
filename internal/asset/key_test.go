package asset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/internal/asset"
)

func TestLineageKeyParseAndCompare(t *testing.T) {
	t.Parallel()

	a, err := asset.ParseLineageKey("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, asset.NewLineageKey(1, 2, 3), a)
	assert.Equal(t, "1.2.3", a.String())

	b, err := asset.ParseLineageKey("1.10.0")
	require.NoError(t, err)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestLineageKeyParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	_, err := asset.ParseLineageKey("not-a-version")
	require.Error(t, err)
	assert.ErrorIs(t, err, asset.ErrLevelInvalid)
}

func TestGenerationKeyNextAndValidation(t *testing.T) {
	t.Parallel()

	first, err := asset.NewGenerationKey(1)
	require.NoError(t, err)
	assert.Equal(t, asset.MinGeneration, first)
	assert.Equal(t, asset.GenerationKey(2), first.Next())

	_, err = asset.NewGenerationKey(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, asset.ErrLevelInvalid)
}
