package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/internal/provider"
	"github.com/deeplearning2012/forml/internal/runner"
)

func TestFeedPoolMatch(t *testing.T) {
	t.Parallel()

	primary := provider.NewInMemFeed("primary", nil)
	pool := provider.NewFeedPool(map[string]runner.Feed{"primary": primary})

	found, err := pool.Match("primary")
	require.NoError(t, err)
	assert.Same(t, primary, found)

	_, err = pool.Match("missing")
	require.ErrorIs(t, err, provider.ErrFeedNotMatched)
}

func TestSinkPoolMatch(t *testing.T) {
	t.Parallel()

	primary := provider.NewInMemSink("primary")
	pool := provider.NewSinkPool(map[string]runner.Sink{"primary": primary})

	found, err := pool.Match("primary")
	require.NoError(t, err)
	assert.Same(t, primary, found)

	_, err = pool.Match("missing")
	require.ErrorIs(t, err, provider.ErrSinkNotMatched)
}
