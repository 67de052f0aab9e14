package asset_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/internal/asset"
)

// TestTagRoundTrips covers core spec §8 S1: Tag.loads(t.dumps()) == t
// for distinct-UUID states and microsecond-truncated timestamps.
func TestTagRoundTrips(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, 1, 2, 3, 4, 5, 6000, time.UTC)
	tag := asset.Tag{
		Training: asset.Training{Timestamp: &ts, Ordinal: float64(42)},
		Tuning:   asset.Tuning{},
		States:   []uuid.UUID{uuid.MustParse("00000000-0000-0000-0000-000000000001")},
	}

	raw, err := tag.Dumps()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	states, ok := doc["states"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"00000000-0000-0000-0000-000000000001"}, states)

	loaded, err := asset.Loads(raw)
	require.NoError(t, err)
	assert.Equal(t, tag, loaded)
}

func TestTagEmptyWhenNoModeTriggered(t *testing.T) {
	t.Parallel()

	assert.True(t, asset.NOTAG.Empty())

	triggered := asset.Training{}.Trigger(asset.NOTAG, time.Now(), 1)
	assert.False(t, triggered.Empty())
}

func TestTagReplaceRejectsModeFields(t *testing.T) {
	t.Parallel()

	_, err := asset.NOTAG.Replace(map[string]any{"training": asset.Training{}})
	require.Error(t, err)

	states := []uuid.UUID{uuid.New()}

	replaced, err := asset.NOTAG.Replace(map[string]any{"states": states})
	require.NoError(t, err)
	assert.Equal(t, states, replaced.States)
}

func TestTrainingTriggerStampsTimestampAndOrdinal(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tag := asset.Training{}.Trigger(asset.NOTAG, now, "ordinal-value")

	require.NotNil(t, tag.Training.Timestamp)
	assert.True(t, tag.Training.Timestamp.Equal(now))
	assert.Equal(t, "ordinal-value", tag.Training.Ordinal)
}
