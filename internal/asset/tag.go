package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// tagTimeLayout is the tag JSON schema's timestamp format, microsecond
// precision, matching generation.py's `_TSFMT = '%Y-%m-%dT%H:%M:%S.%f'`.
const tagTimeLayout = "2006-01-02T15:04:05.000000"

// Training holds a generation's training mode metadata: a nil Timestamp
// means the generation has never been trained.
type Training struct {
	Timestamp *time.Time
	Ordinal   any
}

func (t Training) set() bool { return t.Timestamp != nil }

// Trigger returns a copy of tag with its Training mode reset: timestamp
// stamped at now (UTC, microsecond-truncated) and the given ordinal.
func (t Training) Trigger(tag Tag, now time.Time, ordinal any) Tag {
	ts := now.UTC().Truncate(time.Microsecond)
	tag.Training = Training{Timestamp: &ts, Ordinal: ordinal}

	return tag
}

// Tuning holds a generation's tuning mode metadata: a nil Timestamp
// means the generation has never been tuned.
type Tuning struct {
	Timestamp *time.Time
	Score     *float64
}

func (t Tuning) set() bool { return t.Timestamp != nil }

// Trigger returns a copy of tag with its Tuning mode reset: timestamp
// stamped at now (UTC, microsecond-truncated) and the given score.
func (t Tuning) Trigger(tag Tag, now time.Time, score float64) Tag {
	ts := now.UTC().Truncate(time.Microsecond)
	tag.Tuning = Tuning{Timestamp: &ts, Score: &score}

	return tag
}

// Tag is per-generation metadata: training/tuning mode records plus the
// ordered, positionally-addressable list of state ids written for the
// generation. Tags are immutable; mode updates are performed by
// Training.Trigger / Tuning.Trigger, never by replacing the mode field
// directly (see Replace).
type Tag struct {
	Training Training
	Tuning   Tuning
	States   []uuid.UUID
}

// NOTAG is the empty tag substituted wherever a generation lookup finds
// no prior generation (see Generation.Tag, ErrListingEmpty).
var NOTAG = Tag{}

// Empty reports whether neither mode has ever been triggered.
func (t Tag) Empty() bool {
	return !t.Training.set() && !t.Tuning.set()
}

// Replace returns a copy of t with its non-mode fields replaced.
// "states" is the only field replaceable this way; asking to replace
// "training" or "tuning" here fails with ErrTagReplace; use
// Training.Trigger / Tuning.Trigger instead.
func (t Tag) Replace(fields map[string]any) (Tag, error) {
	for name := range fields {
		if name != "states" {
			return Tag{}, fmt.Errorf("%w: %q", ErrTagReplace, name)
		}
	}

	if raw, ok := fields["states"]; ok {
		states, ok := raw.([]uuid.UUID)
		if !ok {
			return Tag{}, fmt.Errorf("asset: states replacement must be []uuid.UUID, got %T", raw)
		}

		t.States = append([]uuid.UUID(nil), states...)
	}

	return t, nil
}

type tagMode struct {
	Timestamp *string  `json:"timestamp"`
	Ordinal   any      `json:"ordinal"`
	Score     *float64 `json:"score"`
}

type tagDocument struct {
	Training tagMode  `json:"training"`
	Tuning   tagMode  `json:"tuning"`
	States   []string `json:"states"`
}

func formatTimestamp(ts *time.Time) *string {
	if ts == nil {
		return nil
	}

	s := ts.UTC().Format(tagTimeLayout)

	return &s
}

func parseTimestamp(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}

	ts, err := time.Parse(tagTimeLayout, *raw)
	if err != nil {
		return nil, fmt.Errorf("asset: invalid tag timestamp %q: %w", *raw, err)
	}

	return &ts, nil
}

// Dumps serializes the tag to its bit-exact JSON schema: 4-space indent,
// UTF-8, training/tuning/states in that order.
func (t Tag) Dumps() ([]byte, error) {
	doc := tagDocument{
		Training: tagMode{Timestamp: formatTimestamp(t.Training.Timestamp), Ordinal: t.Training.Ordinal},
		Tuning:   tagMode{Timestamp: formatTimestamp(t.Tuning.Timestamp), Score: t.Tuning.Score},
		States:   make([]string, len(t.States)),
	}

	for i, s := range t.States {
		doc.States[i] = s.String()
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "    ")

	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("asset: encode tag: %w", err)
	}

	return buf.Bytes(), nil
}

// Loads deserializes a tag from its JSON schema.
func Loads(raw []byte) (Tag, error) {
	var doc tagDocument

	if err := json.Unmarshal(raw, &doc); err != nil {
		return Tag{}, fmt.Errorf("asset: decode tag: %w", err)
	}

	trainingTS, err := parseTimestamp(doc.Training.Timestamp)
	if err != nil {
		return Tag{}, err
	}

	tuningTS, err := parseTimestamp(doc.Tuning.Timestamp)
	if err != nil {
		return Tag{}, err
	}

	states := make([]uuid.UUID, len(doc.States))

	for i, s := range doc.States {
		id, err := uuid.Parse(s)
		if err != nil {
			return Tag{}, fmt.Errorf("asset: invalid state id %q: %w", s, err)
		}

		states[i] = id
	}

	return Tag{
		Training: Training{Timestamp: trainingTS, Ordinal: doc.Training.Ordinal},
		Tuning:   Tuning{Timestamp: tuningTS, Score: doc.Tuning.Score},
		States:   states,
	}, nil
}
