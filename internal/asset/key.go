package asset

import (
	"fmt"
	"strconv"
)

// ProjectKey names a project in the asset store's top directory level.
type ProjectKey string

// LineageKey is a semantic-version triple ordering packaged lineages,
// per core spec §6: "Lineage keys are semver strings."
type LineageKey struct {
	Major, Minor, Patch int
}

// NewLineageKey builds a LineageKey from its components.
func NewLineageKey(major, minor, patch int) LineageKey {
	return LineageKey{Major: major, Minor: minor, Patch: patch}
}

// ParseLineageKey parses a "major.minor.patch" string.
func ParseLineageKey(raw string) (LineageKey, error) {
	var key LineageKey

	n, err := fmt.Sscanf(raw, "%d.%d.%d", &key.Major, &key.Minor, &key.Patch)
	if err != nil || n != 3 {
		return LineageKey{}, fmt.Errorf("%w: lineage key %q", ErrLevelInvalid, raw)
	}

	return key, nil
}

// String renders the lineage key as "major.minor.patch".
func (k LineageKey) String() string {
	return fmt.Sprintf("%d.%d.%d", k.Major, k.Minor, k.Patch)
}

// Compare returns -1, 0, or 1 as k orders before, equal to, or after other.
func (k LineageKey) Compare(other LineageKey) int {
	for _, pair := range [3][2]int{{k.Major, other.Major}, {k.Minor, other.Minor}, {k.Patch, other.Patch}} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}

	return 0
}

// GenerationKey is a decimal generation ordinal, per core spec §6:
// "generation keys are decimal integers ≥ 1."
type GenerationKey int

// MinGeneration is the first valid generation key.
const MinGeneration GenerationKey = 1

// NewGenerationKey validates and wraps a generation ordinal.
func NewGenerationKey(n int) (GenerationKey, error) {
	if n < int(MinGeneration) {
		return 0, fmt.Errorf("%w: generation key %d below minimum %d", ErrLevelInvalid, n, MinGeneration)
	}

	return GenerationKey(n), nil
}

// Next returns the immediately following generation key.
func (g GenerationKey) Next() GenerationKey {
	return g + 1
}

// String renders the generation key as a decimal integer.
func (g GenerationKey) String() string {
	return strconv.Itoa(int(g))
}
