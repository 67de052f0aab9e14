// Package asset implements the versioned on-disk store that snapshots
// actor state per training generation: a project → lineage → generation
// directory hierarchy, tag metadata, and a cached state blob store.
package asset

import "errors"

var (
	// ErrListingEmpty is raised when a generation key is requested on a
	// lineage with no generations; callers that tolerate this substitute
	// NOTAG (see Lineage.Latest / Generation.Tag).
	ErrListingEmpty = errors.New("asset: level has no children")

	// ErrLevelInvalid is returned when a project, lineage, or generation
	// key fails validation (malformed semver, non-positive generation).
	ErrLevelInvalid = errors.New("asset: invalid level key")

	// ErrTagReplace is returned by Tag.Replace when asked to replace a
	// mode field (training, tuning) directly; those are only replaceable
	// via their own Trigger method.
	ErrTagReplace = errors.New("asset: mode fields must be replaced via their own Trigger method")

	// ErrStateNotFound is returned when a state id (by index or UUID)
	// does not exist in a generation's tag.
	ErrStateNotFound = errors.New("asset: state not found")
)
