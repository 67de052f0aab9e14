package asset

import "github.com/google/uuid"

// Registry is the external collaborator persisting tags and state blobs
// for a project/lineage/generation tree (core spec's "Registry for
// byte-level persistence"). Concrete backends are a provider concern;
// FilesystemRegistry is the reference implementation exercising this
// interface end to end.
type Registry interface {
	// Lineages lists a project's lineage keys, in any order (Directory
	// sorts them).
	Lineages(project ProjectKey) ([]LineageKey, error)
	// Generations lists a lineage's generation keys, in any order
	// (Directory sorts them).
	Generations(project ProjectKey, lineage LineageKey) ([]GenerationKey, error)
	// OpenTag reads a generation's tag JSON blob. It returns an error
	// wrapping ErrListingEmpty if the generation does not exist.
	OpenTag(project ProjectKey, lineage LineageKey, generation GenerationKey) ([]byte, error)
	// ReadState reads a single state blob.
	ReadState(project ProjectKey, lineage LineageKey, generation GenerationKey, state uuid.UUID) ([]byte, error)
	// Publish writes a new generation's tag and state blobs as one
	// group; the registry is responsible for making the generation
	// visible atomically (the tag write is the publication point).
	Publish(project ProjectKey, lineage LineageKey, generation GenerationKey, tag Tag, states map[uuid.UUID][]byte) error
}
