package provider

import (
	"github.com/google/uuid"

	"github.com/deeplearning2012/forml/internal/asset"
)

// Registry wraps an asset.Directory with the project/lineage/generation
// addressing a CLI command works with, mirroring the source's
// Platform.Registry.assets/.publish/.list trio.
type Registry struct {
	dir *asset.Directory
}

// NewRegistry wraps dir.
func NewRegistry(dir *asset.Directory) *Registry {
	return &Registry{dir: dir}
}

// Assets resolves a concrete generation handle for project/lineage/generation.
func (r *Registry) Assets(
	project asset.ProjectKey, lineage asset.LineageKey, generation asset.GenerationKey,
) asset.Generation {
	return r.dir.Project(project).Lineage(lineage).Generation(generation)
}

// Publish records a new generation for project/lineage with tag and state blobs.
func (r *Registry) Publish(
	project asset.ProjectKey, lineage asset.LineageKey, tag asset.Tag, states map[uuid.UUID][]byte,
) (asset.Generation, error) {
	return r.dir.Project(project).Lineage(lineage).Publish(tag, states)
}

// List returns the generation keys published under project/lineage.
func (r *Registry) List(project asset.ProjectKey, lineage asset.LineageKey) ([]asset.GenerationKey, error) {
	return r.dir.Project(project).Lineage(lineage).Generations()
}

// Lineages returns the lineage keys published under project.
func (r *Registry) Lineages(project asset.ProjectKey) ([]asset.LineageKey, error) {
	return r.dir.Project(project).Lineages()
}

// Lineage resolves the asset.Lineage handle a Runner publishes new
// generations to and reads the latest generation's tag from.
func (r *Registry) Lineage(project asset.ProjectKey, lineage asset.LineageKey) asset.Lineage {
	return r.dir.Project(project).Lineage(lineage)
}
