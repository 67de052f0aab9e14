package asset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/deeplearning2012/forml/pkg/persist"
)

// FilesystemRegistry is a reference Registry backend rooted at a local
// directory, laid out project/lineage/generation/{tag.json,
// <uuid>.bin.lz4} per core spec §6's registry layout. Sufficient to
// exercise Registry end to end; a production backend (object store,
// database) is an external provider concern.
type FilesystemRegistry struct {
	root  string
	codec persist.Codec
}

// NewFilesystemRegistry creates a registry rooted at root. State blobs
// are LZ4-compressed on write and decompressed on read; tag blobs are
// stored uncompressed so their bytes round-trip exactly.
func NewFilesystemRegistry(root string) *FilesystemRegistry {
	return &FilesystemRegistry{root: root, codec: persist.NewLZ4Codec(persist.NewBytesCodec())}
}

func (r *FilesystemRegistry) generationDir(project ProjectKey, lineage LineageKey, generation GenerationKey) string {
	return filepath.Join(r.root, string(project), lineage.String(), generation.String())
}

// Lineages implements Registry.
func (r *FilesystemRegistry) Lineages(project ProjectKey) ([]LineageKey, error) {
	names, err := listDir(filepath.Join(r.root, string(project)))
	if err != nil {
		return nil, err
	}

	lineages := make([]LineageKey, 0, len(names))

	for _, n := range names {
		key, err := ParseLineageKey(n)
		if err != nil {
			continue
		}

		lineages = append(lineages, key)
	}

	sort.Slice(lineages, func(i, j int) bool { return lineages[i].Compare(lineages[j]) < 0 })

	return lineages, nil
}

// Generations implements Registry.
func (r *FilesystemRegistry) Generations(project ProjectKey, lineage LineageKey) ([]GenerationKey, error) {
	names, err := listDir(filepath.Join(r.root, string(project), lineage.String()))
	if err != nil {
		return nil, err
	}

	generations := make([]GenerationKey, 0, len(names))

	for _, n := range names {
		v, err := strconv.Atoi(n)
		if err != nil {
			continue
		}

		key, err := NewGenerationKey(v)
		if err != nil {
			continue
		}

		generations = append(generations, key)
	}

	sort.Slice(generations, func(i, j int) bool { return generations[i] < generations[j] })

	return generations, nil
}

// OpenTag implements Registry.
func (r *FilesystemRegistry) OpenTag(project ProjectKey, lineage LineageKey, generation GenerationKey) ([]byte, error) {
	path := filepath.Join(r.generationDir(project, lineage, generation), "tag.json")

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrListingEmpty, project, lineage, generation)
	}

	if err != nil {
		return nil, fmt.Errorf("asset: read tag: %w", err)
	}

	return raw, nil
}

// ReadState implements Registry.
func (r *FilesystemRegistry) ReadState(
	project ProjectKey, lineage LineageKey, generation GenerationKey, state uuid.UUID,
) ([]byte, error) {
	dir := r.generationDir(project, lineage, generation)
	persister := persist.NewPersister[[]byte](state.String(), r.codec)

	var data []byte

	err := persister.Load(dir, func(s *[]byte) { data = *s })
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateNotFound, state, err)
	}

	return data, nil
}

// Publish implements Registry, writing state blobs first and the tag
// last so the generation becomes visible atomically from a caller's
// perspective (the registry's contract per the core's concurrency model).
func (r *FilesystemRegistry) Publish(
	project ProjectKey, lineage LineageKey, generation GenerationKey, tag Tag, states map[uuid.UUID][]byte,
) error {
	dir := r.generationDir(project, lineage, generation)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("asset: create generation dir: %w", err)
	}

	for id, blob := range states {
		blob := blob
		persister := persist.NewPersister[[]byte](id.String(), r.codec)

		if err := persister.Save(dir, func() *[]byte { return &blob }); err != nil {
			return fmt.Errorf("asset: save state %s: %w", id, err)
		}
	}

	raw, err := tag.Dumps()
	if err != nil {
		return fmt.Errorf("asset: dump tag: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "tag.json"), raw, 0o644); err != nil {
		return fmt.Errorf("asset: write tag: %w", err)
	}

	return nil
}

func listDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("asset: list %s: %w", path, err)
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}
