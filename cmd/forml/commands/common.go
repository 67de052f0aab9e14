// Package commands provides CLI command implementations for forml.
package commands

import (
	"errors"
	"fmt"

	"github.com/deeplearning2012/forml/internal/asset"
	"github.com/deeplearning2012/forml/internal/config"
	"github.com/deeplearning2012/forml/internal/provider"
	"github.com/deeplearning2012/forml/internal/runner"
)

// ErrNotImplemented is returned by subcommands whose underlying operation
// is a provider/packaging concern this CLI only scaffolds (core spec §1
// non-goal: project packaging), mirroring the source CLI's
// `error.Missing('... not implemented')` for `init`/`tune`.
var ErrNotImplemented = errors.New("forml: not implemented")

// ProjectLoader resolves a project/lineage reference to the pipeline
// inputs a runner.Project needs. The reference CLI ships no implementation
// (loading a packaged project is the declared non-goal); an embedding
// application supplies one via WithProjectLoader.
type ProjectLoader func(project, lineage string) (runner.Project, error)

func defaultProjectLoader(project, _ string) (runner.Project, error) {
	return runner.Project{}, fmt.Errorf("%w: load project %q", ErrNotImplemented, project)
}

// buildPlatform loads the project configuration at configPath (empty
// string falls back to the discovered/default config) and assembles the
// resulting Platform.
func buildPlatform(configPath string) (*provider.Platform, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("forml: load config: %w", err)
	}

	platform, err := provider.NewPlatform(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("forml: build platform: %w", err)
	}

	return platform, nil
}

// parseLineage parses a lineage argument, defaulting to the zero lineage
// when raw is empty (core spec §6 treats a missing lineage as "default").
func parseLineage(raw string) (asset.LineageKey, error) {
	if raw == "" {
		return asset.NewLineageKey(0, 0, 0), nil
	}

	return asset.ParseLineageKey(raw)
}

func firstFeed(feeds []string) string {
	if len(feeds) == 0 {
		return ""
	}

	return feeds[0]
}
