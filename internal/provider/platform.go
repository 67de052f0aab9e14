package provider

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/deeplearning2012/forml/internal/asset"
	"github.com/deeplearning2012/forml/internal/config"
	"github.com/deeplearning2012/forml/internal/runner"
)

// ErrUnknownRegistryKind is returned when a configured registry provider
// kind has no reference implementation.
var ErrUnknownRegistryKind = errors.New("provider: unknown registry kind")

// filesystemRegistryParams is the typed settings shape for the
// "filesystem" registry kind, decoded from ProviderRef.Params.
type filesystemRegistryParams struct {
	Root string `yaml:"root"`
}

// Platform is the composition root tying project configuration to a
// ready-to-invoke runner.Runner: it owns the asset directory and the
// configured feed/sink pools, mirroring runtime/__init__.py's Platform
// (nested Runner/Registry/Feeds handles collapsed here into one façade
// plus the separate Registry/FeedPool/SinkPool types in registry.go and
// pool.go).
type Platform struct {
	registry *Registry
	feeds    *FeedPool
	sinks    *SinkPool
}

// NewPlatform builds a Platform from cfg: it constructs the configured
// asset registry backend, and indexes the configured feeds/sinks by
// their provider kind (used as their selector name, since core spec §6's
// CLI surface matches `-I`/`-O` selectors against configured providers by
// name). If registerer is non-nil, asset directory cache metrics are
// registered with it.
func NewPlatform(cfg *config.Config, registerer prometheus.Registerer) (*Platform, error) {
	dir, err := buildDirectory(cfg.Registry, registerer)
	if err != nil {
		return nil, err
	}

	feeds := map[string]runner.Feed{}

	for _, ref := range cfg.Feeds {
		feeds[ref.Kind] = NewInMemFeed(ref.Kind, nil)
	}

	sinks := map[string]runner.Sink{}

	for _, ref := range cfg.Sinks {
		sinks[ref.Kind] = NewInMemSink(ref.Kind)
	}

	return &Platform{
		registry: NewRegistry(dir),
		feeds:    NewFeedPool(feeds),
		sinks:    NewSinkPool(sinks),
	}, nil
}

func buildDirectory(ref config.ProviderRef, registerer prometheus.Registerer) (*asset.Directory, error) {
	switch ref.Kind {
	case "filesystem":
		var params filesystemRegistryParams

		if err := decodeParams(ref.Params, &params); err != nil {
			return nil, fmt.Errorf("provider: decode filesystem registry params: %w", err)
		}

		backend := asset.NewFilesystemRegistry(params.Root)

		return asset.NewDirectory(backend, 0, registerer), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegistryKind, ref.Kind)
	}
}

// Registry returns the platform's asset registry wrapper.
func (p *Platform) Registry() *Registry { return p.registry }

// Feeds returns the platform's configured feed pool.
func (p *Platform) Feeds() *FeedPool { return p.feeds }

// Sinks returns the platform's configured sink pool.
func (p *Platform) Sinks() *SinkPool { return p.sinks }

// Runner resolves feedName/sinkName against the platform's pools and
// returns a runner.Runner ready to train/apply/cvscore project against
// lineage, mirroring Platform.runner's role as the handle a CLI command
// ultimately invokes. executor is supplied by the caller since a runner
// execution backend is itself a provider concern (core spec §1 non-goal)
// this package only scaffolds.
func (p *Platform) Runner(
	project runner.Project, lineage asset.Lineage, feedName, sinkName string, executor runner.Executor,
) (*runner.Runner, error) {
	feed, err := p.feeds.Match(feedName)
	if err != nil {
		return nil, err
	}

	sink, err := p.sinks.Match(sinkName)
	if err != nil {
		return nil, err
	}

	return runner.New(project, lineage, feed, sink, executor), nil
}
