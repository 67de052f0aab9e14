package asset

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/deeplearning2012/forml/pkg/alg/lru"
)

type tagCacheKey struct {
	Project    ProjectKey
	Lineage    LineageKey
	Generation GenerationKey
}

type stateCacheKey struct {
	tagCacheKey
	State uuid.UUID
}

var (
	cacheHitsDesc = prometheus.NewDesc(
		"forml_asset_cache_hits_total", "Cumulative asset directory cache hits.", []string{"cache"}, nil)
	cacheMissesDesc = prometheus.NewDesc(
		"forml_asset_cache_misses_total", "Cumulative asset directory cache misses.", []string{"cache"}, nil)
)

// cacheCollector exposes an lru.Cache's cumulative hit/miss counts as
// Prometheus counters, reading pkg/alg/lru.Stats at collection time
// rather than double-accounting each cache access.
type cacheCollector struct {
	name  string
	stats func() lru.Stats
}

func (c cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheHitsDesc
	ch <- cacheMissesDesc
}

func (c cacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(cacheHitsDesc, prometheus.CounterValue, float64(s.Hits), c.name)
	ch <- prometheus.MustNewConstMetric(cacheMissesDesc, prometheus.CounterValue, float64(s.Misses), c.name)
}

// Directory is the project → lineage → generation hierarchy, memoizing
// registry reads through two LRU caches (tags and states) owned by each
// Directory value and reporting their hit/miss counts to Prometheus.
type Directory struct {
	registry Registry
	tags     *lru.Cache[tagCacheKey, Tag]
	states   *lru.Cache[stateCacheKey, []byte]
	logger   *slog.Logger
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger overrides the default (slog.Default()) logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) { d.logger = logger }
}

// NewDirectory creates a Directory over registry, with both the tag and
// state caches bounded to cacheSize entries (non-positive means
// unbounded). If registerer is non-nil, cache hit/miss counters are
// registered with it.
func NewDirectory(registry Registry, cacheSize int, registerer prometheus.Registerer, opts ...Option) *Directory {
	d := &Directory{
		registry: registry,
		tags:     lru.New[tagCacheKey, Tag](cacheSize),
		states:   lru.New[stateCacheKey, []byte](cacheSize),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if registerer != nil {
		registerer.MustRegister(
			cacheCollector{name: "tags", stats: d.tags.Stats},
			cacheCollector{name: "states", stats: d.states.Stats},
		)
	}

	return d
}

func (d *Directory) getTag(key tagCacheKey) (Tag, error) {
	return d.tags.GetOrLoad(key, func() (Tag, error) {
		raw, err := d.registry.OpenTag(key.Project, key.Lineage, key.Generation)
		if err != nil {
			return Tag{}, err
		}

		return Loads(raw)
	})
}

func (d *Directory) getState(key stateCacheKey) ([]byte, error) {
	return d.states.GetOrLoad(key, func() ([]byte, error) {
		return d.registry.ReadState(key.Project, key.Lineage, key.Generation, key.State)
	})
}

// Project returns a handle onto the named project.
func (d *Directory) Project(key ProjectKey) Project {
	return Project{dir: d, key: key}
}

// Project is a handle onto one project's lineages.
type Project struct {
	dir *Directory
	key ProjectKey
}

// Key returns the project's key.
func (p Project) Key() ProjectKey { return p.key }

// Lineages lists the project's lineage keys in ascending semver order.
func (p Project) Lineages() ([]LineageKey, error) {
	keys, err := p.dir.registry.Lineages(p.key)
	if err != nil {
		return nil, err
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	return keys, nil
}

// Lineage returns a handle onto the named lineage.
func (p Project) Lineage(key LineageKey) Lineage {
	return Lineage{project: p, key: key}
}

// Lineage is a handle onto one lineage's generations.
type Lineage struct {
	project Project
	key     LineageKey
}

// Key returns the lineage's key.
func (l Lineage) Key() LineageKey { return l.key }

// Generations lists the lineage's generation keys in ascending order.
func (l Lineage) Generations() ([]GenerationKey, error) {
	keys, err := l.project.dir.registry.Generations(l.project.key, l.key)
	if err != nil {
		return nil, err
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys, nil
}

// Generation returns a handle for an explicit generation key, whether or
// not it currently exists in the registry.
func (l Lineage) Generation(key GenerationKey) Generation {
	return Generation{lineage: l, key: key, exists: true}
}

// Latest returns a handle for the lineage's most recent generation. If
// the lineage has no generations yet, it returns the Listing.Empty
// placeholder whose Tag resolves to NOTAG without consulting the
// registry, per core spec §4.I.
func (l Lineage) Latest() (Generation, error) {
	keys, err := l.Generations()
	if err != nil {
		return Generation{}, err
	}

	if len(keys) == 0 {
		return Generation{lineage: l, exists: false}, nil
	}

	max := keys[0]
	for _, k := range keys[1:] {
		if k > max {
			max = k
		}
	}

	return Generation{lineage: l, key: max, exists: true}, nil
}

// Publish writes a new generation, numbered one past the lineage's
// current latest (or MinGeneration for an empty lineage), with the
// given tag and state blobs, returning a handle to it.
func (l Lineage) Publish(tag Tag, states map[uuid.UUID][]byte) (Generation, error) {
	latest, err := l.Latest()
	if err != nil {
		return Generation{}, err
	}

	next := latest.Next()

	if err := l.project.dir.registry.Publish(l.project.key, l.key, next, tag, states); err != nil {
		return Generation{}, fmt.Errorf("asset: publish generation: %w", err)
	}

	l.project.dir.logger.Info("published generation",
		"project", l.project.key, "lineage", l.key, "generation", next)

	return Generation{lineage: l, key: next, exists: true}, nil
}

// Generation is a handle onto one (project, lineage, generation) snapshot.
type Generation struct {
	lineage Lineage
	key     GenerationKey
	exists  bool
}

// Key returns the generation's key.
func (g Generation) Key() GenerationKey { return g.key }

// Next returns the generation key that would follow g: g.key.Next() if g
// exists, or MinGeneration for the Listing.Empty placeholder.
func (g Generation) Next() GenerationKey {
	if !g.exists {
		return MinGeneration
	}

	return g.key.Next()
}

// Tag returns the generation's metadata, memoized via the owning
// Directory's tag cache. A generation with no prior existence resolves
// to NOTAG instead of propagating ErrListingEmpty — the one call site
// core spec names as tolerating emptiness.
func (g Generation) Tag() (Tag, error) {
	d := g.lineage.project.dir

	if !g.exists {
		d.logger.Debug("no previous generations found, using a null tag",
			"project", g.lineage.project.key, "lineage", g.lineage.key)

		return NOTAG, nil
	}

	key := tagCacheKey{Project: g.lineage.project.key, Lineage: g.lineage.key, Generation: g.key}

	tag, err := d.getTag(key)
	if errors.Is(err, ErrListingEmpty) {
		d.logger.Debug("no previous generations found, using a null tag",
			"project", g.lineage.project.key, "lineage", g.lineage.key)

		return NOTAG, nil
	}

	return tag, err
}

// States returns the generation's ordered state id list.
func (g Generation) States() ([]uuid.UUID, error) {
	tag, err := g.Tag()
	if err != nil {
		return nil, err
	}

	return tag.States, nil
}

// State returns the state blob addressed by sid, which may be an int (a
// position in the tag's ordered state list) or a uuid.UUID. It returns
// nil with no error if the generation was never trained, mirroring
// Level.get's early return on an untrained tag.
func (g Generation) State(sid any) ([]byte, error) {
	tag, err := g.Tag()
	if err != nil {
		return nil, err
	}

	if !tag.Training.set() {
		return nil, nil
	}

	id, err := resolveStateID(tag.States, sid)
	if err != nil {
		return nil, err
	}

	d := g.lineage.project.dir
	key := stateCacheKey{
		tagCacheKey: tagCacheKey{Project: g.lineage.project.key, Lineage: g.lineage.key, Generation: g.key},
		State:       id,
	}

	return d.getState(key)
}

func resolveStateID(states []uuid.UUID, sid any) (uuid.UUID, error) {
	switch v := sid.(type) {
	case int:
		if v < 0 || v >= len(states) {
			return uuid.Nil, fmt.Errorf("%w: state index %d", ErrStateNotFound, v)
		}

		return states[v], nil
	case uuid.UUID:
		for _, s := range states {
			if s == v {
				return v, nil
			}
		}

		return uuid.Nil, fmt.Errorf("%w: %s", ErrStateNotFound, v)
	default:
		return uuid.Nil, fmt.Errorf("asset: state id must be int or uuid.UUID, got %T", sid)
	}
}
