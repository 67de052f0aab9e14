package runner_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/internal/asset"
	"github.com/deeplearning2012/forml/internal/compiler"
	"github.com/deeplearning2012/forml/internal/runner"
	"github.com/deeplearning2012/forml/pkg/dsl/schema/frame"
	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
	"github.com/deeplearning2012/forml/pkg/flow/pipeline"
)

type fakeSpec string

func (f fakeSpec) Name() string { return string(f) }

func segment(t *testing.T, name string, szin, szout int) *pipeline.Segment {
	t.Helper()

	w := node.NewWorker(fakeSpec(name), szin, szout)

	p, err := path.New(w, nil)
	require.NoError(t, err)

	return pipeline.NewSegment(p, nil, nil)
}

type fakeFeed struct {
	etl *pipeline.Segment
}

func (f fakeFeed) Load(*frame.Query, any, any) (*pipeline.Segment, error) {
	return f.etl, nil
}

type fakeSink struct {
	sink *pipeline.Segment
}

func (f fakeSink) Save() (*pipeline.Segment, error) {
	return f.sink, nil
}

type fakeExecutor struct {
	runs   int
	states map[int][]byte
	err    error
}

func (f *fakeExecutor) Run(context.Context, []compiler.Symbol) (map[int][]byte, error) {
	f.runs++

	return f.states, f.err
}

// memRegistry is a minimal in-memory asset.Registry fake, just enough to
// back a Lineage through Latest/Publish/Tag.
type memRegistry struct {
	generations []asset.GenerationKey
	tags        map[asset.GenerationKey]asset.Tag
}

func newMemRegistry() *memRegistry {
	return &memRegistry{tags: map[asset.GenerationKey]asset.Tag{}}
}

func (r *memRegistry) Lineages(asset.ProjectKey) ([]asset.LineageKey, error) {
	return []asset.LineageKey{asset.NewLineageKey(0, 1, 0)}, nil
}

func (r *memRegistry) Generations(asset.ProjectKey, asset.LineageKey) ([]asset.GenerationKey, error) {
	return r.generations, nil
}

func (r *memRegistry) OpenTag(_ asset.ProjectKey, _ asset.LineageKey, gen asset.GenerationKey) ([]byte, error) {
	tag, ok := r.tags[gen]
	if !ok {
		return nil, asset.ErrListingEmpty
	}

	return tag.Dumps()
}

func (r *memRegistry) ReadState(_ asset.ProjectKey, _ asset.LineageKey, _ asset.GenerationKey, _ uuid.UUID) ([]byte, error) {
	return nil, asset.ErrStateNotFound
}

func (r *memRegistry) Publish(_ asset.ProjectKey, _ asset.LineageKey, gen asset.GenerationKey, tag asset.Tag, _ map[uuid.UUID][]byte) error {
	r.generations = append(r.generations, gen)
	r.tags[gen] = tag

	return nil
}

func newLineage(t *testing.T) asset.Lineage {
	t.Helper()

	dir := asset.NewDirectory(newMemRegistry(), 0, nil)

	return dir.Project("proj").Lineage(asset.NewLineageKey(0, 1, 0))
}

func TestRunnerTrainPublishesNewGeneration(t *testing.T) {
	t.Parallel()

	etl := segment(t, "etl", 0, 1)
	model := segment(t, "model", 1, 1)
	sink := segment(t, "sink", 1, 1)

	lineage := newLineage(t)
	executor := &fakeExecutor{states: map[int][]byte{}}

	project := runner.Project{Pipeline: model}
	r := runner.New(project, lineage, fakeFeed{etl: etl}, fakeSink{sink: sink}, executor)

	require.NoError(t, r.Train(context.Background(), nil, time.Now()))
	assert.Equal(t, 1, executor.runs)

	latest, err := lineage.Latest()
	require.NoError(t, err)
	assert.Equal(t, asset.MinGeneration, latest.Key())

	tag, err := latest.Tag()
	require.NoError(t, err)
	assert.NotNil(t, tag.Training.Timestamp)
}

func TestRunnerApplyDoesNotAdvanceGeneration(t *testing.T) {
	t.Parallel()

	etl := segment(t, "etl", 0, 1)
	model := segment(t, "model", 1, 1)
	sink := segment(t, "sink", 1, 1)

	lineage := newLineage(t)
	executor := &fakeExecutor{}

	project := runner.Project{Pipeline: model}
	r := runner.New(project, lineage, fakeFeed{etl: etl}, fakeSink{sink: sink}, executor)

	require.NoError(t, r.Apply(context.Background(), nil, nil))
	assert.Equal(t, 1, executor.runs)

	_, err := lineage.Latest()
	require.NoError(t, err)

	keys, err := lineage.Generations()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRunnerCVScoreRejectsNonEvaluableProject(t *testing.T) {
	t.Parallel()

	lineage := newLineage(t)
	executor := &fakeExecutor{}

	project := runner.Project{Pipeline: segment(t, "model", 1, 1)}
	r := runner.New(project, lineage, fakeFeed{}, fakeSink{}, executor)

	err := r.CVScore(context.Background(), nil, nil)
	require.ErrorIs(t, err, runner.ErrProjectNotEvaluable)
	assert.Equal(t, 0, executor.runs)
}

func TestRunnerCVScoreExecutesTrainTracksOfEvaluation(t *testing.T) {
	t.Parallel()

	etl := segment(t, "etl", 0, 1)
	sink := segment(t, "sink", 1, 1)

	model := node.NewWorker(fakeSpec("model"), 1, 1)
	featureSource := node.NewWorker(fakeSpec("features"), 0, 1)
	labelSource := node.NewWorker(fakeSpec("labels"), 0, 1)
	require.NoError(t, model.Train(featureSource.Output(0), labelSource.Output(0)))

	modelApply, err := path.New(model, nil)
	require.NoError(t, err)

	modelTrain, err := path.New(featureSource, nil)
	require.NoError(t, err)

	evaluation := pipeline.NewSegment(modelApply, modelTrain, nil)

	lineage := newLineage(t)
	executor := &fakeExecutor{}

	project := runner.Project{
		Pipeline:   segment(t, "transform", 1, 1),
		Evaluation: evaluation,
	}
	r := runner.New(project, lineage, fakeFeed{etl: etl}, fakeSink{sink: sink}, executor)

	require.NoError(t, r.CVScore(context.Background(), nil, nil))
	assert.Equal(t, 1, executor.runs)
}

func TestRunnerTrainSurfacesProviderUnresolved(t *testing.T) {
	t.Parallel()

	lineage := newLineage(t)
	executor := &fakeExecutor{}

	project := runner.Project{Pipeline: segment(t, "model", 1, 1)}
	r := runner.New(project, lineage, nil, nil, executor)

	err := r.Train(context.Background(), nil, nil)
	require.ErrorIs(t, err, runner.ErrProviderUnresolved)
}
