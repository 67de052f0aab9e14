package folding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/operator/folding"
	"github.com/deeplearning2012/forml/pkg/flow/path"
	"github.com/deeplearning2012/forml/pkg/flow/pipeline"
)

type fakeSpec string

func (f fakeSpec) Name() string { return string(f) }

// stubBuilder collects the apply heads wired by Fold and finalizes into a
// segment that fans its first fold's apply track out as the result.
type stubBuilder struct {
	head  *pipeline.Segment
	inner *pipeline.Segment
	wired []*pipeline.Segment
}

func (b *stubBuilder) Build() (*pipeline.Segment, error) {
	if len(b.wired) == 0 {
		return b.inner, nil
	}

	return b.wired[0], nil
}

type stubFactory struct {
	t     *testing.T
	built *stubBuilder
}

func (f *stubFactory) NewBuilder(head, inner *pipeline.Segment) folding.Builder {
	f.built = &stubBuilder{head: head, inner: inner}

	return f.built
}

func (f *stubFactory) Fold(fold int, builder folding.Builder, inner *pipeline.Segment, features, labels *node.Worker) error {
	f.t.Helper()

	sb, ok := builder.(*stubBuilder)
	require.True(f.t, ok)

	require.NoError(f.t, inner.Apply.Head().Subscribe(0, features.Output(2*fold)))

	sb.wired = append(sb.wired, inner)

	return nil
}

func identityComposable(t *testing.T) *pipeline.Segment {
	t.Helper()

	worker := node.NewWorker(fakeSpec("estimator"), 1, 1)
	p, err := path.New(worker, nil)
	require.NoError(t, err)

	return pipeline.NewSegment(p, nil, nil)
}

func TestCrossvalidatedComposeWiresEachFold(t *testing.T) {
	t.Parallel()

	factory := &stubFactory{t: t}
	op := &folding.Crossvalidated{
		Spec:    fakeSpec("splitter"),
		Splits:  3,
		Factory: factory,
	}

	left := identityComposable(t)

	result, err := op.Compose(left)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, factory.built.wired, 3)
}

func TestCrossvalidatedRejectsNonPositiveSplits(t *testing.T) {
	t.Parallel()

	op := &folding.Crossvalidated{Spec: fakeSpec("splitter"), Splits: 0, Factory: &stubFactory{t: t}}

	_, err := op.Compose(identityComposable(t))
	require.Error(t, err)
}
