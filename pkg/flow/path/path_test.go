package path_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
)

type fakeSpec string

func (f fakeSpec) Name() string { return string(f) }

// TestSingleChainIsChannel builds head -> mid -> leaf (no sinks) and
// expects a Channel whose tail is leaf.
func TestSingleChainIsChannel(t *testing.T) {
	t.Parallel()

	head := node.NewWorker(fakeSpec("head"), 0, 1)
	mid := node.NewWorker(fakeSpec("mid"), 1, 1)
	leaf := node.NewWorker(fakeSpec("leaf"), 1, 1)

	require.NoError(t, mid.Subscribe(0, head.Output(0)))
	require.NoError(t, leaf.Subscribe(0, mid.Output(0)))

	p, err := path.New(head, nil)
	require.NoError(t, err)
	assert.IsType(t, &path.Channel{}, p)
	assert.Equal(t, leaf.ID(), p.Tail().ID())
}

// TestAmbiguousTail is S2: a head with two apply outputs each subscribed
// by a distinct leaf fails tail discovery.
func TestAmbiguousTail(t *testing.T) {
	t.Parallel()

	head := node.NewWorker(fakeSpec("head"), 0, 2)
	leafA := node.NewWorker(fakeSpec("a"), 1, 1)
	leafB := node.NewWorker(fakeSpec("b"), 1, 1)

	require.NoError(t, leafA.Subscribe(0, head.Output(0)))
	require.NoError(t, leafB.Subscribe(0, head.Output(1)))

	_, err := path.New(head, nil)
	assert.ErrorIs(t, err, path.ErrAmbiguousTail)
}

// TestClosureNonExtendable is S3: a path whose tail publishes to a Train
// port cannot be extended with a non-nil right; extend(nil) returns an
// equal path.
func TestClosureNonExtendable(t *testing.T) {
	t.Parallel()

	head := node.NewWorker(fakeSpec("head"), 0, 1)
	feature := node.NewWorker(fakeSpec("feature"), 1, 1)
	label := node.NewWorker(fakeSpec("label"), 0, 1)
	model := node.NewWorker(fakeSpec("model"), 1, 1)

	require.NoError(t, feature.Subscribe(0, head.Output(0)))
	require.NoError(t, model.Train(feature.Output(0), label.Output(0)))

	p, err := path.New(head, nil)
	require.NoError(t, err)
	assert.IsType(t, &path.Closure{}, p)

	right := node.NewWorker(fakeSpec("right"), 1, 1)
	rightPath, err := path.New(right, nil)
	require.NoError(t, err)

	_, err = p.Extend(rightPath)
	assert.ErrorIs(t, err, path.ErrClosureExtend)

	same, err := p.Extend(nil)
	require.NoError(t, err)
	assert.Equal(t, p.Head().ID(), same.Head().ID())
	assert.Equal(t, p.Tail().ID(), same.Tail().ID())
}

func TestChannelExtendJoinsChains(t *testing.T) {
	t.Parallel()

	head := node.NewWorker(fakeSpec("head"), 0, 1)
	left, err := path.New(head, nil)
	require.NoError(t, err)

	rightHead := node.NewWorker(fakeSpec("right"), 1, 1)
	right, err := path.New(rightHead, nil)
	require.NoError(t, err)

	joined, err := left.Extend(right)
	require.NoError(t, err)
	assert.Equal(t, head.ID(), joined.Head().ID())
	assert.Equal(t, rightHead.ID(), joined.Tail().ID())
}

func TestCopyIsolatesNodes(t *testing.T) {
	t.Parallel()

	head := node.NewWorker(fakeSpec("head"), 0, 1)
	mid := node.NewWorker(fakeSpec("mid"), 1, 1)
	require.NoError(t, mid.Subscribe(0, head.Output(0)))

	original, err := path.New(head, nil)
	require.NoError(t, err)

	cp, err := original.Copy()
	require.NoError(t, err)

	assert.NotEqual(t, original.Head().ID(), cp.Head().ID())
	assert.NotEqual(t, original.Tail().ID(), cp.Tail().ID())
	assert.Empty(t, cp.Tail().Output(0).Subscriptions())
}

func TestCyclicFlowRejected(t *testing.T) {
	t.Parallel()

	a := node.NewWorker(fakeSpec("a"), 1, 1)
	b := node.NewWorker(fakeSpec("b"), 1, 1)

	require.NoError(t, b.Subscribe(0, a.Output(0)))
	// a's single apply input is still free, so wire it from b's output to
	// create the cycle a -> b -> a.
	require.NoError(t, a.Subscribe(0, b.Output(0)))

	_, err := path.New(a, nil)
	assert.ErrorIs(t, err, path.ErrCyclicFlow)
}

func TestPreOrderVisitsAllNodes(t *testing.T) {
	t.Parallel()

	head := node.NewWorker(fakeSpec("head"), 0, 1)
	mid := node.NewWorker(fakeSpec("mid"), 1, 1)
	leaf := node.NewWorker(fakeSpec("leaf"), 1, 1)
	require.NoError(t, mid.Subscribe(0, head.Output(0)))
	require.NoError(t, leaf.Subscribe(0, mid.Output(0)))

	p, err := path.New(head, nil)
	require.NoError(t, err)

	var visited []int
	err = p.Accept(path.VisitorFunc(func(n node.Node) error {
		visited = append(visited, n.ID())
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{head.ID(), mid.ID(), leaf.ID()}, visited)
}
