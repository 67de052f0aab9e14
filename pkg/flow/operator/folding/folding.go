// Package folding implements the cross-validated ensembling operator: it
// splits the incoming train/label streams into N folds via a splitter
// actor, expands the left-hand composable once per fold, and lets a
// caller-supplied Factory wire each fold's slice of the split into its own
// copy of the inner segment before collapsing everything into one Segment.
package folding

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
	"github.com/deeplearning2012/forml/pkg/flow/pipeline"
)

// Builder is the per-composition folding context: it accumulates the
// per-fold wiring performed by Factory.Fold and finalizes it into the
// single Segment returned by Crossvalidated.Compose.
type Builder interface {
	Build() (*pipeline.Segment, error)
}

// Factory supplies the two abstract steps of a concrete crossvalidating
// operator: constructing a Builder bound to the shared head and one
// exclusive inner-segment instance, and wiring a single fold's slice of
// the split features/labels into a fresh inner segment.
type Factory interface {
	// NewBuilder returns a Builder seeded with head (the shared
	// apply/train/label placeholder future) and one expanded copy of the
	// left-hand composable set aside for the builder's own use.
	NewBuilder(head *pipeline.Segment, inner *pipeline.Segment) Builder
	// Fold wires fold's slice of features/labels (ports
	// 2*fold and 2*fold+1 of the splitter's output) into inner and
	// registers the result with builder.
	Fold(fold int, builder Builder, inner *pipeline.Segment, features, labels *node.Worker) error
}

// Crossvalidated is a generic crossvalidating operator. Spec is the bound
// splitter actor specification (e.g. a train/test split implementation);
// Splits is the number of folds it produces.
type Crossvalidated struct {
	Spec    node.Spec
	Splits  int
	Factory Factory
}

// Compose ensembles left into an N-fold cross-validated Segment: it builds
// a splitter worker trained on the head's train/label futures, forks it
// once for the features stream and once for the labels stream, then
// delegates per-fold wiring to Factory before finalizing via Builder.Build.
func (c *Crossvalidated) Compose(left pipeline.Composable) (*pipeline.Segment, error) {
	if c.Splits < 1 {
		return nil, fmt.Errorf("folding: splits must be positive, got %d", c.Splits)
	}

	headApply := node.NewFuture(1)
	headTrain := node.NewFuture(1)
	headLabel := node.NewFuture(1)

	applyPath, err := path.New(headApply, headApply)
	if err != nil {
		return nil, fmt.Errorf("folding: head apply track: %w", err)
	}

	trainPath, err := path.New(headTrain, headTrain)
	if err != nil {
		return nil, fmt.Errorf("folding: head train track: %w", err)
	}

	labelPath, err := path.New(headLabel, headLabel)
	if err != nil {
		return nil, fmt.Errorf("folding: head label track: %w", err)
	}

	head := pipeline.NewSegment(applyPath, trainPath, labelPath)

	splitter := node.NewWorker(c.Spec, 1, 2*c.Splits)
	if err := splitter.Train(headTrain.Output(0), headLabel.Output(0)); err != nil {
		return nil, fmt.Errorf("folding: train splitter: %w", err)
	}

	features := splitter.Fork()
	if err := features.Subscribe(0, headTrain.Output(0)); err != nil {
		return nil, fmt.Errorf("folding: wire features fork: %w", err)
	}

	labels := splitter.Fork()
	if err := labels.Subscribe(0, headLabel.Output(0)); err != nil {
		return nil, fmt.Errorf("folding: wire labels fork: %w", err)
	}

	builderInner, err := left.Expand()
	if err != nil {
		return nil, fmt.Errorf("folding: expand builder inner: %w", err)
	}

	builder := c.Factory.NewBuilder(head, builderInner)

	for fold := 0; fold < c.Splits; fold++ {
		inner, err := left.Expand()
		if err != nil {
			return nil, fmt.Errorf("folding: expand fold %d: %w", fold, err)
		}

		if err := c.Factory.Fold(fold, builder, inner, features, labels); err != nil {
			return nil, fmt.Errorf("folding: wire fold %d: %w", fold, err)
		}
	}

	return builder.Build()
}
