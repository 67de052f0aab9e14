// Package operator defines the Operator contract: a composable unit that
// expands into a fully resolved Segment given its left-hand predecessor.
// Composition is right-to-left: `left >> right` means `right.Compose(left)`.
package operator

import "github.com/deeplearning2012/forml/pkg/flow/pipeline"

// Operator exposes Compose(left), which must return a fully resolved
// Segment whose populated tracks are valid paths. Operators are pure with
// respect to left: they must not mutate left's nodes, and any reuse of
// left's apply/train/label tracks goes through left.Expand() to obtain
// node-disjoint copies before wiring.
type Operator interface {
	Compose(left pipeline.Composable) (*pipeline.Segment, error)
}

// Func adapts a plain function to Operator.
type Func func(left pipeline.Composable) (*pipeline.Segment, error)

// Compose implements Operator.
func (f Func) Compose(left pipeline.Composable) (*pipeline.Segment, error) {
	return f(left)
}

// Compose implements the `left >> right` notation: it hands left, not
// expanded, to right as the Composable predecessor. Right expands it as
// it needs (e.g. folding, which expands once per cross-validation fold).
func Compose(left pipeline.Composable, right Operator) (*pipeline.Segment, error) {
	return right.Compose(left)
}
