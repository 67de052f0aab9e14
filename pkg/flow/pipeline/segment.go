// Package pipeline implements the compositional unit above the raw path
// algebra: a Segment groups the three parallel tracks (apply, train,
// label) an operator or ETL/sink stage contributes, and a Composition
// assembles an ETL-prepended, sink-terminated chain of segments into one
// apply Channel plus the collected training closures and shared worker
// set used for state addressing.
package pipeline

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
)

// Segment is a triple of paths contributed by one pipeline stage. Train
// and Label may be nil when a stage has no training closure of its own
// (e.g. a pure transform with no learned state).
type Segment struct {
	Apply path.Path
	Train path.Path
	Label path.Path
}

// Composable is anything that can be expanded into a fresh, independent
// Segment. Segment implements it by returning a deep copy.
type Composable interface {
	Expand() (*Segment, error)
}

// Expand implements Composable: it returns a structurally identical but
// node-disjoint copy of the segment, so the same operator output can be
// reused (e.g. across cross-validation folds) without aliasing node
// identity.
func (s *Segment) Expand() (*Segment, error) {
	expanded := &Segment{}

	if s.Apply != nil {
		cp, err := s.Apply.Copy()
		if err != nil {
			return nil, fmt.Errorf("expand apply track: %w", err)
		}

		expanded.Apply = cp
	}

	if s.Train != nil {
		cp, err := s.Train.Copy()
		if err != nil {
			return nil, fmt.Errorf("expand train track: %w", err)
		}

		expanded.Train = cp
	}

	if s.Label != nil {
		cp, err := s.Label.Copy()
		if err != nil {
			return nil, fmt.Errorf("expand label track: %w", err)
		}

		expanded.Label = cp
	}

	return expanded, nil
}

// NewSegment builds a Segment directly from already-constructed paths.
// Train and Label may be nil.
func NewSegment(apply, train, label path.Path) *Segment {
	return &Segment{Apply: apply, Train: train, Label: label}
}

// Identity returns a Segment whose apply track is a single-node pass-
// through Future, suitable as the starting point ("head") of an operator
// composition that wires its own train/label sinks onto it before
// expanding inner segments.
func Identity() (*Segment, error) {
	future := node.NewFuture(1)

	applyPath, err := path.New(future, future)
	if err != nil {
		return nil, err
	}

	return &Segment{Apply: applyPath}, nil
}
