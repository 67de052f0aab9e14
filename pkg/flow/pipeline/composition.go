package pipeline

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
)

// Composition is a fully assembled segment chain: an ETL head, a sequence
// of expanded operator segments, and a sink tail, whose apply tracks have
// been composed into a single Channel and whose training closures and
// shared worker set have been enumerated.
type Composition struct {
	// Apply is the fully joined apply Channel, from the ETL head through
	// every block to the sink.
	Apply path.Path
	// Train collects every block's (and the ETL's) training closure, in
	// composition order.
	Train []path.Path
	// Shared is the set of worker nodes present in both the apply track
	// and at least one training closure — the actors whose state must be
	// persisted by the asset store.
	Shared []node.Node
}

// New assembles etl, the ordered blocks, and sink into a Composition. Each
// block's apply path is spliced into the apply chain as given, not
// expanded (see Segment.Expand), so the block's own nodes become wired
// into this composition.
func New(etl *Segment, blocks []*Segment, sink *Segment) (*Composition, error) {
	if etl == nil || etl.Apply == nil {
		return nil, fmt.Errorf("%w: etl segment missing apply track", ErrIncompleteSegment)
	}

	if sink == nil || sink.Apply == nil {
		return nil, fmt.Errorf("%w: sink segment missing apply track", ErrIncompleteSegment)
	}

	applyChain := etl.Apply

	var trains []path.Path

	if etl.Train != nil {
		trains = append(trains, etl.Train)
	}

	for i, block := range blocks {
		if block == nil || block.Apply == nil {
			return nil, fmt.Errorf("%w: block %d missing apply track", ErrIncompleteSegment, i)
		}

		var err error

		applyChain, err = applyChain.Extend(block.Apply)
		if err != nil {
			return nil, fmt.Errorf("compose block %d: %w", i, err)
		}

		if block.Train != nil {
			trains = append(trains, block.Train)
		}
	}

	var err error

	applyChain, err = applyChain.Extend(sink.Apply)
	if err != nil {
		return nil, fmt.Errorf("compose sink: %w", err)
	}

	if sink.Train != nil {
		trains = append(trains, sink.Train)
	}

	shared, err := sharedWorkers(applyChain, trains)
	if err != nil {
		return nil, err
	}

	return &Composition{Apply: applyChain, Train: trains, Shared: shared}, nil
}

// sharedWorkers returns the workers that are both reachable in the
// composed apply Channel and the training target of some collected
// closure. A train closure's tail is, by construction (core spec 4.C), the
// node whose output publishes into a Train/Label port — that subscriber is
// the worker actually being trained, so it is the worker identified by
// "present in both apply and train tracks" in core spec 4.E, not the
// closure's own chain of feature/label producer nodes.
func sharedWorkers(apply path.Path, trains []path.Path) ([]node.Node, error) {
	applyNodes := map[int]bool{}

	err := apply.Accept(path.VisitorFunc(func(n node.Node) error {
		applyNodes[n.ID()] = true

		return nil
	}))
	if err != nil {
		return nil, err
	}

	var shared []node.Node

	seen := map[int]bool{}

	for _, t := range trains {
		tail := t.Tail()

		for i := 0; i < tail.Szout(); i++ {
			for _, sub := range tail.Output(i).Subscriptions() {
				if !sub.Port.IsSink() {
					continue
				}

				subscriber, ok := sub.Subscriber.(node.Node)
				if !ok || seen[subscriber.ID()] || !applyNodes[subscriber.ID()] {
					continue
				}

				seen[subscriber.ID()] = true

				shared = append(shared, subscriber)
			}
		}
	}

	return shared, nil
}
