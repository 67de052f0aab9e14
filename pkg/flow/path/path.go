package path

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/port"
)

// Path is a single-head, single-tail apply-chain subgraph view. It is
// immutable: Extend and Copy produce new Path values.
type Path interface {
	// Head returns the path's entry node (head.Szin() ∈ {0,1}).
	Head() node.Node
	// Tail returns the path's exit node (tail.Szout() ∈ {0,1}).
	Tail() node.Node
	// Accept runs a PreOrder scan rooted at Head, excluding the Tail's sink
	// branches.
	Accept(visitor Visitor) error
	// Extend grows a Channel by subscribing right's head to this path's
	// tail output, or retraces the current tail when right is nil. Closure
	// paths only accept a nil right (returning themselves unchanged).
	Extend(right Path) (Path, error)
	// Copy returns a deep clone of the apply chain between Head and Tail,
	// disjoint in node identity, with empty sink subscriptions.
	Copy() (Path, error)
	// Publisher returns the publishable a downstream apply subscriber (or,
	// for a Closure, only a Train/Label subscriber) would subscribe to.
	Publisher() (port.Publishable, error)
}

// New constructs a Path from head and an optional tail (pass nil to
// discover it by walking apply subscribers from head). It validates
// head.Szin() ∈ {0,1} and tail.Szout() ∈ {0,1}, then classifies the result
// as Channel or Closure based on whether the tail publishes to any
// Train/Label port.
func New(head node.Node, tail node.Node) (Path, error) {
	if head.Szin() > 1 {
		return nil, fmt.Errorf("%w: head.szin=%d", ErrPortShape, head.Szin())
	}

	resolvedTail, err := discoverTail(head, tail)
	if err != nil {
		return nil, err
	}

	if resolvedTail.Szout() > 1 {
		return nil, fmt.Errorf("%w: tail.szout=%d", ErrPortShape, resolvedTail.Szout())
	}

	if isClosureTail(resolvedTail) {
		return &Closure{head: head, tail: resolvedTail}, nil
	}

	return &Channel{head: head, tail: resolvedTail}, nil
}

// isClosureTail reports whether any of tail's output subscriptions targets
// a Train or Label port — the sole classifying condition (core spec 4.C,
// invariant 3 in §8).
func isClosureTail(tail node.Node) bool {
	for i := 0; i < tail.Szout(); i++ {
		for _, sub := range tail.Output(i).Subscriptions() {
			if sub.Port.IsSink() {
				return true
			}
		}
	}

	return false
}

// outputOf returns n's single apply output publisher, or an error if n has
// no apply output at all.
func outputOf(n node.Node) (port.Publishable, error) {
	if n.Szout() == 0 {
		return nil, fmt.Errorf("%w: tail has no apply output", ErrClosureExtend)
	}

	return n.Output(0), nil
}

// copyChain deep-copies the apply chain from head to tail (inclusive),
// reconnecting apply subscriptions only, and stopping descent at tail
// (tail's own subscribers, sink or apply, are not followed).
func copyChain(head, tail node.Node) (node.Node, node.Node, error) {
	copies := make(map[int]node.Node)

	var visit func(n node.Node) (node.Node, error)

	visit = func(n node.Node) (node.Node, error) {
		if cp, ok := copies[n.ID()]; ok {
			return cp, nil
		}

		cp := n.Copy()
		copies[n.ID()] = cp

		if n.ID() == tail.ID() {
			return cp, nil
		}

		for i := 0; i < n.Szout(); i++ {
			for _, sub := range n.Output(i).Subscriptions() {
				if sub.Port.IsSink() {
					continue // sink branches are not part of the apply chain being copied.
				}

				child, ok := sub.Subscriber.(node.Node)
				if !ok {
					continue
				}

				childCopy, err := visit(child)
				if err != nil {
					return nil, err
				}

				if err := childCopy.Subscribe(sub.Port.Index, cp.Output(i)); err != nil {
					return nil, err
				}
			}
		}

		return cp, nil
	}

	headCopy, err := visit(head)
	if err != nil {
		return nil, nil, err
	}

	tailCopy, ok := copies[tail.ID()]
	if !ok {
		// tail was not reached from head (head == tail is reached, as
		// visit copies head first); fall back to head's copy.
		tailCopy = headCopy
	}

	return headCopy, tailCopy, nil
}
