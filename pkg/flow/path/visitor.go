package path

import "github.com/deeplearning2012/forml/pkg/flow/node"

// Visitor receives one call per node reached by a PreOrder scan.
type Visitor interface {
	VisitNode(n node.Node) error
}

// VisitorFunc adapts a plain function to Visitor.
type VisitorFunc func(n node.Node) error

// VisitNode implements Visitor.
func (f VisitorFunc) VisitNode(n node.Node) error { return f(n) }

// PreOrder walks all apply successors of a node recursively, visiting a
// node before its subscribers. It also descends into sink (Train/Label)
// branches, except from Tail — the tail's sink branches are excluded since
// the tail is the semantic output of the apply path, not an internal node
// whose consumers are part of this view.
type PreOrder struct {
	Visitor Visitor
	Tail    node.Node
}

// Scan runs the traversal starting at head.
func (v *PreOrder) Scan(head node.Node) error {
	return v.scan(head, map[int]bool{})
}

func (v *PreOrder) scan(n node.Node, onPath map[int]bool) error {
	if onPath[n.ID()] {
		return ErrCyclicFlow
	}

	if err := v.Visitor.VisitNode(n); err != nil {
		return err
	}

	nextPath := make(map[int]bool, len(onPath)+1)
	for id := range onPath {
		nextPath[id] = true
	}

	nextPath[n.ID()] = true

	isTail := v.Tail != nil && n.ID() == v.Tail.ID()

	var children []node.Node

	seen := map[int]bool{}

	for i := 0; i < n.Szout(); i++ {
		for _, sub := range n.Output(i).Subscriptions() {
			if isTail && sub.Port.IsSink() {
				continue
			}

			child, ok := sub.Subscriber.(node.Node)
			if !ok || seen[child.ID()] {
				continue
			}

			seen[child.ID()] = true

			children = append(children, child)
		}
	}

	for _, child := range children {
		if err := v.scan(child, nextPath); err != nil {
			return err
		}
	}

	return nil
}
