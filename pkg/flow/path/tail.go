package path

import "github.com/deeplearning2012/forml/pkg/flow/node"

// applySubscribers returns the distinct set of nodes subscribed to any of
// n's outputs via an Apply port, in first-seen order.
func applySubscribers(n node.Node) []node.Node {
	seen := map[int]bool{}

	var out []node.Node

	for i := 0; i < n.Szout(); i++ {
		for _, sub := range n.Output(i).Subscriptions() {
			if !sub.Port.IsSink() {
				if child, ok := sub.Subscriber.(node.Node); ok && !seen[child.ID()] {
					seen[child.ID()] = true

					out = append(out, child)
				}
			}
		}
	}

	return out
}

// discoverTail walks the apply-subscriber chain from head via depth-first
// search. If expected is non-nil and reached mid-traversal, it is returned
// immediately (the Future-resolution anchor pattern). Otherwise the set of
// terminal apply nodes (those with no further apply subscribers) must be a
// singleton, or discovery fails with ErrAmbiguousTail. A subscriber
// reappearing on the current DFS path fails with ErrCyclicFlow.
func discoverTail(head node.Node, expected node.Node) (node.Node, error) {
	return tailDFS(head, expected, map[int]bool{})
}

func tailDFS(head node.Node, expected node.Node, onPath map[int]bool) (node.Node, error) {
	if expected != nil && head.ID() == expected.ID() {
		return head, nil
	}

	subscribers := applySubscribers(head)
	if len(subscribers) == 0 {
		return head, nil
	}

	for _, s := range subscribers {
		if onPath[s.ID()] {
			return nil, ErrCyclicFlow
		}
	}

	nextPath := make(map[int]bool, len(onPath)+1)
	for id := range onPath {
		nextPath[id] = true
	}

	nextPath[head.ID()] = true

	endings := map[int]node.Node{}

	for _, s := range subscribers {
		ending, err := tailDFS(s, expected, nextPath)
		if err != nil {
			return nil, err
		}

		endings[ending.ID()] = ending

		if expected != nil && ending.ID() == expected.ID() {
			return ending, nil
		}
	}

	if len(endings) != 1 {
		return nil, ErrAmbiguousTail
	}

	for _, ending := range endings {
		return ending, nil
	}

	return nil, ErrAmbiguousTail
}
