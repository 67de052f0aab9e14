// Package compiler lowers a composed apply Path into an ordered sequence
// of Symbols: a linear task program a Runner can execute directly,
// without further graph traversal.
package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
	"github.com/deeplearning2012/forml/pkg/toposort"
)

// ErrCyclicProgram is returned when the apply subgraph handed to Compile
// contains a cycle; path construction should already have rejected this,
// so its appearance here indicates a caller bypassed path algebra.
var ErrCyclicProgram = errors.New("compiler: apply subgraph contains a cycle")

// StateResolver reports whether a worker group has a prior generation's
// state available to load before its first apply invocation.
type StateResolver interface {
	HasState(groupID int) bool
}

// Instruction names one compiled actor invocation: an apply call bound to
// groupID's actor spec, or (State true) a state-load preceding it.
type Instruction struct {
	Actor   node.Spec
	GroupID int
	State   bool
}

func (i Instruction) String() string {
	if i.State {
		return fmt.Sprintf("state(%d)", i.GroupID)
	}

	return fmt.Sprintf("apply(%s#%d)", i.Actor.Name(), i.GroupID)
}

// Symbol is one instruction in the compiled program plus the symbol ids
// of the operands it consumes, in argument order.
type Symbol struct {
	ID          int
	Instruction Instruction
	Operands    []int
}

type groupedNode interface {
	GroupID() int
}

func groupIDOf(n node.Node) int {
	if g, ok := n.(groupedNode); ok {
		return g.GroupID()
	}

	return n.ID()
}

// Compile walks apply's node set in a deterministic topological order
// (ties broken by ascending node-group id) and emits one Symbol per apply
// invocation, preceded by a state-load Symbol for any shared worker group
// that resolver reports has prior state. resolver may be nil, meaning no
// worker has prior state.
func Compile(apply path.Path, shared []node.Node, resolver StateResolver) ([]Symbol, error) {
	nodes, err := collect(apply)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(nodes, func(i, j int) bool { return groupIDOf(nodes[i]) < groupIDOf(nodes[j]) })

	graph := toposort.NewGraph()
	name := func(n node.Node) string { return fmt.Sprintf("n%d", n.ID()) }

	for _, n := range nodes {
		graph.AddNode(name(n))
	}

	byName := make(map[string]node.Node, len(nodes))
	seen := make(map[int]bool, len(nodes))

	for _, n := range nodes {
		byName[name(n)] = n
		seen[n.ID()] = true
	}

	for _, n := range nodes {
		for i := 0; i < n.Szout(); i++ {
			for _, sub := range n.Output(i).Subscriptions() {
				if sub.Port.IsSink() {
					continue
				}

				subscriber, ok := sub.Subscriber.(node.Node)
				if !ok || !seen[subscriber.ID()] {
					continue
				}

				graph.AddEdge(name(n), name(subscriber))
			}
		}
	}

	order, ok := graph.Toposort()
	if !ok {
		return nil, ErrCyclicProgram
	}

	sharedGroups := map[int]bool{}
	for _, w := range shared {
		sharedGroups[groupIDOf(w)] = true
	}

	var symbols []Symbol

	symbolOf := map[int]int{} // node id -> its apply Symbol's ID
	emittedState := map[int]bool{}

	for _, nm := range order {
		n := byName[nm]
		gid := groupIDOf(n)

		if sharedGroups[gid] && resolver != nil && resolver.HasState(gid) && !emittedState[gid] {
			emittedState[gid] = true
			symbols = append(symbols, Symbol{ID: len(symbols), Instruction: Instruction{GroupID: gid, State: true}})
		}

		spec, err := specOf(n)
		if err != nil {
			return nil, err
		}

		var operands []int

		for i := 0; i < n.Szin(); i++ {
			publisher := n.Input(i)
			if publisher == nil {
				continue
			}

			upstream, found := findUpstream(nodes, n, i)
			if !found {
				continue
			}

			opID, ok := symbolOf[upstream.ID()]
			if !ok {
				return nil, fmt.Errorf("compiler: operand %d of node %d not yet compiled", i, n.ID())
			}

			operands = append(operands, opID)
		}

		symbols = append(symbols, Symbol{
			ID:          len(symbols),
			Instruction: Instruction{Actor: spec, GroupID: gid},
			Operands:    operands,
		})
		symbolOf[n.ID()] = len(symbols) - 1
	}

	return symbols, nil
}

// collect gathers the node set path.Accept's PreOrder walk reaches from
// apply's head: apply subscribers, plus the Train/Label sink subscribers
// of every node except the tail.
func collect(apply path.Path) ([]node.Node, error) {
	var nodes []node.Node

	seen := map[int]bool{}

	err := apply.Accept(path.VisitorFunc(func(n node.Node) error {
		if seen[n.ID()] {
			return nil
		}

		seen[n.ID()] = true

		nodes = append(nodes, n)

		return nil
	}))
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

// findUpstream locates the node in nodes whose i-th apply output
// subscription targets n's in-th apply input. Worker and Future both
// track their own subscribed-from publisher (Input), but not its owning
// node, so we search by publisher identity among the apply edges.
func findUpstream(nodes []node.Node, n node.Node, in int) (node.Node, bool) {
	target := n.Input(in)
	if target == nil {
		return nil, false
	}

	for _, candidate := range nodes {
		for i := 0; i < candidate.Szout(); i++ {
			if candidate.Output(i) == target {
				return candidate, true
			}
		}
	}

	return nil, false
}

func specOf(n node.Node) (node.Spec, error) {
	switch v := n.(type) {
	case *node.Worker:
		return v.Spec(), nil
	case *node.Future:
		w, ok := v.Resolved()
		if !ok {
			return nil, fmt.Errorf("compiler: %w: future %d reached compilation", node.ErrUnresolvedFuture, v.ID())
		}

		return w.Spec(), nil
	default:
		return nil, fmt.Errorf("compiler: unknown node type %T", n)
	}
}
