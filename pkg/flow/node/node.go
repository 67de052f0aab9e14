// Package node implements the two node variants of the flow graph: Worker,
// a bound actor specification with fixed apply arity, and Future, an
// unresolved placeholder head later subscribed to a real worker.
package node

import (
	"fmt"
	"sync/atomic"

	"github.com/deeplearning2012/forml/pkg/flow/port"
)

var nextID atomic.Int64

func newID() int { return int(nextID.Add(1)) }

// Spec is the bound actor specification a Worker wraps: a callable with a
// train(data, label) / apply(data) contract. The actor implementation
// itself is an external collaborator (core spec §1 non-goal); forml only
// needs its identity and arity.
type Spec interface {
	// Name identifies the actor kind, used in compiled Symbol instructions.
	Name() string
}

// Node is the common surface of Worker and Future required by the path
// algebra: arity, output publishers, and the ability to accept apply
// subscriptions into its input ports.
type Node interface {
	port.Subscriber
	// Szin is the node's apply in-degree, 0 or 1.
	Szin() int
	// Szout is the node's apply out-degree, 0 or 1.
	Szout() int
	// Output returns the publishable for the node's i-th apply output.
	Output(i int) port.Publishable
	// Input returns the publisher feeding the node's i-th apply input, or
	// nil if that input is unsubscribed.
	Input(i int) port.Publishable
	// Subscribe wires this node's in-th apply input to publisher's output.
	Subscribe(in int, publisher port.Publishable) error
	// Copy produces a deep structural clone: same arity, independent of
	// subscriptions (fresh, unconnected outputs; no input subscription).
	Copy() Node
}

// slot is a single node output, implementing port.Publishable.
type slot struct {
	subs []port.Subscription
}

func (s *slot) Republish(sub port.Subscription) error {
	if sub.Port.Kind == port.KindApply {
		for _, existing := range s.subs {
			if existing.Port.Kind == port.KindApply {
				return fmt.Errorf("%w: apply port already subscribed", ErrPortOccupied)
			}
		}
	}

	s.subs = append(s.subs, sub)

	return nil
}

func (s *slot) Subscriptions() []port.Subscription {
	out := make([]port.Subscription, len(s.subs))
	copy(out, s.subs)

	return out
}

func newSlots(n int) []*slot {
	slots := make([]*slot, n)
	for i := range slots {
		slots[i] = &slot{}
	}

	return slots
}
