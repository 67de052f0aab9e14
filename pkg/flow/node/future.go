package node

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/flow/port"
)

// Future is a placeholder head node (szin ∈ {0,1}, szout = 1) resolved by
// subscription to a real Worker before compilation. Compilation rejects an
// unresolved Future; path construction accepts one.
type Future struct {
	id       int
	szin     int
	output   *slot
	input    port.Publishable
	resolved *Worker
}

// NewFuture creates an unresolved Future with the given apply in-degree
// (0 or 1).
func NewFuture(szin int) *Future {
	return &Future{
		id:     newID(),
		szin:   szin,
		output: newSlots(1)[0],
	}
}

// ID implements port.Subscriber.
func (f *Future) ID() int { return f.id }

// Szin implements Node.
func (f *Future) Szin() int { return f.szin }

// Szout implements Node.
func (f *Future) Szout() int { return 1 }

// Output implements Node. Futures have a single apply output.
func (f *Future) Output(i int) port.Publishable {
	if i != 0 {
		panic("future: output index out of range")
	}

	return f.output
}

// Subscribe implements Node. A Future accepts one apply input subscription
// which, combined with Resolve, anchors tail discovery back to the real
// worker it stands in for.
func (f *Future) Subscribe(in int, publisher port.Publishable) error {
	if in != 0 || f.szin == 0 {
		return fmt.Errorf("%w: future has no apply input", ErrArity)
	}

	if err := publisher.Republish(port.Subscription{Subscriber: f, Port: port.Apply(0)}); err != nil {
		return err
	}

	f.input = publisher

	return nil
}

// Input implements Node.
func (f *Future) Input(i int) port.Publishable {
	if i != 0 {
		return nil
	}

	return f.input
}

// Resolve binds this Future to a concrete Worker, after which Resolved
// returns it.
func (f *Future) Resolve(w *Worker) error {
	if f.resolved != nil {
		return fmt.Errorf("%w: future already resolved", ErrPortOccupied)
	}

	f.resolved = w

	return nil
}

// Resolved returns the Worker this Future has been bound to, if any.
func (f *Future) Resolved() (*Worker, bool) {
	return f.resolved, f.resolved != nil
}

// Copy implements Node. Copying an unresolved Future yields a fresh
// unresolved Future of the same arity; a resolved Future copies its
// resolution target instead, matching the semantics that by compile time
// only concrete Workers remain in the graph.
func (f *Future) Copy() Node {
	if f.resolved != nil {
		return f.resolved.Copy()
	}

	return NewFuture(f.szin)
}
