package path

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/port"
)

// Closure is a Path whose tail publishes to at least one Train/Label sink
// (a tail with no apply output makes a Channel, see New). It is terminal:
// it cannot be extended with a further
// apply subscriber, and its Publisher rejects any non-train/label
// subscription.
type Closure struct {
	head node.Node
	tail node.Node
}

// Head implements Path.
func (cl *Closure) Head() node.Node { return cl.head }

// Tail implements Path.
func (cl *Closure) Tail() node.Node { return cl.tail }

// Accept implements Path.
func (cl *Closure) Accept(visitor Visitor) error {
	return (&PreOrder{Visitor: visitor, Tail: cl.tail}).Scan(cl.head)
}

// Extend implements Path. Only a nil right is accepted, in which case the
// Closure is returned unchanged; any other argument fails with
// ErrClosureExtend.
func (cl *Closure) Extend(right Path) (Path, error) {
	if right != nil {
		return nil, fmt.Errorf("%w: closure path is terminal", ErrClosureExtend)
	}

	return cl, nil
}

// Copy implements Path.
func (cl *Closure) Copy() (Path, error) {
	head, tail, err := copyChain(cl.head, cl.tail)
	if err != nil {
		return nil, err
	}

	return &Closure{head: head, tail: tail}, nil
}

// Publisher implements Path: the tail's apply output wrapped so that only
// Train/Label subscriptions are accepted.
func (cl *Closure) Publisher() (port.Publishable, error) {
	out, err := outputOf(cl.tail)
	if err != nil {
		return nil, err
	}

	return &closurePublishable{inner: out}, nil
}

// closurePublishable decorates a node's output publisher to reject any
// subscription whose port is not Train or Label.
type closurePublishable struct {
	inner port.Publishable
}

func (c *closurePublishable) Republish(sub port.Subscription) error {
	if !sub.Port.IsSink() {
		return fmt.Errorf("%w: port %s", ErrClosurePublish, sub.Port)
	}

	return c.inner.Republish(sub)
}

func (c *closurePublishable) Subscriptions() []port.Subscription {
	return c.inner.Subscriptions()
}
