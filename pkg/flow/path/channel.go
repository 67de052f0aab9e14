package path

import (
	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/port"
)

// Channel is a Path whose tail publishes only to apply ports (or nothing),
// and so can be extended by subscribing a right-hand head to the tail's
// apply output.
type Channel struct {
	head node.Node
	tail node.Node
}

// Head implements Path.
func (c *Channel) Head() node.Node { return c.head }

// Tail implements Path.
func (c *Channel) Tail() node.Node { return c.tail }

// Accept implements Path.
func (c *Channel) Accept(visitor Visitor) error {
	return (&PreOrder{Visitor: visitor, Tail: c.tail}).Scan(c.head)
}

// Extend implements Path. With a non-nil right, it subscribes right's head
// to this channel's tail output and re-validates the joined chain anchored
// on right's tail. With a nil right, it retraces from the current tail to
// pick up any apply subscriber wired in since construction.
func (c *Channel) Extend(right Path) (Path, error) {
	if right == nil {
		newTail, err := discoverTail(c.tail, nil)
		if err != nil {
			return nil, err
		}

		return New(c.head, newTail)
	}

	out, err := outputOf(c.tail)
	if err != nil {
		return nil, err
	}

	if err := right.Head().Subscribe(0, out); err != nil {
		return nil, err
	}

	return New(c.head, right.Tail())
}

// Copy implements Path.
func (c *Channel) Copy() (Path, error) {
	head, tail, err := copyChain(c.head, c.tail)
	if err != nil {
		return nil, err
	}

	return &Channel{head: head, tail: tail}, nil
}

// Publisher implements Path: a Channel's publisher is its tail's apply
// output.
func (c *Channel) Publisher() (port.Publishable, error) {
	return outputOf(c.tail)
}
