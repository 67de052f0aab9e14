// Package path implements the flow graph's path algebra: Channel (an
// extendable apply-through subgraph view) and Closure (a terminal view
// whose tail publishes only into training sinks), plus tail discovery,
// deep copy, and pre-order traversal over a head/tail apply chain.
package path

import "errors"

// ErrCyclicFlow is returned when tail discovery or traversal revisits a
// node already on the current DFS path.
var ErrCyclicFlow = errors.New("cyclic flow")

// ErrAmbiguousTail is returned when tail discovery finds more than one
// terminal apply node without an expected anchor to disambiguate.
var ErrAmbiguousTail = errors.New("ambiguous tail")

// ErrPortShape is returned when a node violates the head.szin ∈ {0,1} or
// tail.szout ∈ {0,1} constraint required of a path endpoint.
var ErrPortShape = errors.New("invalid path endpoint shape")

// ErrClosurePublish is returned when something attempts to subscribe a
// non-train/label port to a Closure path's publisher.
var ErrClosurePublish = errors.New("closure path publishing")

// ErrClosureExtend is returned when extend is attempted on a Closure path
// with a non-empty right-hand path, or when a Closure's tail has no apply
// output to publish from at all.
var ErrClosureExtend = errors.New("connecting closure path")
