package node

import "errors"

// ErrPortOccupied is returned when an apply port that already has an
// incoming subscription is subscribed to again.
var ErrPortOccupied = errors.New("port already subscribed")

// ErrArity is returned when a node is constructed or subscribed with an
// apply in/out degree outside {0,1} where the operation requires it.
var ErrArity = errors.New("invalid node arity")

// ErrUnresolvedFuture is returned when compilation reaches a Future node
// that has not been resolved to a Worker.
var ErrUnresolvedFuture = errors.New("future node not resolved")
