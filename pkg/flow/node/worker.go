package node

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/flow/port"
)

// Worker is a bound actor specification with fixed apply arity. Workers
// produced by Fork share a GroupID so their state snapshots are addressed
// together by the asset store and compiler.
type Worker struct {
	id      int
	groupID int
	spec    Spec
	szin    int
	szout   int

	inputs []port.Publishable // apply input i's upstream publisher, nil until subscribed
	outputs []*slot

	trainOccupied bool
	labelOccupied bool
}

// NewWorker creates a Worker bound to spec with the given apply arity. It
// starts its own group (use Fork to create group-mates).
func NewWorker(spec Spec, szin, szout int) *Worker {
	id := newID()

	return &Worker{
		id:      id,
		groupID: id,
		spec:    spec,
		szin:    szin,
		szout:   szout,
		inputs:  make([]port.Publishable, szin),
		outputs: newSlots(szout),
	}
}

// ID implements port.Subscriber.
func (w *Worker) ID() int { return w.id }

// GroupID returns the shared identity of workers created by Fork from a
// common ancestor. State snapshots for a group are addressed together.
func (w *Worker) GroupID() int { return w.groupID }

// Spec returns the bound actor specification.
func (w *Worker) Spec() Spec { return w.spec }

// Szin implements Node.
func (w *Worker) Szin() int { return w.szin }

// Szout implements Node.
func (w *Worker) Szout() int { return w.szout }

// Output implements Node.
func (w *Worker) Output(i int) port.Publishable { return w.outputs[i] }

// Input implements Node.
func (w *Worker) Input(i int) port.Publishable { return w.inputs[i] }

// Subscribe implements Node: wires apply input `in` to publisher's output.
func (w *Worker) Subscribe(in int, publisher port.Publishable) error {
	if in < 0 || in >= w.szin {
		return fmt.Errorf("%w: apply input %d out of range [0,%d)", ErrArity, in, w.szin)
	}

	if w.inputs[in] != nil {
		return fmt.Errorf("%w: input %d", ErrPortOccupied, in)
	}

	if err := publisher.Republish(port.Subscription{Subscriber: w, Port: port.Apply(in)}); err != nil {
		return err
	}

	w.inputs[in] = publisher

	return nil
}

// Train subscribes this worker's Train and Label sinks to the given
// feature and label publishers, per core spec 4.B: "train(features_pub,
// labels_pub) which creates Train/Label subscriptions to the worker."
func (w *Worker) Train(featuresPub, labelsPub port.Publishable) error {
	if w.trainOccupied || w.labelOccupied {
		return fmt.Errorf("%w: train/label already subscribed", ErrPortOccupied)
	}

	if err := featuresPub.Republish(port.Subscription{Subscriber: w, Port: port.Train}); err != nil {
		return err
	}

	if err := labelsPub.Republish(port.Subscription{Subscriber: w, Port: port.Label}); err != nil {
		return err
	}

	w.trainOccupied = true
	w.labelOccupied = true

	return nil
}

// Fork produces a structurally identical worker (same spec and arity)
// sharing this worker's GroupID, used for cross-validation fan-out where
// one actor specification is applied across multiple folds with shared
// parameters at training time.
func (w *Worker) Fork() *Worker {
	fork := NewWorker(w.spec, w.szin, w.szout)
	fork.groupID = w.groupID

	return fork
}

// Copy implements Node: a deep structural clone with the same arity and
// spec but independent of subscriptions and in its own group.
func (w *Worker) Copy() Node {
	return NewWorker(w.spec, w.szin, w.szout)
}
