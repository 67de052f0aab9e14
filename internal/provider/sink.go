package provider

import (
	"fmt"
	"sync"

	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
	"github.com/deeplearning2012/forml/pkg/flow/pipeline"
)

// sinkSpec names an in-memory sink's terminal worker in compiled Symbol
// instructions.
type sinkSpec string

func (s sinkSpec) Name() string { return string(s) }

// InMemSink is a reference Sink implementation collecting apply output
// rows in memory, guarded by a mutex since an executor may invoke it
// from a worker goroutine.
type InMemSink struct {
	name string

	mu   sync.Mutex
	rows []map[string]any
}

// NewInMemSink builds an InMemSink identified by name in compiled programs.
func NewInMemSink(name string) *InMemSink {
	return &InMemSink{name: name}
}

// Save implements runner.Sink.
func (s *InMemSink) Save() (*pipeline.Segment, error) {
	worker := node.NewWorker(sinkSpec("sink:"+s.name), 1, 0)

	p, err := path.New(worker, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: build sink segment for %q: %w", s.name, err)
	}

	return pipeline.NewSegment(p, nil, nil), nil
}

// Collect appends rows to the sink's in-memory buffer. An executor's
// apply implementation calls this when it reaches the sink worker.
func (s *InMemSink) Collect(rows ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, rows...)
}

// Rows returns a copy of the rows collected so far.
func (s *InMemSink) Rows() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]any, len(s.rows))
	copy(out, s.rows)

	return out
}
