package provider

import (
	"fmt"

	"github.com/deeplearning2012/forml/pkg/dsl/schema/frame"
	"github.com/deeplearning2012/forml/pkg/flow/node"
	"github.com/deeplearning2012/forml/pkg/flow/path"
	"github.com/deeplearning2012/forml/pkg/flow/pipeline"
)

// feedSpec names an in-memory feed's ETL worker in compiled Symbol
// instructions.
type feedSpec string

func (f feedSpec) Name() string { return string(f) }

// InMemFeed is a reference Feed implementation: it materializes a single
// ETL worker in lieu of a real extraction boundary, ignoring the
// supplied ordinal bounds and the query's predicate (no storage backend
// to push them down to). It exists to exercise the Feed contract end to
// end, not as a usable production feed.
type InMemFeed struct {
	name string
	rows []map[string]any
}

// NewInMemFeed builds an InMemFeed identified by name in compiled
// programs and holding rows, which Rows returns. Load ignores lower/upper
// and does not read rows.
func NewInMemFeed(name string, rows []map[string]any) *InMemFeed {
	return &InMemFeed{name: name, rows: rows}
}

// Load implements runner.Feed.
func (f *InMemFeed) Load(source *frame.Query, lower, upper any) (*pipeline.Segment, error) {
	worker := node.NewWorker(feedSpec("feed:"+f.name), 0, 1)

	p, err := path.New(worker, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: build feed segment for %q: %w", f.name, err)
	}

	return pipeline.NewSegment(p, nil, nil), nil
}

// Rows returns the feed's fixed in-memory dataset, exposed so an
// executor's apply implementation can resolve this feed's worker id to
// concrete data without a real storage round trip.
func (f *InMemFeed) Rows() []map[string]any { return f.rows }
