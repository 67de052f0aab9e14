package provider

import (
	"errors"
	"fmt"

	"github.com/deeplearning2012/forml/internal/runner"
)

// ErrFeedNotMatched is returned when no registered feed's name matches a
// CLI -I selector.
var ErrFeedNotMatched = errors.New("provider: no feed matched selector")

// ErrSinkNotMatched is returned when no registered sink's name matches a
// CLI -O selector.
var ErrSinkNotMatched = errors.New("provider: no sink matched selector")

// FeedPool holds the feeds configured for a project and resolves a CLI
// `-I` selector (by exact name) to one of them, mirroring
// Platform.Feeds.match in the source this is grounded on.
type FeedPool struct {
	feeds map[string]runner.Feed
}

// NewFeedPool builds a FeedPool from name->Feed pairs.
func NewFeedPool(feeds map[string]runner.Feed) *FeedPool {
	return &FeedPool{feeds: feeds}
}

// Match resolves name to a registered feed.
func (p *FeedPool) Match(name string) (runner.Feed, error) {
	feed, ok := p.feeds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFeedNotMatched, name)
	}

	return feed, nil
}

// SinkPool holds the sinks configured for a project and resolves a CLI
// `-O` selector.
type SinkPool struct {
	sinks map[string]runner.Sink
}

// NewSinkPool builds a SinkPool from name->Sink pairs.
func NewSinkPool(sinks map[string]runner.Sink) *SinkPool {
	return &SinkPool{sinks: sinks}
}

// Match resolves name to a registered sink.
func (p *SinkPool) Match(name string) (runner.Sink, error) {
	sink, ok := p.sinks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSinkNotMatched, name)
	}

	return sink, nil
}
