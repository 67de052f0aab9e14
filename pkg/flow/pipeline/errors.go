package pipeline

import "errors"

// ErrIncompleteSegment is returned when a Composition is assembled from a
// Segment missing its mandatory apply track.
var ErrIncompleteSegment = errors.New("incomplete segment")
