package passes

import (
	"maps"

	"github.com/okian/lapreplay/pkg/logger"
)

// DefaultThreshold is the debounce window: the shortest plausible lap, in log
// time units. Sightings of a pair closer than this to its reference time are
// re-reads of the same pass.
const DefaultThreshold = 30.0

// Option applies a configuration option to the Reconstructor.
type Option func(*Reconstructor)

// WithThreshold overrides the debounce window. Negative values are ignored.
func WithThreshold(threshold float64) Option {
	return func(r *Reconstructor) {
		if threshold >= 0 {
			r.threshold = threshold
		}
	}
}

// WithStopOnEnd makes an End event close the session, so sightings after it
// are discarded like sightings before Start.
func WithStopOnEnd(stop bool) Option {
	return func(r *Reconstructor) {
		r.stopOnEnd = stop
	}
}

// WithTags seeds the tag table before the first event, for logs written
// before AddTag existed. AddTag and RemoveTag still apply on top of it.
func WithTags(tags map[string]int) Option {
	return func(r *Reconstructor) {
		maps.Copy(r.tags, tags)
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconstructor) {
		if l != nil {
			r.logger = l
		}
	}
}
