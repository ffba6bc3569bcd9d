// Package passes reconstructs lap passes from a race event log.
//
// A Reconstructor replays events strictly in log order. It tracks which team
// currently owns each tag, whether the session has started, and for every
// (reader, team) pair the time of the last accepted pass. A sighting more
// than the debounce threshold after the pair's reference time is a new pass;
// anything closer is a duplicate read and leaves the reference untouched, so
// a burst of re-reads cannot creep the reference forward.
package passes

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/okian/lapreplay/internal/domain/model"
	"github.com/okian/lapreplay/pkg/logger"
	"github.com/okian/lapreplay/pkg/metrics"
)

// Series holds the accepted passes of one pair and the gaps between them.
// Gaps[i] is the time from the previous reference to Passes[i].
type Series struct {
	Pair   model.Pair `json:"pair"`
	Passes []float64  `json:"passes"`
	Gaps   []float64  `json:"gaps"`
}

// Stats counts what happened to the events of one run.
type Stats struct {
	Events               map[model.EventType]int `json:"events"`
	DiscardedNotStarted  int                     `json:"discardedNotStarted"`
	DiscardedUnassigned  int                     `json:"discardedUnassigned"`
	Debounced            int                     `json:"debounced"`
	Accepted             int                     `json:"accepted"`
	Ignored              int                     `json:"ignored"`
	AssignedTagsAtFinish int                     `json:"assignedTagsAtFinish"`
}

// Result is a snapshot of a reconstruction.
type Result struct {
	Series []Series `json:"series"` // ordered by reader, then team
	Stats  Stats    `json:"stats"`
}

// Get returns the series of p.
func (r *Result) Get(p model.Pair) (Series, bool) {
	i, found := slices.BinarySearchFunc(r.Series, p, func(s Series, target model.Pair) int {
		return model.ComparePairs(s.Pair, target)
	})
	if !found {
		return Series{}, false
	}
	return r.Series[i], true
}

// Reconstructor holds the state of one replay. It is not safe for
// concurrent use; create one per run.
type Reconstructor struct {
	threshold float64
	stopOnEnd bool
	logger    logger.Logger

	tags     map[string]int
	started  bool
	lastPass map[model.Pair]float64
	series   map[model.Pair]*Series
	stats    Stats
}

// New creates a reconstructor. Every pair in pairs is reported even if it
// never passes; pairs outside the list are added when first sighted.
func New(pairs []model.Pair, opts ...Option) *Reconstructor {
	r := &Reconstructor{
		threshold: DefaultThreshold,
		tags:      make(map[string]int),
		lastPass:  make(map[model.Pair]float64),
		series:    make(map[model.Pair]*Series, len(pairs)),
		stats:     Stats{Events: make(map[model.EventType]int)},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("passes")
	}
	for _, p := range pairs {
		r.seriesFor(p)
	}
	return r
}

// Run applies every event of seq in order and returns the result. The first
// decode or apply error aborts the run.
func (r *Reconstructor) Run(ctx context.Context, seq iter.Seq2[model.Event, error]) (*Result, error) {
	for ev, err := range seq {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("replay interrupted: %w", err)
		}
		if err := r.Apply(ctx, ev); err != nil {
			return nil, err
		}
	}
	metrics.UpdateAssignedTags(len(r.tags))
	return r.Result(), nil
}

// Apply consumes a single event.
func (r *Reconstructor) Apply(ctx context.Context, ev model.Event) error {
	r.stats.Events[ev.Type]++
	if ev.Type.Handled() {
		metrics.RecordEvent(string(ev.Type))
	} else {
		metrics.RecordEvent("other")
	}

	switch ev.Type {
	case model.Start:
		r.started = true
	case model.End:
		if r.stopOnEnd {
			r.started = false
		}
	case model.AddTag:
		r.tags[ev.Tag] = ev.TeamNb
	case model.RemoveTag:
		if _, ok := r.tags[ev.Tag]; !ok {
			metrics.RecordErrorByComponent("passes", "tag_not_assigned")
			return fmt.Errorf("%w: tag %q (line %d)", ErrTagNotAssigned, ev.Tag, ev.Line)
		}
		delete(r.tags, ev.Tag)
	case model.TagSeen:
		r.sighting(ctx, ev)
	default:
		r.stats.Ignored++
	}
	return nil
}

func (r *Reconstructor) sighting(ctx context.Context, ev model.Event) {
	if !r.started {
		r.stats.DiscardedNotStarted++
		metrics.RecordSightingDiscarded(metrics.ReasonNotStarted)
		return
	}
	team, ok := r.tags[ev.Tag]
	if !ok {
		r.stats.DiscardedUnassigned++
		metrics.RecordSightingDiscarded(metrics.ReasonUnassigned)
		return
	}

	key := model.Pair{Reader: ev.ReaderID, Team: team}
	s := r.seriesFor(key)
	ref, seen := r.lastPass[key]
	if !seen {
		r.lastPass[key] = ev.Time
		return
	}

	gap := ev.Time - ref
	if gap <= r.threshold {
		r.stats.Debounced++
		metrics.RecordReadDebounced()
		return
	}

	r.lastPass[key] = ev.Time
	s.Passes = append(s.Passes, ev.Time)
	s.Gaps = append(s.Gaps, gap)
	r.stats.Accepted++
	metrics.RecordPassAccepted()
	r.logger.Debug(ctx, "pass accepted",
		logger.Int("reader", key.Reader),
		logger.Int("team", key.Team),
		logger.Float64("time", ev.Time),
		logger.Float64("gap", gap),
	)
}

func (r *Reconstructor) seriesFor(p model.Pair) *Series {
	s, ok := r.series[p]
	if !ok {
		s = &Series{Pair: p, Passes: []float64{}, Gaps: []float64{}}
		r.series[p] = s
	}
	return s
}

// Result returns a copy of the current series, ordered by reader then team.
func (r *Reconstructor) Result() *Result {
	keys := slices.SortedFunc(maps.Keys(r.series), model.ComparePairs)
	out := &Result{Series: make([]Series, 0, len(keys))}
	for _, k := range keys {
		s := r.series[k]
		out.Series = append(out.Series, Series{
			Pair:   s.Pair,
			Passes: slices.Clone(s.Passes),
			Gaps:   slices.Clone(s.Gaps),
		})
	}
	out.Stats = r.stats
	out.Stats.Events = maps.Clone(r.stats.Events)
	out.Stats.AssignedTagsAtFinish = len(r.tags)
	return out
}
