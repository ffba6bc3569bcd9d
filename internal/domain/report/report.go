// Package report assembles the output of one replay run.
package report

import (
	"slices"
	"time"

	"github.com/okian/lapreplay/internal/domain/model"
	"github.com/okian/lapreplay/internal/domain/outlier"
	"github.com/okian/lapreplay/internal/domain/passes"
	"github.com/okian/lapreplay/internal/domain/standings"
)

// Pair is the reported series of one (reader, team) pair.
type Pair struct {
	Reader int       `json:"reader"`
	Team   int       `json:"team"`
	Name   string    `json:"name,omitempty"`
	Passes []float64 `json:"passes"`
	Gaps   []float64 `json:"gaps"`

	// Bands is nil when the series is too short; BandsError says why.
	Bands      *outlier.Bands `json:"bands,omitempty"`
	BandsError string         `json:"bandsError,omitempty"`
}

// Series returns the pair as a reconstruction series.
func (p Pair) Series() passes.Series {
	return passes.Series{Pair: model.Pair{Reader: p.Reader, Team: p.Team}, Passes: p.Passes, Gaps: p.Gaps}
}

// Report is the result of one replay.
type Report struct {
	RunID           string            `json:"runId"`
	CreatedAt       time.Time         `json:"createdAt"`
	Threshold       float64           `json:"threshold"`
	Pairs           []Pair            `json:"pairs"`
	Stats           passes.Stats      `json:"stats"`
	StandingsReader int               `json:"standingsReader"`
	Standings       []standings.Entry `json:"standings"`
}

// StandingsFor ranks the reported teams at reader.
func (r *Report) StandingsFor(reader int) *standings.Table {
	res := &passes.Result{Series: make([]passes.Series, 0, len(r.Pairs))}
	names := make(map[int]string)
	for _, p := range r.Pairs {
		res.Series = append(res.Series, p.Series())
		if p.Name != "" {
			names[p.Team] = p.Name
		}
	}
	return standings.Build(res, reader, names)
}

// Params controls how a result is turned into a report.
type Params struct {
	RunID     string
	Threshold float64
	Names     map[int]string
	// Excluded teams are left out of pairs and standings.
	Excluded        []int
	StandingsReader int
	Now             func() time.Time
}

// Build assembles a report from a reconstruction result.
func Build(result *passes.Result, p Params) *Report {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	r := &Report{
		RunID:           p.RunID,
		CreatedAt:       now().UTC(),
		Threshold:       p.Threshold,
		Pairs:           make([]Pair, 0, len(result.Series)),
		Stats:           result.Stats,
		StandingsReader: p.StandingsReader,
	}

	for _, s := range result.Series {
		if slices.Contains(p.Excluded, s.Pair.Team) {
			continue
		}

		rp := Pair{
			Reader: s.Pair.Reader,
			Team:   s.Pair.Team,
			Name:   p.Names[s.Pair.Team],
			Passes: s.Passes,
			Gaps:   s.Gaps,
		}
		if b, err := outlier.Compute(s.Gaps); err != nil {
			rp.BandsError = err.Error()
		} else {
			rp.Bands = &b
		}
		r.Pairs = append(r.Pairs, rp)
	}

	r.Standings = []standings.Entry{}
	if table := r.StandingsFor(p.StandingsReader); table.Count() > 0 {
		r.Standings, _ = table.TopN(table.Count())
	}
	return r
}
