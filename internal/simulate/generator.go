package simulate

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"

	"github.com/okian/lapreplay/internal/domain/model"
)

// noiseTag is seen by the readers but never assigned to a team.
const noiseTag = "002420149999"

// wireEvent is one line of a generated log.
type wireEvent struct {
	Type     model.EventType `json:"type"`
	Time     float64         `json:"time"`
	Tag      string          `json:"tag,omitempty"`
	TeamNb   *int            `json:"teamNb,omitempty"`
	ReaderID *int            `json:"readerId,omitempty"`
	Status   string          `json:"status,omitempty"`
}

// Race is a generated log with the passes it must replay to.
type Race struct {
	events []wireEvent
	// Truth holds the expected passes and gaps per pair.
	Truth map[model.Pair]Expected
}

// Expected is the ground truth of one pair.
type Expected struct {
	Passes []float64
	Gaps   []float64
}

// TagFor returns the tag number worn by team.
func TagFor(team int) string {
	return fmt.Sprintf("0024201400%02d", team)
}

// Generate builds a race from cfg. The caller validates cfg first.
func Generate(cfg Config) *Race {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible, not secret
	race := &Race{Truth: make(map[model.Pair]Expected)}
	start := cfg.StartTime

	for _, team := range cfg.Teams {
		race.add(wireEvent{Type: model.AddTag, Time: start - 60, Tag: TagFor(team), TeamNb: ptr(team)})
		if cfg.PreStartReads {
			race.add(wireEvent{Type: model.TagSeen, Time: start - 30, Tag: TagFor(team), ReaderID: ptr(0)})
		}
	}
	race.add(wireEvent{Type: model.Start, Time: start})
	race.add(wireEvent{Type: model.EventType("StatusChange"), Time: start, Status: "Running"})

	end := start
	for _, team := range cfg.Teams {
		// crossing 0 only seeds the reference
		crossings := make([]float64, cfg.Laps+1)
		crossings[0] = start + 1 + rng.Float64()*5
		for i := 1; i < len(crossings); i++ {
			crossings[i] = crossings[i-1] + cfg.MinLap + rng.Float64()*(cfg.MaxLap-cfg.MinLap)
		}

		for reader := range cfg.Readers {
			offset := float64(reader) * cfg.ReaderOffset
			seen := make([]float64, len(crossings))
			for i, c := range crossings {
				seen[i] = c + offset
				race.add(wireEvent{Type: model.TagSeen, Time: seen[i], Tag: TagFor(team), ReaderID: ptr(reader)})
				for range rng.IntN(cfg.MaxRereads + 1) {
					t := seen[i] + rng.Float64()*cfg.RereadSpread
					race.add(wireEvent{Type: model.TagSeen, Time: t, Tag: TagFor(team), ReaderID: ptr(reader)})
				}
			}
			exp := Expected{Passes: slices.Clone(seen[1:]), Gaps: make([]float64, cfg.Laps)}
			for i := 1; i < len(seen); i++ {
				exp.Gaps[i-1] = seen[i] - seen[i-1]
			}
			race.Truth[model.Pair{Reader: reader, Team: team}] = exp
			end = max(end, seen[len(seen)-1]+cfg.RereadSpread)
		}
	}

	for range cfg.NoiseReads {
		t := start + rng.Float64()*(end-start)
		race.add(wireEvent{Type: model.TagSeen, Time: t, Tag: noiseTag, ReaderID: ptr(rng.IntN(cfg.Readers))})
	}
	race.add(wireEvent{Type: model.End, Time: end + 1})

	slices.SortStableFunc(race.events, func(a, b wireEvent) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return race
}

func (r *Race) add(ev wireEvent) { r.events = append(r.events, ev) }

// Lines returns the number of log lines.
func (r *Race) Lines() int { return len(r.events) }

// WriteTo writes the race as a newline-delimited event log.
func (r *Race) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, ev := range r.events {
		if err := enc.Encode(ev); err != nil {
			return 0, fmt.Errorf("encode event %d: %w", i, err)
		}
	}
	return buf.WriteTo(w)
}

func ptr(v int) *int { return &v }
