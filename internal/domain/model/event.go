// Package model contains domain models passed between layers.
package model

import (
	"cmp"
	"fmt"
)

// EventType discriminates log records by their "type" field.
type EventType string

// Event types the reconstructor acts on. Any other value is carried through
// as-is and ignored.
const (
	Start     EventType = "Start"
	End       EventType = "End"
	AddTag    EventType = "AddTag"
	RemoveTag EventType = "RemoveTag"
	TagSeen   EventType = "TagSeen"
)

// Handled reports whether the reconstructor acts on events of this type.
func (t EventType) Handled() bool {
	switch t {
	case Start, End, AddTag, RemoveTag, TagSeen:
		return true
	}
	return false
}

// Event is one record of a race event log.
// Only the fields relevant to Type are populated.
type Event struct {
	Type     EventType
	Tag      string  // AddTag, RemoveTag, TagSeen
	TeamNb   int     // AddTag
	ReaderID int     // TagSeen
	Time     float64 // TagSeen; seconds in the logs the timing system writes
	Line     int     // 1-based line number in the source log, 0 if synthetic
}

// TagUpdate is one record of a raw reader log, as written by a reading
// station before events are assembled.
type TagUpdate struct {
	ReaderID    int
	UpdateCount int64
	UpdateTime  float64
	Tag         string
}

// Pair identifies a (reading station, team) series.
type Pair struct {
	Reader int `json:"reader"`
	Team   int `json:"team"`
}

func (p Pair) String() string {
	return fmt.Sprintf("reader=%d team=%d", p.Reader, p.Team)
}

// ComparePairs orders pairs by reader, then team.
func ComparePairs(a, b Pair) int {
	if c := cmp.Compare(a.Reader, b.Reader); c != 0 {
		return c
	}
	return cmp.Compare(a.Team, b.Team)
}

// CrossProduct declares every reader x team pair for readers 0..readers-1.
func CrossProduct(readers int, teams []int) []Pair {
	pairs := make([]Pair, 0, readers*len(teams))
	for r := 0; r < readers; r++ {
		for _, t := range teams {
			pairs = append(pairs, Pair{Reader: r, Team: t})
		}
	}
	return pairs
}
