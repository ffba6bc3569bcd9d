// Package standings ranks teams by the laps counted at one reader.
//
// Ordering: passes DESC, then team ASC (deterministic). Teams with the same
// number of passes share a rank and the next rank follows consecutively.
package standings

import (
	"cmp"
	"slices"

	"github.com/okian/lapreplay/internal/domain/passes"
)

// Entry represents a standings row.
type Entry struct {
	Rank     int     `json:"rank"`
	Team     int     `json:"team"`
	Name     string  `json:"name,omitempty"`
	Passes   int     `json:"passes"`
	BestGap  float64 `json:"bestGap,omitempty"`
	LastPass float64 `json:"lastPass,omitempty"`
}

// Table is an immutable ranking built from one replay. It is safe for
// concurrent reads.
type Table struct {
	reader  int
	entries []Entry
	byTeam  map[int]int
}

// Build ranks every team reported at reader.
func Build(result *passes.Result, reader int, names map[int]string) *Table {
	t := &Table{reader: reader, byTeam: make(map[int]int)}
	if result == nil {
		return t
	}
	for _, s := range result.Series {
		if s.Pair.Reader != reader {
			continue
		}
		e := Entry{Team: s.Pair.Team, Name: names[s.Pair.Team], Passes: len(s.Passes)}
		if len(s.Gaps) > 0 {
			e.BestGap = slices.Min(s.Gaps)
			e.LastPass = s.Passes[len(s.Passes)-1]
		}
		t.entries = append(t.entries, e)
	}

	slices.SortFunc(t.entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Passes, a.Passes); c != 0 {
			return c
		}
		return cmp.Compare(a.Team, b.Team)
	})
	assignRanksWithTies(t.entries)
	for i, e := range t.entries {
		t.byTeam[e.Team] = i
	}
	return t
}

// Reader returns the reader the table was built for.
func (t *Table) Reader() int { return t.reader }

// TopN returns the first n entries.
func (t *Table) TopN(n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	return slices.Clone(t.entries[:min(n, len(t.entries))]), nil
}

// Rank returns the entry of team.
func (t *Table) Rank(team int) (Entry, error) {
	i, ok := t.byTeam[team]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return t.entries[i], nil
}

// Count returns the number of ranked teams.
func (t *Table) Count() int { return len(t.entries) }

// assignRanksWithTies gives equal pass counts the same rank. Entries must
// already be sorted.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Passes != entries[i-1].Passes {
			rank++
		}
		entries[i].Rank = rank
	}
}
