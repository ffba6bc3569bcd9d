// Package outlier derives reference bands for a pair's lap gaps.
//
// Bands are descriptive. Nothing here removes gaps from a series.
package outlier

import (
	"fmt"
	"math"
	"slices"
)

// fenceFactor is Tukey's fence multiplier.
const fenceFactor = 1.5

// Bands are the reference lines drawn over a gap series.
type Bands struct {
	// FastLap is twice the shortest gap.
	FastLap float64 `json:"fastLap"`
	Q1      float64 `json:"q1"`
	Q3      float64 `json:"q3"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
}

// Flags describes where a single gap falls relative to the bands.
type Flags struct {
	Fast    bool `json:"fast"`
	Outlier bool `json:"outlier"`
}

// Compute returns the bands of gaps. The input is not modified.
func Compute(gaps []float64) (Bands, error) {
	if len(gaps) < 2 {
		return Bands{}, fmt.Errorf("%w: got %d", ErrInsufficientData, len(gaps))
	}
	sorted := slices.Clone(gaps)
	slices.Sort(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1
	return Bands{
		FastLap: 2 * sorted[0],
		Q1:      q1,
		Q3:      q3,
		Low:     q1 - fenceFactor*iqr,
		High:    q3 + fenceFactor*iqr,
	}, nil
}

// Classify flags gap against b.
func (b Bands) Classify(gap float64) Flags {
	return Flags{
		Fast:    gap < b.FastLap,
		Outlier: gap < b.Low || gap > b.High,
	}
}

// percentile interpolates linearly between the two closest ranks of the
// sorted input, matching numpy's default method.
func percentile(sorted []float64, p float64) float64 {
	pos := p / 100 * float64(len(sorted)-1)
	lo := math.Floor(pos)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - lo
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}
