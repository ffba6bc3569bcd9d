package simulate

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/lapreplay/internal/domain/model"
	"github.com/okian/lapreplay/internal/domain/report"
)

// ErrMismatch is returned when a replay disagrees with the ground truth.
var ErrMismatch = errors.New("replay does not match ground truth")

const tolerance = 1e-9

// Verify compares every reported pair with the truth and returns how many
// pairs were checked. Pairs missing from the report are ignored so excluded
// teams do not fail the run.
func Verify(rep *report.Report, truth map[model.Pair]Expected) (int, error) {
	checked := 0
	for _, p := range rep.Pairs {
		key := model.Pair{Reader: p.Reader, Team: p.Team}
		exp, ok := truth[key]
		if !ok {
			if len(p.Passes) > 0 {
				return checked, fmt.Errorf("%w: %s has %d unexpected passes", ErrMismatch, key, len(p.Passes))
			}
			continue
		}
		if err := sameSeries("passes", p.Passes, exp.Passes); err != nil {
			return checked, fmt.Errorf("%w: %s: %w", ErrMismatch, key, err)
		}
		if err := sameSeries("gaps", p.Gaps, exp.Gaps); err != nil {
			return checked, fmt.Errorf("%w: %s: %w", ErrMismatch, key, err)
		}
		checked++
	}
	return checked, nil
}

func sameSeries(name string, got, want []float64) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s: got %d values, want %d", name, len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > tolerance {
			return fmt.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
	return nil
}
