// Package simulate generates synthetic race logs with known lap times and
// checks a replay of them against that ground truth.
package simulate

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for a race that could not replay cleanly.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds configuration for a simulated race.
type Config struct {
	Readers int   // Number of reading stations
	Teams   []int // Team numbers taking part
	Laps    int   // Passes per team after the first crossing

	MinLap float64 // Shortest lap, must exceed the debounce threshold
	MaxLap float64 // Longest lap

	ReaderOffset float64 // Delay between consecutive readers on one lap
	MaxRereads   int     // Extra reads per crossing
	RereadSpread float64 // Window the extra reads fall in, at most the threshold

	NoiseReads    int  // Sightings of a tag that is never assigned
	PreStartReads bool // Emit sightings before Start

	Seed      uint64  // Random seed; equal seeds give equal logs
	StartTime float64 // Log time of the Start event

	OutputFile string        // Where to write the log; empty keeps it in memory
	BaseURL    string        // Replay through a running server instead of in process
	Timeout    time.Duration // HTTP request timeout
}

// DefaultConfig returns a small race of the default roster.
func DefaultConfig() Config {
	teams := make([]int, 18)
	for i := range teams {
		teams[i] = i + 1
	}
	return Config{
		Readers:       3,
		Teams:         teams,
		Laps:          20,
		MinLap:        40,
		MaxLap:        90,
		ReaderOffset:  3,
		MaxRereads:    4,
		RereadSpread:  10,
		NoiseReads:    25,
		PreStartReads: true,
		Seed:          1,
		StartTime:     1414590000,
		Timeout:       30 * time.Second,
	}
}

// Validate checks that the race debounces into exactly one pass per lap.
func (c Config) Validate(threshold float64) error {
	switch {
	case c.Readers < 1:
		return fmt.Errorf("%w: readers must be at least 1", ErrInvalidConfig)
	case len(c.Teams) == 0:
		return fmt.Errorf("%w: no teams", ErrInvalidConfig)
	case c.Laps < 1:
		return fmt.Errorf("%w: laps must be at least 1", ErrInvalidConfig)
	case c.MinLap <= threshold:
		return fmt.Errorf("%w: min lap %v must exceed threshold %v", ErrInvalidConfig, c.MinLap, threshold)
	case c.MaxLap < c.MinLap:
		return fmt.Errorf("%w: max lap below min lap", ErrInvalidConfig)
	case c.MaxRereads < 0 || c.NoiseReads < 0 || c.ReaderOffset < 0:
		return fmt.Errorf("%w: negative counts or offsets", ErrInvalidConfig)
	case c.MaxRereads > 0 && (c.RereadSpread <= 0 || c.RereadSpread > threshold):
		return fmt.Errorf("%w: reread spread must be in (0, %v]", ErrInvalidConfig, threshold)
	}
	return nil
}
