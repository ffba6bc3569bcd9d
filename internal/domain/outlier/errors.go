package outlier

import "errors"

var (
	// ErrInsufficientData is returned when fewer than two gaps are available.
	ErrInsufficientData = errors.New("at least two gaps are required")
)
