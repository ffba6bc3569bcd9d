package logfilter

import "errors"

// Sentinel kinds for filter errors.
var (
	ErrInvalidCriteria = errors.New("invalid filter criteria")
)
