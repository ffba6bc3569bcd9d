package eventlog

import "errors"

// Sentinel kinds for decode errors. Both are fatal to a replay.
var (
	ErrMalformed   = errors.New("malformed log record")
	ErrLineTooLong = errors.New("log line exceeds limit")
)
