package export

import "errors"

// Sentinel kinds for export errors.
var (
	ErrInvalidKey = errors.New("invalid object key")
	ErrWrite      = errors.New("export write failed")
)
