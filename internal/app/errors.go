package service

// notFoundError marks errors the API maps to 404.
type notFoundError string

func (e notFoundError) Error() string { return string(e) }

// NotFound reports that the requested resource does not exist.
func (notFoundError) NotFound() bool { return true }

// Sentinel kinds for service errors.
var (
	ErrNoReplay error = notFoundError("no replay has run yet")
)
