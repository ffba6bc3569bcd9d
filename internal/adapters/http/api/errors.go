package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBodyTooLarge = errors.New("request body too large")
)

// opError annotates an error with the handler operation that produced it.
type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return fmt.Sprintf("%s: %v", e.op, e.err) }
func (e *opError) Unwrap() error { return e.err }

// wrap tags err with op. It returns nil for a nil err.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// wrapKind tags err with op and a sentinel kind.
func wrapKind(op string, kind, err error) error {
	return &opError{op: op, err: fmt.Errorf("%w: %w", kind, err)}
}
