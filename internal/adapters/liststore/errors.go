package liststore

import "errors"

// Sentinel kinds for list store errors.
var (
	ErrInvalidListName = errors.New("invalid list name")
	ErrListNotFound    = errors.New("list not found")
	ErrPublish         = errors.New("publish to list failed")
)
