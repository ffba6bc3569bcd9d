package passes

import "errors"

// Sentinel kinds for reconstruction errors.
var (
	// ErrTagNotAssigned is returned for a RemoveTag of a tag that has no
	// team. The log is assumed consistent, so this aborts the run.
	ErrTagNotAssigned = errors.New("remove of unassigned tag")
)
