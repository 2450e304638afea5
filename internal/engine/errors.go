package engine

import "errors"

// ErrAborted is returned when the operator dismisses a prompt mid-workflow.
// Callers should treat it as a no-op rather than a failure.
var ErrAborted = errors.New("aborted by operator")

// PreconditionError is returned when a workflow's local preconditions fail
// before any remote call is issued.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// IsPrecondition reports whether err is a local precondition failure.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsAborted reports whether err means the operator cancelled the workflow.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}
