package workflow

import "errors"

// Failure kinds returned by the appointment workflow. Callers wrap them with
// detail via fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("action not permitted")
	ErrMissingField      = errors.New("required field missing")
	ErrConflict          = errors.New("conflict")
	ErrInvalidState      = errors.New("invalid appointment state")
)
