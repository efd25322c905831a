// Package errs defines the error kinds shared across the application's
// service layer. None of these are fatal: validation and not-found errors
// surface as user-visible messages, warnings are logged and carried on.
package errs

import "fmt"

// ValidationError indicates malformed or incomplete user input, such as an
// import blob with the wrong shape or a signup with missing fields.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a ValidationError with a formatted message
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates an unresolvable entity ID. Callers render an
// empty state rather than failing.
type NotFoundError struct {
	Kind string // "track", "playlist", "artist", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewNotFound creates a NotFoundError for the given entity kind and ID
func NewNotFound(kind string, id interface{}) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

// PersistenceWarning reports a failed or skipped storage write. The
// in-memory mutation it accompanies is never rolled back; the warning only
// exists so surrounding code can notify the user.
type PersistenceWarning struct {
	Key string
	Err error
}

func (e *PersistenceWarning) Error() string {
	return fmt.Sprintf("failed to persist %q: %v", e.Key, e.Err)
}

func (e *PersistenceWarning) Unwrap() error {
	return e.Err
}

// PlaybackStartError indicates the audio primitive rejected a play request.
// In the default (non-strict) policy it is logged and masked by an
// optimistic playing state.
type PlaybackStartError struct {
	Source string
	Err    error
}

func (e *PlaybackStartError) Error() string {
	return fmt.Sprintf("playback failed to start for %q: %v", e.Source, e.Err)
}

func (e *PlaybackStartError) Unwrap() error {
	return e.Err
}
