package repl

import "errors"

var (
	// ErrOutOfBounds is returned by [History.Entry] for an index outside the
	// recorded history.
	ErrOutOfBounds = errors.New("history index out of range")

	// ErrEditDeclined ends the REPL when the user chooses not to fix a source
	// that failed to parse after editing.
	ErrEditDeclined = errors.New("edit declined")
)
