package script

import "github.com/cockroachdb/errors"

var (
	// ErrStateClosed is returned when running code on a closed state.
	ErrStateClosed = errors.New("script: state is closed")

	// ErrInterrupted is returned when a script is stopped by its context,
	// either through cancellation or the run timeout.
	ErrInterrupted = errors.New("script: interrupted")
)
