package local

import "errors"

// Common errors returned by Store implementations.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, local.ErrNotRunning) {
//	    // ask the user to launch the task manager
//	}
var (
	// ErrNotRunning is returned when the task manager application is
	// not running and the scripting bridge cannot reach it.
	ErrNotRunning = errors.New("task manager is not running")

	// ErrProjectNotFound is returned when a write targets a project
	// identifier that no longer exists.
	ErrProjectNotFound = errors.New("project not found")

	// ErrTaskNotFound is returned when a write targets a task
	// identifier that no longer exists.
	ErrTaskNotFound = errors.New("task not found")

	// ErrReadOnly is returned by read-only Store implementations for
	// any write operation.
	ErrReadOnly = errors.New("store is read-only")
)
