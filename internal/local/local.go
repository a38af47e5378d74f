// Package local defines the task-manager side of the synchronizer.
//
// It models the projects and tasks owned by the local GTD application
// and abstracts access to them behind the Store interface. The design
// follows a strategy pattern with two implementations:
//
//   - internal/local/omnifocus: live scripting bridge (read/write)
//   - internal/local/cache: read-only reader of the application's
//     on-disk SQLite cache, used by watch mode and diagnostics
//
// The task manager is the authoritative side of the sync. Writes back
// into it are deliberately narrow: set a project's status, or mark a
// task completed. Everything else flows from it, never into it.
package local

import (
	"context"
	"time"
)

// Status is the lifecycle state of a project in the task manager.
type Status string

const (
	// StatusActive indicates a project being actively worked.
	StatusActive Status = "active"

	// StatusOnHold indicates a project deliberately paused.
	StatusOnHold Status = "on-hold"

	// StatusCompleted indicates a finished project.
	StatusCompleted Status = "completed"

	// StatusDropped indicates an abandoned project.
	StatusDropped Status = "dropped"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

// Project is a snapshot of one project in the task manager.
//
// The ID is opaque and stable; it is assigned by the task manager and
// is the only identity carried across into the board service (embedded
// in story details, see internal/sync). Tasks preserve the project's
// own ordering.
type Project struct {
	// ID is the task manager's stable, opaque project identifier.
	ID string

	// Name is the project title.
	Name string

	// FolderPath is the full folder path containing the project,
	// segments joined with ", " (e.g. "Work, Infrastructure").
	FolderPath string

	// Context is the full context path of the project, segments
	// joined with "/" (e.g. "Work/Office").
	Context string

	// Note is the project's free-text note.
	Note string

	// Status is the project lifecycle state.
	Status Status

	// SingleActionList marks a bucket of unrelated actions rather
	// than a real project. Such holders are normally excluded from
	// sync by the selection rules.
	SingleActionList bool

	// DueDate is the project due date, if any.
	DueDate *time.Time

	// StartDate is the project's defer/start date, if any.
	StartDate *time.Time

	// Tasks are the project's tasks in the task manager's order.
	Tasks []*Task
}

// Completed reports whether the project is in a completed state.
func (p *Project) Completed() bool {
	return p.Status == StatusCompleted
}

// Task is a snapshot of one task inside a project.
type Task struct {
	// ID is the task manager's stable, opaque task identifier.
	ID string

	// ProjectID identifies the owning project. Back-reference only;
	// the project owns the task, not the other way around.
	ProjectID string

	// Name is the task title.
	Name string

	// Context is the full context path of the task.
	Context string

	// Completed reports whether the task is done.
	Completed bool

	// DueDate is the task due date, if any.
	DueDate *time.Time

	// StartDate is the task's defer/start date, if any.
	StartDate *time.Time
}

// Store provides access to the task manager.
//
// Projects returns a full snapshot for one sync run: every project with
// its tasks in order. Snapshots are rediscovered each run; no state is
// carried between runs.
//
// The two write operations are the complete write surface this system
// is permitted on the task manager. Both are idempotent: writing a
// value that is already set is a no-op.
//
// Implementations are synchronous and non-reentrant; callers must not
// issue concurrent operations against the same Store.
type Store interface {
	// Projects returns all projects with their tasks, in the task
	// manager's own order.
	Projects(ctx context.Context) ([]*Project, error)

	// SetProjectStatus sets a project's lifecycle status.
	SetProjectStatus(ctx context.Context, projectID string, status Status) error

	// SetTaskCompleted marks a task as completed.
	SetTaskCompleted(ctx context.Context, taskID string) error
}
