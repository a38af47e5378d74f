package sync

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Common errors returned during reconciliation.
//
// These can be checked with errors.Is():
//
//	if errors.Is(err, sync.ErrDuplicateIdentity) {
//	    // two stories claim the same project; manual cleanup needed
//	}
var (
	// ErrDuplicateIdentity is returned when two or more stories embed
	// the same local project identifier. Picking one silently would
	// risk deleting a story a user still cares about, so the project
	// is skipped until the board is cleaned up by hand.
	ErrDuplicateIdentity = errors.New("duplicate embedded project identifier")

	// ErrNoBoard is returned when the syncer is constructed without a
	// board service.
	ErrNoBoard = errors.New("board service is required")

	// ErrNoStore is returned when the syncer is constructed without a
	// local store.
	ErrNoStore = errors.New("local store is required")
)

// Failure records one project (or story) whose reconciliation was
// aborted. The run continues with the remaining independent projects.
type Failure struct {
	// ProjectID is the local project identifier, when known.
	ProjectID string

	// StoryID is the remote story identifier, when known.
	StoryID int

	// Err is the underlying cause.
	Err error
}

func (f *Failure) Error() string {
	switch {
	case f.ProjectID != "" && f.StoryID != 0:
		return fmt.Sprintf("project %s (story %d): %v", f.ProjectID, f.StoryID, f.Err)
	case f.ProjectID != "":
		return fmt.Sprintf("project %s: %v", f.ProjectID, f.Err)
	case f.StoryID != 0:
		return fmt.Sprintf("story %d: %v", f.StoryID, f.Err)
	default:
		return f.Err.Error()
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// failureJSON is the wire form of a Failure; the cause survives as its
// message only.
type failureJSON struct {
	ProjectID string `json:"project_id,omitempty"`
	StoryID   int    `json:"story_id,omitempty"`
	Cause     string `json:"cause"`
}

func (f *Failure) MarshalJSON() ([]byte, error) {
	w := failureJSON{ProjectID: f.ProjectID, StoryID: f.StoryID}
	if f.Err != nil {
		w.Cause = f.Err.Error()
	}
	return json.Marshal(w)
}

func (f *Failure) UnmarshalJSON(data []byte) error {
	var w failureJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	f.ProjectID = w.ProjectID
	f.StoryID = w.StoryID
	f.Err = errors.New(w.Cause)
	return nil
}
