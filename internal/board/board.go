// Package board provides the client for the hosted Kanban board
// service.
//
// The service exposes boards ("projects" in its API), each with a
// linear track of phases and a set of stories; every story carries an
// ordered checklist of tasks. All access goes through an authenticated
// HTTPS API with a per-user key. The client keeps one HTTP session per
// run for connection reuse; callers issue requests sequentially.
package board

import (
	"encoding/json"
	"fmt"
)

// Colors lists the card colors the service accepts.
var Colors = []string{
	"grey", "blue", "red", "green", "orange", "yellow", "purple", "teal",
}

// ValidColor reports whether c is an accepted card color.
func ValidColor(c string) bool {
	for _, v := range Colors {
		if v == c {
			return true
		}
	}
	return false
}

// User identifies an account on the board service.
type User struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	UserName string `json:"userName,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Board is one Kanban board on the service.
type Board struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       *User  `json:"owner,omitempty"`
}

// Phase is one column of a board's track. Index gives the position in
// the track, starting at 0 for the leftmost (Backlog) column.
type Phase struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Index       int    `json:"index"`
	Limit       int    `json:"limit,omitempty"`
}

// Tag is a label attached to a story.
type Tag struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Task status values on the wire.
const (
	TaskStatusTodo = "incomplete"
	TaskStatusDone = "complete"
)

// Task is one checklist item inside a story. Order within the story is
// the order of Story.Tasks.
type Task struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

// Done reports whether the task has been checked off on the board.
func (t *Task) Done() bool {
	return t.Status == TaskStatusDone
}

// Story is one card on a board.
type Story struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	Details string `json:"details,omitempty"`
	Size    string `json:"size,omitempty"`
	Color   string `json:"color,omitempty"`
	Phase   *Phase `json:"phase,omitempty"`
	Owner   *User  `json:"owner,omitempty"`
	Creator *User  `json:"creator,omitempty"`
	Tags    []Tag  `json:"tags,omitempty"`
	Tasks   []Task `json:"tasks,omitempty"`
}

// TagNames returns the story's tag names in order.
func (s *Story) TagNames() []string {
	if len(s.Tags) == 0 {
		return nil
	}
	names := make([]string, len(s.Tags))
	for i, tag := range s.Tags {
		names[i] = tag.Name
	}
	return names
}

// StoryDraft carries the writable fields for story create and update
// calls. Zero-valued fields are omitted from the request. Tags is
// omitted only when nil; a non-nil empty slice clears the story's tags.
type StoryDraft struct {
	Text    string   `json:"text,omitempty"`
	Details string   `json:"details,omitempty"`
	Color   string   `json:"color,omitempty"`
	PhaseID int      `json:"phase,omitempty"`
	Owner   string   `json:"owner,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// MarshalJSON encodes a non-nil empty Tags slice as "tags":[] so a tag
// clear reaches the service. omitempty alone would drop the key and the
// remote tags would survive the update.
func (d StoryDraft) MarshalJSON() ([]byte, error) {
	type draft StoryDraft
	if d.Tags == nil || len(d.Tags) > 0 {
		return json.Marshal(draft(d))
	}
	return json.Marshal(struct {
		draft
		Tags []string `json:"tags"`
	}{draft: draft(d), Tags: []string{}})
}

// TaskDraft carries the writable fields for task create and update
// calls.
type TaskDraft struct {
	Text   string `json:"text,omitempty"`
	Status string `json:"status,omitempty"`
}

// Validate checks draft invariants before a request is issued.
func (d *StoryDraft) Validate() error {
	if d.Color != "" && !ValidColor(d.Color) {
		return fmt.Errorf("invalid story color %q (valid: %v)", d.Color, Colors)
	}
	return nil
}
