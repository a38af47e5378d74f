package sync

import (
	"context"

	"github.com/focuskan/focuskan/internal/board"
)

// BoardService is the slice of the board client the syncer consumes.
// *board.Client satisfies it; tests substitute an in-memory fake.
type BoardService interface {
	// Phases lists a board's phases for track discovery.
	Phases(ctx context.Context, boardID int) ([]board.Phase, error)

	// Stories lists every story on the board, enriched with details,
	// tags and tasks.
	Stories(ctx context.Context, boardID int) ([]board.Story, error)

	// CreateStory creates a story.
	CreateStory(ctx context.Context, boardID int, draft board.StoryDraft) (*board.Story, error)

	// UpdateStory updates a story's writable fields.
	UpdateStory(ctx context.Context, boardID, storyID int, draft board.StoryDraft) (*board.Story, error)

	// DeleteStory deletes a story and its tasks.
	DeleteStory(ctx context.Context, boardID, storyID int) error

	// CreateTask appends a checklist task to a story.
	CreateTask(ctx context.Context, boardID, storyID int, draft board.TaskDraft) (*board.Task, error)

	// UpdateTask updates a checklist task.
	UpdateTask(ctx context.Context, boardID, storyID, taskID int, draft board.TaskDraft) (*board.Task, error)

	// DeleteTask deletes a checklist task.
	DeleteTask(ctx context.Context, boardID, storyID, taskID int) error

	// ReorderTasks replaces the order of a story's tasks.
	ReorderTasks(ctx context.Context, boardID, storyID int, taskIDs []int) error
}
