package sync

import (
	"context"
	"fmt"
	"testing"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
)

// fakeLocal is an in-memory local.Store. Reads hand out deep copies so
// the syncer can only change it through the write operations, the same
// way the real scripting bridge behaves.
type fakeLocal struct {
	projects []*local.Project
}

func (f *fakeLocal) Projects(context.Context) ([]*local.Project, error) {
	out := make([]*local.Project, 0, len(f.projects))
	for _, p := range f.projects {
		cp := *p
		cp.Tasks = make([]*local.Task, len(p.Tasks))
		for i, t := range p.Tasks {
			tc := *t
			cp.Tasks[i] = &tc
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeLocal) SetProjectStatus(_ context.Context, projectID string, status local.Status) error {
	for _, p := range f.projects {
		if p.ID == projectID {
			p.Status = status
			return nil
		}
	}
	return local.ErrProjectNotFound
}

func (f *fakeLocal) SetTaskCompleted(_ context.Context, taskID string) error {
	for _, p := range f.projects {
		for _, t := range p.Tasks {
			if t.ID == taskID {
				t.Completed = true
				return nil
			}
		}
	}
	return local.ErrTaskNotFound
}

func (f *fakeLocal) project(t *testing.T, id string) *local.Project {
	t.Helper()
	for _, p := range f.projects {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("project %s not in fake store", id)
	return nil
}

// fakeBoard is an in-memory BoardService with the canonical six-phase
// track. It applies drafts the way the service does: zero-valued draft
// fields leave the stored value alone.
type fakeBoard struct {
	phases  []board.Phase
	stories map[int]*board.Story
	order   []int // story ids in listing order
	nextID  int

	// deleteErr fails DeleteStory for specific story ids.
	deleteErr map[int]error
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{
		phases: []board.Phase{
			{ID: 10, Name: "Backlog", Index: 0},
			{ID: 11, Name: "Ready", Index: 1},
			{ID: 12, Name: "Working", Index: 2},
			{ID: 13, Name: "Testing", Index: 3},
			{ID: 14, Name: "Done", Index: 4},
			{ID: 15, Name: "Archive", Index: 5},
		},
		stories: make(map[int]*board.Story),
		nextID:  100,
	}
}

func (f *fakeBoard) phase(id int) *board.Phase {
	for i := range f.phases {
		if f.phases[i].ID == id {
			p := f.phases[i]
			return &p
		}
	}
	return nil
}

func (f *fakeBoard) phaseByName(t *testing.T, name string) *board.Phase {
	t.Helper()
	for i := range f.phases {
		if f.phases[i].Name == name {
			p := f.phases[i]
			return &p
		}
	}
	t.Fatalf("no phase named %q", name)
	return nil
}

// addStory seeds a story directly, bypassing the write path.
func (f *fakeBoard) addStory(s board.Story) *board.Story {
	f.nextID++
	s.ID = f.nextID
	f.stories[s.ID] = &s
	f.order = append(f.order, s.ID)
	return &s
}

func (f *fakeBoard) Phases(context.Context, int) ([]board.Phase, error) {
	return append([]board.Phase(nil), f.phases...), nil
}

func (f *fakeBoard) Stories(context.Context, int) ([]board.Story, error) {
	out := make([]board.Story, 0, len(f.order))
	for _, id := range f.order {
		s, ok := f.stories[id]
		if !ok {
			continue
		}
		cp := *s
		cp.Tasks = append([]board.Task(nil), s.Tasks...)
		cp.Tags = append([]board.Tag(nil), s.Tags...)
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeBoard) CreateStory(_ context.Context, _ int, draft board.StoryDraft) (*board.Story, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	f.nextID++
	s := &board.Story{
		ID:      f.nextID,
		Text:    draft.Text,
		Details: draft.Details,
		Color:   draft.Color,
		Phase:   f.phase(draft.PhaseID),
	}
	if s.Phase == nil {
		s.Phase = f.phase(10) // service default: Backlog
	}
	for _, name := range draft.Tags {
		s.Tags = append(s.Tags, board.Tag{Name: name})
	}
	if draft.Owner != "" {
		s.Owner = &board.User{UserName: draft.Owner}
	}
	f.stories[s.ID] = s
	f.order = append(f.order, s.ID)
	cp := *s
	return &cp, nil
}

func (f *fakeBoard) UpdateStory(_ context.Context, _ int, storyID int, draft board.StoryDraft) (*board.Story, error) {
	s, ok := f.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("story %d not found", storyID)
	}
	if draft.Text != "" {
		s.Text = draft.Text
	}
	if draft.Details != "" {
		s.Details = draft.Details
	}
	if draft.Color != "" {
		s.Color = draft.Color
	}
	if draft.PhaseID != 0 {
		s.Phase = f.phase(draft.PhaseID)
	}
	if draft.Tags != nil {
		s.Tags = nil
		for _, name := range draft.Tags {
			s.Tags = append(s.Tags, board.Tag{Name: name})
		}
	}
	cp := *s
	return &cp, nil
}

func (f *fakeBoard) DeleteStory(_ context.Context, _ int, storyID int) error {
	if err := f.deleteErr[storyID]; err != nil {
		return err
	}
	if _, ok := f.stories[storyID]; !ok {
		return fmt.Errorf("story %d not found", storyID)
	}
	delete(f.stories, storyID)
	return nil
}

func (f *fakeBoard) CreateTask(_ context.Context, _ int, storyID int, draft board.TaskDraft) (*board.Task, error) {
	s, ok := f.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("story %d not found", storyID)
	}
	f.nextID++
	task := board.Task{ID: f.nextID, Text: draft.Text, Status: draft.Status}
	if task.Status == "" {
		task.Status = board.TaskStatusTodo
	}
	s.Tasks = append(s.Tasks, task)
	return &task, nil
}

func (f *fakeBoard) UpdateTask(_ context.Context, _ int, storyID, taskID int, draft board.TaskDraft) (*board.Task, error) {
	s, ok := f.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("story %d not found", storyID)
	}
	for i := range s.Tasks {
		if s.Tasks[i].ID == taskID {
			if draft.Text != "" {
				s.Tasks[i].Text = draft.Text
			}
			if draft.Status != "" {
				s.Tasks[i].Status = draft.Status
			}
			task := s.Tasks[i]
			return &task, nil
		}
	}
	return nil, fmt.Errorf("task %d not found in story %d", taskID, storyID)
}

func (f *fakeBoard) DeleteTask(_ context.Context, _ int, storyID, taskID int) error {
	s, ok := f.stories[storyID]
	if !ok {
		return fmt.Errorf("story %d not found", storyID)
	}
	for i := range s.Tasks {
		if s.Tasks[i].ID == taskID {
			s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("task %d not found in story %d", taskID, storyID)
}

func (f *fakeBoard) ReorderTasks(_ context.Context, _ int, storyID int, taskIDs []int) error {
	s, ok := f.stories[storyID]
	if !ok {
		return fmt.Errorf("story %d not found", storyID)
	}
	if len(taskIDs) != len(s.Tasks) {
		return fmt.Errorf("reorder must list all %d tasks, got %d", len(s.Tasks), len(taskIDs))
	}
	byID := make(map[int]board.Task, len(s.Tasks))
	for _, task := range s.Tasks {
		byID[task.ID] = task
	}
	reordered := make([]board.Task, 0, len(taskIDs))
	for _, id := range taskIDs {
		task, ok := byID[id]
		if !ok {
			return fmt.Errorf("task %d not found in story %d", id, storyID)
		}
		reordered = append(reordered, task)
	}
	s.Tasks = reordered
	return nil
}

// findStory returns the single story on the board, failing the test if
// there is not exactly one.
func (f *fakeBoard) onlyStory(t *testing.T) *board.Story {
	t.Helper()
	if len(f.stories) != 1 {
		t.Fatalf("board has %d stories, want 1", len(f.stories))
	}
	for _, s := range f.stories {
		return s
	}
	return nil
}

// newTestSyncer wires a syncer over the fakes with a quiet logger and a
// select-everything predicate.
func newTestSyncer(t *testing.T, store *fakeLocal, b *fakeBoard, format *Formatter) *Syncer {
	t.Helper()
	if format == nil {
		format = &Formatter{}
	}
	s, err := New(Config{
		Local:     store,
		Board:     b,
		BoardID:   1,
		Formatter: format,
		Select:    func(*local.Project) bool { return true },
		Logger:    testLogger(t),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}
