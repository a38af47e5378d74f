package sync

import (
	"context"
	"fmt"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
)

// taskPair is a remote checklist task matched to a local task.
//
// Matching keys on the task name (checklist text with the date marker
// stripped). When several local tasks share a name, they pair with the
// same-named remote tasks by order of first appearance on each side;
// beyond that positional rule, no task identity is assumed to survive
// across runs.
type taskPair struct {
	local  *local.Task
	remote *board.Task
}

// taskDiff is the computed plan for one story's checklist.
type taskDiff struct {
	pairs    []taskPair    // matched, possibly needing a text update
	creates  []*local.Task // local tasks with no remote counterpart
	removes  []board.Task  // unmatched remote tasks that are not done
	retained []board.Task  // unmatched remote tasks kept because done
}

// diffTasks matches a story's checklist against the project's tasks.
func diffTasks(localTasks []*local.Task, remoteTasks []board.Task) *taskDiff {
	// Remote tasks grouped by name, preserving appearance order.
	remaining := make(map[string][]*board.Task)
	for i := range remoteTasks {
		name := TaskName(remoteTasks[i].Text)
		remaining[name] = append(remaining[name], &remoteTasks[i])
	}

	d := &taskDiff{}
	for _, lt := range localTasks {
		queue := remaining[lt.Name]
		if len(queue) == 0 {
			d.creates = append(d.creates, lt)
			continue
		}
		d.pairs = append(d.pairs, taskPair{local: lt, remote: queue[0]})
		remaining[lt.Name] = queue[1:]
	}

	// Anything left on the remote side has no local counterpart.
	for i := range remoteTasks {
		rt := &remoteTasks[i]
		if matchedRemote(d.pairs, rt) {
			continue
		}
		if rt.Done() {
			d.retained = append(d.retained, *rt)
		} else {
			d.removes = append(d.removes, *rt)
		}
	}
	return d
}

func matchedRemote(pairs []taskPair, rt *board.Task) bool {
	for _, p := range pairs {
		if p.remote.ID == rt.ID {
			return true
		}
	}
	return false
}

// syncTasks reconciles one story's checklist with its project's tasks.
//
// Order of operations: remote-driven local completions first, then
// deletes, text updates and creates, and finally a single reorder pass.
// Only tasks that are present locally and not yet done remotely are
// moved; done and retained tasks keep their positions so history does
// not reshuffle.
func (s *Syncer) syncTasks(ctx context.Context, pair Pair, report *Report) error {
	p := pair.Project
	story := pair.Story

	diff := diffTasks(p.Tasks, story.Tasks)

	// Completion flows board -> task manager.
	for _, tp := range diff.pairs {
		if tp.remote.Done() && !tp.local.Completed {
			s.logger.Printf("completing local task %s %q (project %s)", tp.local.ID, tp.local.Name, p.ID)
			if err := s.local.SetTaskCompleted(ctx, tp.local.ID); err != nil {
				return fmt.Errorf("failed to complete local task %s: %w", tp.local.ID, err)
			}
			tp.local.Completed = true
			report.LocalTaskWrites++
		}
	}

	// Deletes before creates so duplicate names cannot transiently
	// collide on the board.
	for _, rt := range diff.removes {
		s.logger.Printf("deleting task %d %q from story %d", rt.ID, rt.Text, story.ID)
		if err := s.board.DeleteTask(ctx, s.boardID, story.ID, rt.ID); err != nil {
			return err
		}
		report.TasksDeleted++
	}

	// simulated tracks the story's checklist as the writes land, so
	// the reorder pass works from the post-write order.
	var simulated []board.Task
	removed := make(map[int]bool, len(diff.removes))
	for _, rt := range diff.removes {
		removed[rt.ID] = true
	}
	for _, rt := range story.Tasks {
		if !removed[rt.ID] {
			simulated = append(simulated, rt)
		}
	}

	// Text updates for matched pairs whose formatted text drifted
	// (renamed dates, due-soon flag entering the window).
	for _, tp := range diff.pairs {
		text := s.format.TaskText(tp.local)
		if tp.remote.Text == text {
			continue
		}
		s.logger.Printf("updating task %d in story %d: %q -> %q", tp.remote.ID, story.ID, tp.remote.Text, text)
		if _, err := s.board.UpdateTask(ctx, s.boardID, story.ID, tp.remote.ID, board.TaskDraft{Text: text}); err != nil {
			return err
		}
		for i := range simulated {
			if simulated[i].ID == tp.remote.ID {
				simulated[i].Text = text
			}
		}
		report.TasksUpdated++
	}

	// Creates append at the end of the checklist; the reorder pass
	// below puts them in place. Status mirrors local completion at
	// creation time only.
	created := make(map[int]*local.Task, len(diff.creates))
	for _, lt := range diff.creates {
		draft := board.TaskDraft{Text: s.format.TaskText(lt), Status: board.TaskStatusTodo}
		if lt.Completed {
			draft.Status = board.TaskStatusDone
		}
		s.logger.Printf("creating task %q in story %d", draft.Text, story.ID)
		task, err := s.board.CreateTask(ctx, s.boardID, story.ID, draft)
		if err != nil {
			return err
		}
		simulated = append(simulated, *task)
		created[task.ID] = lt
		report.TasksCreated++
	}

	return s.reorderTasks(ctx, story.ID, p.Tasks, diff, created, simulated, report)
}

// reorderTasks issues at most one reorder call per story. The movable
// subset is every checklist task whose local counterpart is in the live
// set and which is not done on the board; movable tasks are arranged in
// local order within the positions they already occupy, everything else
// stays put.
func (s *Syncer) reorderTasks(ctx context.Context, storyID int, localTasks []*local.Task,
	diff *taskDiff, created map[int]*local.Task, simulated []board.Task, report *Report) error {

	localFor := make(map[int]*local.Task, len(diff.pairs)+len(created))
	for _, tp := range diff.pairs {
		localFor[tp.remote.ID] = tp.local
	}
	for id, lt := range created {
		localFor[id] = lt
	}

	localRank := make(map[string]int, len(localTasks))
	for i, lt := range localTasks {
		localRank[lt.ID] = i
	}

	movable := func(rt *board.Task) bool {
		lt, ok := localFor[rt.ID]
		return ok && !rt.Done() && !lt.Completed
	}

	// Movable tasks sorted by their local position.
	var order []board.Task
	for _, rt := range simulated {
		if movable(&rt) {
			order = append(order, rt)
		}
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && localRank[localFor[order[j].ID].ID] < localRank[localFor[order[j-1].ID].ID]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	desired := make([]int, 0, len(simulated))
	changed := false
	next := 0
	for i := range simulated {
		rt := &simulated[i]
		if movable(rt) {
			desired = append(desired, order[next].ID)
			if order[next].ID != rt.ID {
				changed = true
			}
			next++
		} else {
			desired = append(desired, rt.ID)
		}
	}

	if !changed {
		return nil
	}
	s.logger.Printf("reordering %d tasks in story %d", len(desired), storyID)
	if err := s.board.ReorderTasks(ctx, s.boardID, storyID, desired); err != nil {
		return err
	}
	report.TasksReordered++
	return nil
}
