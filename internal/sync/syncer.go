package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
)

// SelectFunc decides whether a local project takes part in the sync.
// Projects rejected by the selector are invisible to the run: their
// stories, if any, become orphans.
type SelectFunc func(*local.Project) bool

// Config holds syncer configuration.
type Config struct {
	// Local is the task-manager store. Required.
	Local local.Store

	// Board is the board service client. Required.
	Board BoardService

	// BoardID identifies the target board.
	BoardID int

	// Select filters local projects. Defaults to syncing every
	// project that is not dropped and not a single-action bucket.
	Select SelectFunc

	// Formatter maps local entities to board fields. Defaults to a
	// zero Formatter (default color, no owner, no due-soon window).
	Formatter *Formatter

	// Logger for run activity (default: stderr logger).
	Logger *log.Logger
}

// DefaultSelect is the selection predicate used when none is given:
// every project except dropped ones and single-action buckets, and only
// once its start date has passed.
func DefaultSelect(now func() time.Time) SelectFunc {
	return func(p *local.Project) bool {
		if p.Status == local.StatusDropped || p.SingleActionList {
			return false
		}
		return p.StartDate == nil || p.StartDate.Before(now())
	}
}

// Report tallies one run. A second run over unchanged data must report
// zero writes.
type Report struct {
	// Classification counts.
	Matched  int
	New      int
	Orphaned int
	Retained int

	// Remote writes.
	StoriesCreated int
	StoriesUpdated int
	StoriesDeleted int
	PhaseMoves     int
	TasksCreated   int
	TasksUpdated   int
	TasksDeleted   int
	TasksReordered int

	// Local writes.
	LocalStatusWrites int
	LocalTaskWrites   int

	// Failures are projects or stories whose reconciliation was
	// aborted; the rest of the run proceeded.
	Failures []*Failure

	Duration time.Duration
}

// Writes returns the total number of write operations issued, on either
// side.
func (r *Report) Writes() int {
	return r.StoriesCreated + r.StoriesUpdated + r.StoriesDeleted + r.PhaseMoves +
		r.TasksCreated + r.TasksUpdated + r.TasksDeleted + r.TasksReordered +
		r.LocalStatusWrites + r.LocalTaskWrites
}

// Syncer drives one reconciliation run between the task manager and one
// board. A Syncer is single-threaded: one run at a time, sequential
// blocking I/O throughout. It provides no mutual exclusion against a
// concurrent process; running two instances at once is undefined.
type Syncer struct {
	local   local.Store
	board   BoardService
	boardID int
	format  *Formatter
	selects SelectFunc
	logger  *log.Logger
}

// New creates a Syncer.
func New(config Config) (*Syncer, error) {
	if config.Local == nil {
		return nil, ErrNoStore
	}
	if config.Board == nil {
		return nil, ErrNoBoard
	}
	if config.Select == nil {
		config.Select = DefaultSelect(time.Now)
	}
	if config.Formatter == nil {
		config.Formatter = &Formatter{}
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Syncer{
		local:   config.Local,
		board:   config.Board,
		boardID: config.BoardID,
		format:  config.Formatter,
		selects: config.Select,
		logger:  config.Logger,
	}, nil
}

// Run performs one full reconciliation and returns its report.
//
// Snapshot failures abort the run; per-project failures are recorded in
// the report and the run continues with the remaining projects. There
// is no rollback: partially applied runs are corrected by the next
// successful rescan.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}

	phases, err := s.board.Phases(ctx, s.boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to read phase track: %w", err)
	}
	track, err := board.NewTrack(phases)
	if err != nil {
		return nil, err
	}

	allProjects, err := s.local.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot local projects: %w", err)
	}
	var projects []*local.Project
	for _, p := range allProjects {
		if s.selects(p) {
			projects = append(projects, p)
		}
	}

	stories, err := s.board.Stories(ctx, s.boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	storyPtrs := make([]*board.Story, len(stories))
	for i := range stories {
		storyPtrs[i] = &stories[i]
	}

	c := Classify(projects, storyPtrs, track)
	report.Matched = len(c.Pairs)
	report.New = len(c.NewProjects)
	report.Orphaned = len(c.Orphans)
	report.Retained = len(c.Retained)

	for _, conflict := range c.Conflicts {
		err := fmt.Errorf("%w: %d stories claim project %s",
			ErrDuplicateIdentity, len(conflict.Stories), conflict.ProjectID)
		s.logger.Printf("ERROR: %v", err)
		report.Failures = append(report.Failures, &Failure{ProjectID: conflict.ProjectID, Err: err})
	}

	for _, story := range c.Orphans {
		s.logger.Printf("deleting orphaned story %d %q", story.ID, story.Text)
		if err := s.board.DeleteStory(ctx, s.boardID, story.ID); err != nil {
			if board.IsNotFound(err) {
				// Deleted out from under us since the snapshot.
				s.logger.Printf("story %d already gone", story.ID)
				continue
			}
			s.logger.Printf("ERROR: delete story %d: %v", story.ID, err)
			report.Failures = append(report.Failures, &Failure{StoryID: story.ID, Err: err})
			continue
		}
		report.StoriesDeleted++
	}

	for _, p := range c.NewProjects {
		if err := s.createStory(ctx, track, p, report); err != nil {
			s.logger.Printf("ERROR: project %s: %v", p.ID, err)
			report.Failures = append(report.Failures, &Failure{ProjectID: p.ID, Err: err})
		}
	}

	for _, pair := range c.Pairs {
		if err := s.syncPair(ctx, track, pair, report); err != nil {
			s.logger.Printf("ERROR: project %s (story %d): %v", pair.Project.ID, pair.Story.ID, err)
			report.Failures = append(report.Failures, &Failure{
				ProjectID: pair.Project.ID, StoryID: pair.Story.ID, Err: err,
			})
		}
	}

	report.Duration = time.Since(start)
	s.logger.Printf("run complete: %d matched, %d new, %d orphaned, %d writes, %d failures (%v)",
		report.Matched, report.New, report.Orphaned, report.Writes(), len(report.Failures),
		report.Duration.Round(time.Millisecond))
	return report, nil
}

// createStory materializes a new project on the board: story in
// Backlog, tasks in local order, then the usual forward-only phase
// push so an active project lands in the first in-progress phase within
// the same run.
func (s *Syncer) createStory(ctx context.Context, track *board.Track, p *local.Project, report *Report) error {
	draft := s.format.StoryDraft(p)
	draft.PhaseID = track.Backlog.ID
	draft.Owner = s.format.Owner

	s.logger.Printf("creating story for project %s %q", p.ID, p.Name)
	story, err := s.board.CreateStory(ctx, s.boardID, draft)
	if err != nil {
		return err
	}
	report.StoriesCreated++

	for _, lt := range p.Tasks {
		taskDraft := board.TaskDraft{Text: s.format.TaskText(lt), Status: board.TaskStatusTodo}
		if lt.Completed {
			taskDraft.Status = board.TaskStatusDone
		}
		if _, err := s.board.CreateTask(ctx, s.boardID, story.ID, taskDraft); err != nil {
			return err
		}
		report.TasksCreated++
	}

	phase := story.Phase
	if phase == nil {
		phase = &track.Backlog
	}
	if next := desiredPhase(track, p, phase); next != nil {
		s.logger.Printf("moving story %d to phase %q", story.ID, next.Name)
		if _, err := s.board.UpdateStory(ctx, s.boardID, story.ID, board.StoryDraft{PhaseID: next.ID}); err != nil {
			return err
		}
		report.PhaseMoves++
	}
	return nil
}

// syncPair reconciles one matched project/story couple.
//
// Remote-driven local writes land first (phase and checklist completion
// flow board -> task manager), then the content fields and at most one
// phase move flow the other way, then the checklist is reconciled.
func (s *Syncer) syncPair(ctx context.Context, track *board.Track, pair Pair, report *Report) error {
	p := pair.Project
	story := pair.Story

	if next := statusFromPhase(track, story.Phase, p.Status); next != "" {
		s.logger.Printf("setting local project %s status to %s (story %d is in %q)",
			p.ID, next, story.ID, story.Phase.Name)
		if err := s.local.SetProjectStatus(ctx, p.ID, next); err != nil {
			return fmt.Errorf("failed to set local status: %w", err)
		}
		p.Status = next
		report.LocalStatusWrites++
	}

	draft := s.format.StoryDraft(p)
	update := board.StoryDraft{}
	changed := false
	if story.Text != draft.Text {
		update.Text = draft.Text
		changed = true
	}
	if story.Details != draft.Details {
		update.Details = draft.Details
		changed = true
	}
	if story.Color != draft.Color {
		update.Color = draft.Color
		changed = true
	}
	if !sameTags(story.TagNames(), draft.Tags) {
		update.Tags = draft.Tags
		if update.Tags == nil {
			update.Tags = []string{}
		}
		changed = true
	}

	// Phase is set at most once per run, from the post-propagation
	// local status. When the forward-only guard suppresses the move,
	// the observed remote phase stays effective and will drive the
	// local status on the next run instead.
	next := desiredPhase(track, p, story.Phase)
	if next != nil {
		update.PhaseID = next.ID
	}

	if changed || next != nil {
		if _, err := s.board.UpdateStory(ctx, s.boardID, story.ID, update); err != nil {
			return err
		}
		if changed {
			report.StoriesUpdated++
		}
		if next != nil {
			s.logger.Printf("moved story %d to phase %q", story.ID, next.Name)
			report.PhaseMoves++
		}
	}

	return s.syncTasks(ctx, pair, report)
}

// sameTags compares tag sets regardless of order.
func sameTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
