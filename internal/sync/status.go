package sync

import (
	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
)

// Status propagation is bidirectional but asymmetric, and both
// directions are forward-only along the phase track:
//
//	backlog -> ready -> in progress... -> done -> archive
//
// Whichever side moved a project/story forward wins; nothing ever moves
// backward. Remote-driven local writes are applied before local-driven
// phase writes within a run, so a card dragged to Done completes the
// local project and the phase is then left where it is.

// desiredPhase returns the phase a story should move to given its
// project's (possibly just-updated) local status, or nil when the story
// stays where it is.
//
// An active project pushes its story forward into the first in-progress
// phase, but only out of Backlog or Ready; a story already in progress
// or beyond is never pulled back. A completed project pushes its story
// to Done unless it is already in a completed phase (Archive never
// regresses to Done).
func desiredPhase(track *board.Track, p *local.Project, current *board.Phase) *board.Phase {
	switch p.Status {
	case local.StatusActive:
		first := track.FirstInProgress()
		if track.Before(current, &first) {
			return &first
		}
	case local.StatusCompleted:
		if !track.Completed(current) {
			done := track.Done
			return &done
		}
	}
	return nil
}

// statusFromPhase returns the local status a project should take given
// its story's observed phase, or "" when no local write is needed.
//
// A story in an in-progress phase reactivates an on-hold project (an
// active, completed or dropped project is left alone). A story in a
// completed phase completes the project.
func statusFromPhase(track *board.Track, phase *board.Phase, status local.Status) local.Status {
	if track.InProgress(phase) && status == local.StatusOnHold {
		return local.StatusActive
	}
	if track.Completed(phase) && status != local.StatusCompleted {
		return local.StatusCompleted
	}
	return ""
}
