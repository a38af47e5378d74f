package board

import (
	"fmt"
	"sort"
)

// Track is the resolved phase track of one board.
//
// Tracks are discovered at run time, never hardcoded: any board has at
// least the four anchor phases Backlog (first), Ready (second), Done
// (next-to-last) and Archive (last), with zero or more "in progress"
// phases strictly between Ready and Done. The anchors are identified by
// position in the track, not by name, so renamed columns keep working.
type Track struct {
	// Phases holds the full track ordered by index.
	Phases []Phase

	Backlog Phase
	Ready   Phase
	Done    Phase
	Archive Phase
}

// minTrackLen is the smallest usable track: backlog, ready, one in
// progress phase, done, archive.
const minTrackLen = 5

// NewTrack resolves the anchor phases of a board's phase list.
// The input order does not matter; phases are sorted by index.
func NewTrack(phases []Phase) (*Track, error) {
	if len(phases) < minTrackLen {
		return nil, fmt.Errorf("phase track too short: got %d phases, need at least %d",
			len(phases), minTrackLen)
	}

	sorted := make([]Phase, len(phases))
	copy(sorted, phases)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	return &Track{
		Phases:  sorted,
		Backlog: sorted[0],
		Ready:   sorted[1],
		Done:    sorted[len(sorted)-2],
		Archive: sorted[len(sorted)-1],
	}, nil
}

// position returns the index of the phase with the given ID within the
// track, or -1 when the phase is not part of the track.
func (t *Track) position(phaseID int) int {
	for i, p := range t.Phases {
		if p.ID == phaseID {
			return i
		}
	}
	return -1
}

// FirstInProgress returns the first phase strictly after Ready.
func (t *Track) FirstInProgress() Phase {
	return t.Phases[2]
}

// InProgress reports whether the phase sits strictly between Ready and
// Done in the track.
func (t *Track) InProgress(p *Phase) bool {
	if p == nil {
		return false
	}
	pos := t.position(p.ID)
	return pos > t.position(t.Ready.ID) && pos < t.position(t.Done.ID)
}

// Completed reports whether the phase is Done or Archive.
func (t *Track) Completed(p *Phase) bool {
	if p == nil {
		return false
	}
	return p.ID == t.Done.ID || p.ID == t.Archive.ID
}

// IsArchive reports whether the phase is the Archive phase.
func (t *Track) IsArchive(p *Phase) bool {
	return p != nil && p.ID == t.Archive.ID
}

// Before reports whether phase a comes strictly before phase b in the
// track. Phases not on the track compare false, which keeps the
// forward-only guards conservative: a story in an unknown phase is
// never moved.
func (t *Track) Before(a, b *Phase) bool {
	if a == nil || b == nil {
		return false
	}
	pa, pb := t.position(a.ID), t.position(b.ID)
	if pa < 0 || pb < 0 {
		return false
	}
	return pa < pb
}
