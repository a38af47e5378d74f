package sync

import (
	"testing"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
)

func testTrack(t *testing.T) *board.Track {
	t.Helper()
	track, err := board.NewTrack([]board.Phase{
		{ID: 10, Name: "Backlog", Index: 0},
		{ID: 11, Name: "Ready", Index: 1},
		{ID: 12, Name: "Working", Index: 2},
		{ID: 14, Name: "Done", Index: 3},
		{ID: 15, Name: "Archive", Index: 4},
	})
	if err != nil {
		t.Fatalf("NewTrack() failed: %v", err)
	}
	return track
}

func storyFor(id int, projectID string, phase board.Phase) *board.Story {
	return &board.Story{
		ID:      id,
		Details: EmbedProjectID("notes", projectID),
		Phase:   &phase,
	}
}

func TestClassify_Buckets(t *testing.T) {
	track := testTrack(t)
	projects := []*local.Project{
		{ID: "p1", Status: local.StatusActive},
		{ID: "p2", Status: local.StatusActive},
	}
	stories := []*board.Story{
		storyFor(1, "p1", track.Ready),                     // matched
		storyFor(2, "gone", track.Ready),                   // orphan, deletable
		{ID: 3, Details: "no marker", Phase: &track.Ready}, // unmanaged, deletable
	}

	c := Classify(projects, stories, track)

	if len(c.Pairs) != 1 || c.Pairs[0].Project.ID != "p1" || c.Pairs[0].Story.ID != 1 {
		t.Errorf("pairs = %+v", c.Pairs)
	}
	if len(c.NewProjects) != 1 || c.NewProjects[0].ID != "p2" {
		t.Errorf("new projects = %+v", c.NewProjects)
	}
	if len(c.Orphans) != 2 {
		t.Errorf("orphans = %+v", c.Orphans)
	}
	if len(c.Retained) != 0 || len(c.Conflicts) != 0 {
		t.Errorf("retained = %v, conflicts = %v", c.Retained, c.Conflicts)
	}
}

func TestClassify_CompletedOrphansRetained(t *testing.T) {
	track := testTrack(t)
	stories := []*board.Story{
		storyFor(1, "gone", track.Done),    // completed orphan: keep
		storyFor(2, "gone2", track.Archive), // archived orphan: keep
		storyFor(3, "gone3", track.FirstInProgress()), // live orphan: delete
	}

	c := Classify(nil, stories, track)

	if len(c.Retained) != 2 {
		t.Errorf("retained %d stories, want 2", len(c.Retained))
	}
	if len(c.Orphans) != 1 || c.Orphans[0].ID != 3 {
		t.Errorf("orphans = %+v", c.Orphans)
	}
}

// Archive is excluded from deletion scanning but still a match target:
// a completed project must pair with its archived story rather than
// spawn a duplicate.
func TestClassify_ArchivedStoryStillMatches(t *testing.T) {
	track := testTrack(t)
	projects := []*local.Project{{ID: "p1", Status: local.StatusCompleted}}
	stories := []*board.Story{storyFor(1, "p1", track.Archive)}

	c := Classify(projects, stories, track)

	if len(c.Pairs) != 1 {
		t.Fatalf("pairs = %+v, want the archived story matched", c.Pairs)
	}
	if len(c.NewProjects) != 0 {
		t.Errorf("new projects = %+v, want none", c.NewProjects)
	}
}

func TestClassify_DuplicateIdentityIsConflict(t *testing.T) {
	track := testTrack(t)
	projects := []*local.Project{{ID: "p1", Status: local.StatusActive}}
	stories := []*board.Story{
		storyFor(1, "p1", track.Ready),
		storyFor(2, "p1", track.FirstInProgress()),
	}

	c := Classify(projects, stories, track)

	if len(c.Conflicts) != 1 || c.Conflicts[0].ProjectID != "p1" {
		t.Fatalf("conflicts = %+v", c.Conflicts)
	}
	if len(c.Conflicts[0].Stories) != 2 {
		t.Errorf("conflict stories = %d, want 2", len(c.Conflicts[0].Stories))
	}
	// The conflicted project must not be treated as new, and neither
	// claiming story may be deleted.
	if len(c.NewProjects) != 0 {
		t.Errorf("new projects = %+v, want none", c.NewProjects)
	}
	if len(c.Pairs) != 0 {
		t.Errorf("pairs = %+v, want none", c.Pairs)
	}
	if len(c.Orphans) != 0 {
		t.Errorf("orphans = %+v, want none", c.Orphans)
	}
}

// Duplicate identifiers that reference no current project are plain
// orphans; deleting both is consistent.
func TestClassify_DuplicateOrphans(t *testing.T) {
	track := testTrack(t)
	stories := []*board.Story{
		storyFor(1, "gone", track.Ready),
		storyFor(2, "gone", track.FirstInProgress()),
	}

	c := Classify(nil, stories, track)

	if len(c.Conflicts) != 0 {
		t.Errorf("conflicts = %+v, want none", c.Conflicts)
	}
	if len(c.Orphans) != 2 {
		t.Errorf("orphans = %d, want 2", len(c.Orphans))
	}
}
