package sync

import (
	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
)

// Pair is a story matched to the project whose identifier it embeds.
type Pair struct {
	Project *local.Project
	Story   *board.Story
}

// Conflict records an injectivity violation: several stories embedding
// the same project identifier. The data error is reported and the
// project skipped; nothing is guessed.
type Conflict struct {
	ProjectID string
	Stories   []*board.Story
}

// Classification is the result of one matching pass.
type Classification struct {
	// Pairs are matched project/story couples.
	Pairs []Pair

	// NewProjects are selected local projects with no story yet.
	NewProjects []*local.Project

	// Orphans are non-completed stories whose embedded identifier is
	// missing or references no current project: deletion candidates.
	Orphans []*board.Story

	// Retained are orphaned stories left untouched because they sit
	// in a completed phase; they are the historical record.
	Retained []*board.Story

	// Conflicts are duplicate-identity data errors.
	Conflicts []Conflict
}

// Classify pairs stories with projects via the embedded identifier.
//
// Every story on the board participates as a match target, including
// archived ones; only non-completed stories are eligible for deletion.
// The mapping must be injective: several stories embedding the same
// identifier of an existing project yield a Conflict and the project is
// withheld from every other bucket. Duplicates pointing at no current
// project are ordinary orphans.
func Classify(projects []*local.Project, stories []*board.Story, track *board.Track) *Classification {
	byID := make(map[string]*local.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	claimed := make(map[string][]*board.Story)
	c := &Classification{}

	for _, story := range stories {
		id, ok := ExtractProjectID(story.Details)
		if ok {
			if _, exists := byID[id]; exists {
				claimed[id] = append(claimed[id], story)
				continue
			}
		}
		// Unmanaged or stale story.
		if track.Completed(story.Phase) {
			c.Retained = append(c.Retained, story)
		} else {
			c.Orphans = append(c.Orphans, story)
		}
	}

	matched := make(map[string]bool, len(claimed))
	for _, p := range projects {
		stories, ok := claimed[p.ID]
		if !ok {
			continue
		}
		matched[p.ID] = true
		if len(stories) > 1 {
			c.Conflicts = append(c.Conflicts, Conflict{ProjectID: p.ID, Stories: stories})
			continue
		}
		c.Pairs = append(c.Pairs, Pair{Project: p, Story: stories[0]})
	}

	for _, p := range projects {
		if !matched[p.ID] {
			c.NewProjects = append(c.NewProjects, p)
		}
	}
	return c
}
