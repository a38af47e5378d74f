package sync

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/focuskan/focuskan/internal/board"
	"github.com/focuskan/focuskan/internal/local"
)

// DefaultColor is used when no color rule matches a project.
const DefaultColor = "green"

// dueSoonPrefix flags checklist items whose due date falls inside the
// formatter's lookahead window.
const dueSoonPrefix = "(!) "

// dateMarkerFormat is the date layout used in checklist text markers.
const dateMarkerFormat = "2006-01-02"

// ColorFunc picks the card color for a project. It must return one of
// board.Colors.
type ColorFunc func(*local.Project) string

// Formatter maps local entities to their board representation.
//
// All methods are pure given a fixed clock: the same project always
// formats to the same story fields, which is what lets the matcher
// parse identity back out and lets runs detect "no change" without any
// persisted state.
type Formatter struct {
	// Color picks the card color. Defaults to DefaultColor when nil
	// or when the returned color is not a valid board color.
	Color ColorFunc

	// Owner is the board username assigned to newly created stories.
	Owner string

	// DueSoon is the lookahead window for flagging checklist items;
	// zero disables the flag.
	DueSoon time.Duration

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// StoryText renders the card label: bold name, folder path, and the
// context in italics.
func (f *Formatter) StoryText(p *local.Project) string {
	return strings.Join([]string{
		fmt.Sprintf("**%s**", p.Name),
		p.FolderPath,
		fmt.Sprintf("*%s*", p.Context),
	}, "\n")
}

// StoryDetails renders the card details: the project note followed by
// the embedded identity marker.
func (f *Formatter) StoryDetails(p *local.Project) string {
	return EmbedProjectID(p.Note, p.ID)
}

// StoryTags derives tags from the project's context path segments.
func (f *Formatter) StoryTags(p *local.Project) []string {
	if p.Context == "" {
		return nil
	}
	var tags []string
	for _, segment := range strings.Split(p.Context, "/") {
		if segment != "" {
			tags = append(tags, segment)
		}
	}
	return tags
}

// StoryColor picks the card color for a project.
func (f *Formatter) StoryColor(p *local.Project) string {
	if f.Color == nil {
		return DefaultColor
	}
	color := f.Color(p)
	if !board.ValidColor(color) {
		return DefaultColor
	}
	return color
}

// StoryDraft assembles the full set of remote-writable content fields.
func (f *Formatter) StoryDraft(p *local.Project) board.StoryDraft {
	return board.StoryDraft{
		Text:    f.StoryText(p),
		Details: f.StoryDetails(p),
		Color:   f.StoryColor(p),
		Tags:    f.StoryTags(p),
	}
}

// TaskText renders the checklist text for a task. A due or start date
// is appended as a marker so repeated (e.g. recurring) tasks with the
// same name stay distinguishable, and tasks due inside the DueSoon
// window are flagged.
//
// Checklist text is plain text on the board service, so no identifier
// can be hidden in it; this text doubles as the matching key (see
// TaskName).
func (f *Formatter) TaskText(t *local.Task) string {
	text := t.Name
	switch {
	case t.DueDate != nil:
		text += fmt.Sprintf(" (due %s)", t.DueDate.Format(dateMarkerFormat))
	case t.StartDate != nil:
		text += fmt.Sprintf(" (starts %s)", t.StartDate.Format(dateMarkerFormat))
	}
	if f.dueSoon(t) {
		text = dueSoonPrefix + text
	}
	return text
}

func (f *Formatter) dueSoon(t *local.Task) bool {
	if f.DueSoon <= 0 || t.DueDate == nil || t.Completed {
		return false
	}
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	return t.DueDate.Before(now.Add(f.DueSoon))
}

// taskMarkerRe strips the date marker TaskText appends.
var taskMarkerRe = regexp.MustCompile(` \((?:due|starts) \d{4}-\d{2}-\d{2}\)$`)

// TaskName recovers the task name from formatted checklist text. Task
// matching keys on the name, so a changed date marker updates the
// existing checklist item instead of replacing it.
func TaskName(text string) string {
	text = strings.TrimPrefix(text, dueSoonPrefix)
	return taskMarkerRe.ReplaceAllString(text, "")
}
