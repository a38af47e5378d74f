package sync

import (
	"reflect"
	"testing"
	"time"

	"github.com/focuskan/focuskan/internal/local"
)

func dateOf(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return &parsed
}

func TestStoryText(t *testing.T) {
	f := &Formatter{}
	p := &local.Project{
		Name:       "Ship release",
		FolderPath: "Work, Infrastructure",
		Context:    "Work/Office",
	}
	want := "**Ship release**\nWork, Infrastructure\n*Work/Office*"
	if got := f.StoryText(p); got != want {
		t.Errorf("StoryText = %q, want %q", got, want)
	}
}

func TestStoryDetails_EmbedsID(t *testing.T) {
	f := &Formatter{}
	p := &local.Project{ID: "p1", Note: "cut the branch first"}

	details := f.StoryDetails(p)
	id, ok := ExtractProjectID(details)
	if !ok || id != "p1" {
		t.Errorf("details %q does not embed p1", details)
	}
}

func TestStoryTags(t *testing.T) {
	f := &Formatter{}
	cases := []struct {
		context string
		want    []string
	}{
		{"", nil},
		{"Work", []string{"Work"}},
		{"Work/Office", []string{"Work", "Office"}},
	}
	for _, tc := range cases {
		got := f.StoryTags(&local.Project{Context: tc.context})
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("StoryTags(%q) = %v, want %v", tc.context, got, tc.want)
		}
	}
}

func TestStoryColor_FallsBackOnInvalid(t *testing.T) {
	f := &Formatter{Color: func(*local.Project) string { return "magenta" }}
	if got := f.StoryColor(&local.Project{}); got != DefaultColor {
		t.Errorf("invalid rule color = %q, want default %q", got, DefaultColor)
	}

	f.Color = func(*local.Project) string { return "blue" }
	if got := f.StoryColor(&local.Project{}); got != "blue" {
		t.Errorf("color = %q, want blue", got)
	}

	f.Color = nil
	if got := f.StoryColor(&local.Project{}); got != DefaultColor {
		t.Errorf("nil rule color = %q, want default", got)
	}
}

func TestTaskText_DateMarkers(t *testing.T) {
	f := &Formatter{}
	cases := []struct {
		name string
		task local.Task
		want string
	}{
		{"plain", local.Task{Name: "Draft"}, "Draft"},
		{"due", local.Task{Name: "Pay rent", DueDate: dateOf(t, "2026-09-01")},
			"Pay rent (due 2026-09-01)"},
		{"start only", local.Task{Name: "Plant bulbs", StartDate: dateOf(t, "2026-10-15")},
			"Plant bulbs (starts 2026-10-15)"},
		{"due wins over start", local.Task{Name: "Review",
			DueDate: dateOf(t, "2026-09-01"), StartDate: dateOf(t, "2026-08-01")},
			"Review (due 2026-09-01)"},
	}
	for _, tc := range cases {
		if got := f.TaskText(&tc.task); got != tc.want {
			t.Errorf("%s: TaskText = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestTaskText_DueSoon(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	f := &Formatter{
		DueSoon: 7 * 24 * time.Hour,
		Now:     func() time.Time { return now },
	}

	soon := &local.Task{Name: "Pay rent", DueDate: dateOf(t, "2026-08-30")}
	if got := f.TaskText(soon); got != "(!) Pay rent (due 2026-08-30)" {
		t.Errorf("due-soon text = %q", got)
	}

	far := &local.Task{Name: "Pay rent", DueDate: dateOf(t, "2026-12-01")}
	if got := f.TaskText(far); got != "Pay rent (due 2026-12-01)" {
		t.Errorf("far-future text = %q", got)
	}

	done := &local.Task{Name: "Pay rent", DueDate: dateOf(t, "2026-08-30"), Completed: true}
	if got := f.TaskText(done); got != "Pay rent (due 2026-08-30)" {
		t.Errorf("completed task should not be flagged: %q", got)
	}
}

func TestTaskName_InvertsTaskText(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	f := &Formatter{DueSoon: 7 * 24 * time.Hour, Now: func() time.Time { return now }}

	tasks := []local.Task{
		{Name: "Draft"},
		{Name: "Pay rent", DueDate: dateOf(t, "2026-08-30")},
		{Name: "Plant bulbs", StartDate: dateOf(t, "2026-10-15")},
		{Name: "Weird (due 2026-01-01) name"}, // marker-ish text mid-name survives
	}
	for _, task := range tasks {
		if got := TaskName(f.TaskText(&task)); got != task.Name {
			t.Errorf("TaskName(TaskText(%q)) = %q", task.Name, got)
		}
	}
}
