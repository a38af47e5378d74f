package board

import "testing"

// trackFixture builds the canonical six-phase track:
// Backlog, Ready, Working, Testing, Done, Archive.
func trackFixture(t *testing.T) *Track {
	t.Helper()
	// Deliberately shuffled: NewTrack must sort by index.
	phases := []Phase{
		{ID: 14, Name: "Testing", Index: 3},
		{ID: 10, Name: "Backlog", Index: 0},
		{ID: 16, Name: "Archive", Index: 5},
		{ID: 12, Name: "Working", Index: 2},
		{ID: 15, Name: "Done", Index: 4},
		{ID: 11, Name: "Ready", Index: 1},
	}
	track, err := NewTrack(phases)
	if err != nil {
		t.Fatalf("NewTrack() failed: %v", err)
	}
	return track
}

func TestNewTrack_Anchors(t *testing.T) {
	track := trackFixture(t)

	if track.Backlog.Name != "Backlog" {
		t.Errorf("Backlog = %q", track.Backlog.Name)
	}
	if track.Ready.Name != "Ready" {
		t.Errorf("Ready = %q", track.Ready.Name)
	}
	if track.Done.Name != "Done" {
		t.Errorf("Done = %q", track.Done.Name)
	}
	if track.Archive.Name != "Archive" {
		t.Errorf("Archive = %q", track.Archive.Name)
	}
	if track.FirstInProgress().Name != "Working" {
		t.Errorf("FirstInProgress = %q", track.FirstInProgress().Name)
	}
}

func TestNewTrack_TooShort(t *testing.T) {
	phases := []Phase{
		{ID: 1, Index: 0}, {ID: 2, Index: 1},
		{ID: 3, Index: 2}, {ID: 4, Index: 3},
	}
	if _, err := NewTrack(phases); err == nil {
		t.Fatal("expected error for short track")
	}
}

func TestTrack_InProgress(t *testing.T) {
	track := trackFixture(t)

	cases := []struct {
		name string
		want bool
	}{
		{"Backlog", false},
		{"Ready", false},
		{"Working", true},
		{"Testing", true},
		{"Done", false},
		{"Archive", false},
	}
	for _, tc := range cases {
		phase := phaseByName(t, track, tc.name)
		if got := track.InProgress(&phase); got != tc.want {
			t.Errorf("InProgress(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
	if track.InProgress(nil) {
		t.Error("InProgress(nil) should be false")
	}
}

func TestTrack_Completed(t *testing.T) {
	track := trackFixture(t)

	if track.Completed(&track.Ready) {
		t.Error("Ready should not be completed")
	}
	if !track.Completed(&track.Done) {
		t.Error("Done should be completed")
	}
	if !track.Completed(&track.Archive) {
		t.Error("Archive should be completed")
	}
}

func TestTrack_Before(t *testing.T) {
	track := trackFixture(t)

	working := phaseByName(t, track, "Working")
	if !track.Before(&track.Ready, &working) {
		t.Error("Ready should be before Working")
	}
	if track.Before(&track.Archive, &track.Done) {
		t.Error("Archive should not be before Done")
	}
	unknown := Phase{ID: 999, Index: 42}
	if track.Before(&unknown, &track.Done) {
		t.Error("unknown phase should compare false")
	}
}

func phaseByName(t *testing.T, track *Track, name string) Phase {
	t.Helper()
	for _, p := range track.Phases {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("phase %q not in track", name)
	return Phase{}
}
