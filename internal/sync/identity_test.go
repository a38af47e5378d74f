package sync

import "testing"

func TestEmbedExtract_RoundTrip(t *testing.T) {
	ids := []string{
		"p1",
		"hDtBQ5tzbFD",
		"a-b_c.d",
		"kc1PZN9lFpS", // typical opaque identifier shape
	}
	notes := []string{
		"",
		"single line",
		"multi\nline\nnotes",
		"notes ending with marker-ish text [id](decoy",
	}
	for _, id := range ids {
		for _, note := range notes {
			details := EmbedProjectID(note, id)
			got, ok := ExtractProjectID(details)
			if !ok {
				t.Errorf("ExtractProjectID(EmbedProjectID(%q, %q)) not found", note, id)
				continue
			}
			if got != id {
				t.Errorf("round trip of %q through notes %q = %q", id, note, got)
			}
		}
	}
}

func TestExtractProjectID_Absent(t *testing.T) {
	cases := []string{
		"",
		"plain details with no marker",
		"marker not on last line\n[id](p1)\ntrailing",
		"[id]()",       // empty identifier
		"[id](p1",      // unterminated
		"id](p1)",      // no prefix
		"notes\n(p1)",  // missing marker name
	}
	for _, details := range cases {
		if id, ok := ExtractProjectID(details); ok {
			t.Errorf("ExtractProjectID(%q) = %q, want absent", details, id)
		}
	}
}
