package sync

import "strings"

// The board service has no foreign-key field, so the local project
// identifier is embedded as the last line of the story's details text:
//
//	<free-text notes>
//	[id](<project-id>)
//
// The marker line is the entire linkage between the two entity spaces.
// It is rewritten on every content update and re-parsed on every run.

const (
	idMarkerPrefix = "[id]("
	idMarkerSuffix = ")"
)

// EmbedProjectID appends the identity marker line to the free-text
// notes, producing the story's details. ExtractProjectID inverts it.
func EmbedProjectID(notes, projectID string) string {
	return notes + "\n" + idMarkerPrefix + projectID + idMarkerSuffix
}

// ExtractProjectID recovers the embedded project identifier from a
// story's details. It returns false if the details carry no marker
// line, which classifies the story as unmanaged.
func ExtractProjectID(details string) (string, bool) {
	if details == "" {
		return "", false
	}
	lastLine := details
	if i := strings.LastIndexByte(details, '\n'); i >= 0 {
		lastLine = details[i+1:]
	}
	if !strings.HasPrefix(lastLine, idMarkerPrefix) || !strings.HasSuffix(lastLine, idMarkerSuffix) {
		return "", false
	}
	id := lastLine[len(idMarkerPrefix) : len(lastLine)-len(idMarkerSuffix)]
	if id == "" {
		return "", false
	}
	return id, true
}
