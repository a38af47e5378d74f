package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	gosync "sync"
	"time"

	"github.com/focuskan/focuskan/internal/sync"
)

// HistoryEntry is one recorded sync run.
type HistoryEntry struct {
	// At is when the run finished.
	At time.Time `json:"at"`

	// Report is the run's full report.
	Report *sync.Report `json:"report"`
}

// History records run reports in an append-only JSON-lines file, one
// object per run. It gives watch mode a durable trail of what each run
// did without any database.
type History struct {
	path string
	mu   gosync.Mutex
}

// NewHistory returns a history journal at path. The file is created on
// first append.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Append records one run.
func (h *History) Append(report *sync.Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{At: time.Now().UTC(), Report: report}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return f.Close()
}

// Recent returns up to n entries, newest first. A missing file is an
// empty history, not an error. Lines that fail to decode or carry no
// report are skipped so a torn write cannot wedge the journal.
func (h *History) Recent(n int) ([]HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var entries []HistoryEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry HistoryEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil || entry.Report == nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan history file: %w", err)
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
