package dashboard

import (
	"encoding/json"
	"log"
	gosync "sync"
	"time"

	"github.com/focuskan/focuskan/internal/sync"
)

// StatsData is the cumulative tally since the server started.
type StatsData struct {
	Runs           int `json:"runs"`
	Failures       int `json:"failures"`
	StoriesCreated int `json:"stories_created"`
	StoriesUpdated int `json:"stories_updated"`
	StoriesDeleted int `json:"stories_deleted"`
	PhaseMoves     int `json:"phase_moves"`
	LocalWrites    int `json:"local_writes"`
}

// RunReportData is the per-run frame sent to clients.
type RunReportData struct {
	Matched  int `json:"matched"`
	New      int `json:"new"`
	Orphaned int `json:"orphaned"`
	Retained int `json:"retained"`

	StoriesCreated int `json:"stories_created"`
	StoriesUpdated int `json:"stories_updated"`
	StoriesDeleted int `json:"stories_deleted"`
	PhaseMoves     int `json:"phase_moves"`
	TasksCreated   int `json:"tasks_created"`
	TasksUpdated   int `json:"tasks_updated"`
	TasksDeleted   int `json:"tasks_deleted"`
	TasksReordered int `json:"tasks_reordered"`
	LocalWrites    int `json:"local_writes"`

	Failures   []string      `json:"failures,omitempty"`
	DurationMS time.Duration `json:"duration_ms"`
}

// Handler turns sync run reports into dashboard messages. Wire its
// OnReport method into the daemon's report callback.
type Handler struct {
	server *Server
	logger *log.Logger

	mu    gosync.Mutex
	stats StatsData
}

// NewHandler creates a handler feeding the given server. New clients
// receive the current cumulative stats on connect.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{server: server, logger: logger}
	server.welcome = h.statsMessage
	return h
}

// OnReport broadcasts one run report and the updated totals.
func (h *Handler) OnReport(report *sync.Report) {
	data := RunReportData{
		Matched:        report.Matched,
		New:            report.New,
		Orphaned:       report.Orphaned,
		Retained:       report.Retained,
		StoriesCreated: report.StoriesCreated,
		StoriesUpdated: report.StoriesUpdated,
		StoriesDeleted: report.StoriesDeleted,
		PhaseMoves:     report.PhaseMoves,
		TasksCreated:   report.TasksCreated,
		TasksUpdated:   report.TasksUpdated,
		TasksDeleted:   report.TasksDeleted,
		TasksReordered: report.TasksReordered,
		LocalWrites:    report.LocalStatusWrites + report.LocalTaskWrites,
		DurationMS:     report.Duration / time.Millisecond,
	}
	for _, failure := range report.Failures {
		data.Failures = append(data.Failures, failure.Error())
	}

	h.mu.Lock()
	h.stats.Runs++
	h.stats.Failures += len(report.Failures)
	h.stats.StoriesCreated += report.StoriesCreated
	h.stats.StoriesUpdated += report.StoriesUpdated
	h.stats.StoriesDeleted += report.StoriesDeleted
	h.stats.PhaseMoves += report.PhaseMoves
	h.stats.LocalWrites += data.LocalWrites
	h.mu.Unlock()

	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal run report: %v", err)
		return
	}
	h.server.Broadcast(Message{
		Type:      MessageTypeRunReport,
		Timestamp: time.Now(),
		Data:      payload,
	})
	h.server.Broadcast(h.statsMessage())
}

func (h *Handler) statsMessage() Message {
	h.mu.Lock()
	stats := h.stats
	h.mu.Unlock()

	payload, _ := json.Marshal(stats)
	return Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
		Data:      payload,
	}
}
