package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/focuskan/focuskan/internal/sync"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", bytes.TrimRight(p, "\n"))
	return len(p), nil
}

func startServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(&Config{
		Addr:   "127.0.0.1:0",
		Logger: log.New(testWriter{t: t}, "", 0),
	})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Stop(); err != nil {
			t.Errorf("Stop() returned %v", err)
		}
	})
	return s
}

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/ws", s.Addr()), nil)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad frame %q: %v", data, err)
	}
	return msg
}

func TestServer_WelcomeStats(t *testing.T) {
	s := startServer(t)
	NewHandler(s, log.New(testWriter{t: t}, "", 0))

	conn := dial(t, s)
	msg := readMessage(t, conn)
	if msg.Type != MessageTypeStats {
		t.Fatalf("welcome type = %q, want %q", msg.Type, MessageTypeStats)
	}
	var stats StatsData
	if err := json.Unmarshal(msg.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Runs != 0 {
		t.Errorf("fresh stats = %+v, want zero runs", stats)
	}
}

func TestHandler_BroadcastsRunReports(t *testing.T) {
	s := startServer(t)
	h := NewHandler(s, log.New(testWriter{t: t}, "", 0))

	conn := dial(t, s)
	readMessage(t, conn) // welcome

	h.OnReport(&sync.Report{
		Matched:        3,
		StoriesCreated: 1,
		PhaseMoves:     2,
		Duration:       1500 * time.Millisecond,
	})

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeRunReport {
		t.Fatalf("first frame type = %q, want %q", msg.Type, MessageTypeRunReport)
	}
	var report RunReportData
	if err := json.Unmarshal(msg.Data, &report); err != nil {
		t.Fatal(err)
	}
	if report.Matched != 3 || report.StoriesCreated != 1 || report.DurationMS != 1500 {
		t.Errorf("report frame = %+v", report)
	}

	msg = readMessage(t, conn)
	if msg.Type != MessageTypeStats {
		t.Fatalf("second frame type = %q, want %q", msg.Type, MessageTypeStats)
	}
	var stats StatsData
	if err := json.Unmarshal(msg.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Runs != 1 || stats.StoriesCreated != 1 || stats.PhaseMoves != 2 {
		t.Errorf("stats frame = %+v", stats)
	}
}

func TestHandler_AccumulatesStats(t *testing.T) {
	s := startServer(t)
	h := NewHandler(s, log.New(testWriter{t: t}, "", 0))

	h.OnReport(&sync.Report{StoriesCreated: 2})
	h.OnReport(&sync.Report{StoriesCreated: 1, Failures: []*sync.Failure{{Err: fmt.Errorf("boom")}}})

	// A late client's welcome carries the accumulated totals.
	conn := dial(t, s)
	msg := readMessage(t, conn)
	var stats StatsData
	if err := json.Unmarshal(msg.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Runs != 2 || stats.StoriesCreated != 3 || stats.Failures != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestServer_Health(t *testing.T) {
	s := startServer(t)
	resp, err := http.Get(fmt.Sprintf("http://%s/health", s.Addr()))
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}
