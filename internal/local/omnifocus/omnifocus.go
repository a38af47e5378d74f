// Package omnifocus provides the live scripting implementation of the
// local.Store interface.
//
// This package wraps the macOS osascript bridge (JavaScript for
// Automation) to read the running OmniFocus application's database and
// to perform the two permitted writes: setting a project's status and
// marking a task completed. The bridge is synchronous and talks to a
// live desktop application, so calls must never be issued concurrently.
package omnifocus

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/focuskan/focuskan/internal/local"
)

// DefaultAppName is the scripting name of the OmniFocus application.
const DefaultAppName = "OmniFocus"

// Runner executes an osascript program and returns its stdout.
// It exists so tests can substitute a fake bridge.
type Runner interface {
	Run(ctx context.Context, script string) ([]byte, error)
}

// osaRunner runs scripts through the osascript binary.
type osaRunner struct{}

func (osaRunner) Run(ctx context.Context, script string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-l", "JavaScript", "-e", script)
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		if strings.Contains(stderr, "Application isn't running") {
			return nil, local.ErrNotRunning
		}
		return nil, fmt.Errorf("osascript failed: %w\n%s", err, stderr)
	}
	return output, nil
}

// Store implements local.Store against a running OmniFocus instance.
type Store struct {
	appName string
	runner  Runner
}

// Option configures a Store.
type Option func(*Store)

// WithAppName overrides the scripting application name.
func WithAppName(name string) Option {
	return func(s *Store) { s.appName = name }
}

// WithRunner substitutes the script runner. Used by tests.
func WithRunner(r Runner) Option {
	return func(s *Store) { s.runner = r }
}

// New creates a scripting-backed Store.
func New(opts ...Option) *Store {
	s := &Store{
		appName: DefaultAppName,
		runner:  osaRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// wireProject is the JSON shape emitted by the listing script.
type wireProject struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	FolderPath       string     `json:"folderPath"`
	Context          string     `json:"context"`
	Note             string     `json:"note"`
	Status           string     `json:"status"`
	SingleActionList bool       `json:"singleActionList"`
	DueDate          string     `json:"dueDate,omitempty"`
	StartDate        string     `json:"startDate,omitempty"`
	Tasks            []wireTask `json:"tasks"`
}

type wireTask struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Context   string `json:"context"`
	Completed bool   `json:"completed"`
	DueDate   string `json:"dueDate,omitempty"`
	StartDate string `json:"startDate,omitempty"`
}

// Projects implements local.Store.Projects.
func (s *Store) Projects(ctx context.Context) ([]*local.Project, error) {
	output, err := s.runner.Run(ctx, s.listProjectsScript())
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var wire []wireProject
	if err := json.Unmarshal(output, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode project listing: %w", err)
	}

	projects := make([]*local.Project, 0, len(wire))
	for i := range wire {
		p, err := decodeProject(&wire[i])
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func decodeProject(w *wireProject) (*local.Project, error) {
	status := local.Status(w.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("project %s: unknown status %q", w.ID, w.Status)
	}

	due, err := decodeDate(w.DueDate)
	if err != nil {
		return nil, fmt.Errorf("project %s: bad due date: %w", w.ID, err)
	}
	start, err := decodeDate(w.StartDate)
	if err != nil {
		return nil, fmt.Errorf("project %s: bad start date: %w", w.ID, err)
	}

	p := &local.Project{
		ID:               w.ID,
		Name:             w.Name,
		FolderPath:       w.FolderPath,
		Context:          w.Context,
		Note:             w.Note,
		Status:           status,
		SingleActionList: w.SingleActionList,
		DueDate:          due,
		StartDate:        start,
	}

	for j := range w.Tasks {
		wt := &w.Tasks[j]
		tdue, err := decodeDate(wt.DueDate)
		if err != nil {
			return nil, fmt.Errorf("task %s: bad due date: %w", wt.ID, err)
		}
		tstart, err := decodeDate(wt.StartDate)
		if err != nil {
			return nil, fmt.Errorf("task %s: bad start date: %w", wt.ID, err)
		}
		p.Tasks = append(p.Tasks, &local.Task{
			ID:        wt.ID,
			ProjectID: w.ID,
			Name:      wt.Name,
			Context:   wt.Context,
			Completed: wt.Completed,
			DueDate:   tdue,
			StartDate: tstart,
		})
	}
	return p, nil
}

// decodeDate parses the ISO-8601 strings produced by Date.toISOString().
func decodeDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// SetProjectStatus implements local.Store.SetProjectStatus.
func (s *Store) SetProjectStatus(ctx context.Context, projectID string, status local.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}

	output, err := s.runner.Run(ctx, s.setProjectStatusScript(projectID, status))
	if err != nil {
		return fmt.Errorf("failed to set project %s status to %s: %w", projectID, status, err)
	}
	if strings.TrimSpace(string(output)) == "missing" {
		return fmt.Errorf("project %s: %w", projectID, local.ErrProjectNotFound)
	}
	return nil
}

// SetTaskCompleted implements local.Store.SetTaskCompleted.
func (s *Store) SetTaskCompleted(ctx context.Context, taskID string) error {
	output, err := s.runner.Run(ctx, s.setTaskCompletedScript(taskID))
	if err != nil {
		return fmt.Errorf("failed to complete task %s: %w", taskID, err)
	}
	if strings.TrimSpace(string(output)) == "missing" {
		return fmt.Errorf("task %s: %w", taskID, local.ErrTaskNotFound)
	}
	return nil
}
