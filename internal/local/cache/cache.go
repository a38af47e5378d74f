// Package cache provides a read-only local.Store implementation backed
// by the task manager's on-disk SQLite cache database.
//
// OmniFocus maintains a SQLite cache alongside its document store. This
// reader opens that database in read-only mode and reconstructs the
// same project/task snapshot the scripting bridge would return, without
// requiring the application to be running. Watch mode also uses the
// cache file as its change signal (see internal/daemon).
//
// Writes are not possible through the cache; SetProjectStatus and
// SetTaskCompleted return local.ErrReadOnly. Sync runs that need to
// write back must use the scripting store.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/focuskan/focuskan/internal/local"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DefaultPath returns the default location of the OmniFocus cache
// database for the current user.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Caches",
		"com.omnigroup.OmniFocus2", "OmniFocusDatabase2")
}

// Store implements a read-only local.Store over the cache database.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens the cache database in read-only mode.
//
// The caller MUST call Close() when done.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cache database not found: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?mode=ro", path)
	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	// Single reader; the application owns the file.
	conn.SetMaxOpenConns(1)

	return &Store{conn: conn, path: path}, nil
}

// Path returns the cache database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// coreDataEpoch is the reference date for timestamps stored in the
// cache: seconds since 2001-01-01T00:00:00Z.
var coreDataEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

func decodeTimestamp(v sql.NullFloat64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := coreDataEpoch.Add(time.Duration(v.Float64 * float64(time.Second)))
	return &t
}

// Projects implements local.Store.Projects.
//
// Project rows are root tasks carrying a ProjectInfo; their child tasks
// are ordered by rank. Folder and context paths are reassembled from
// the Folder and Context tables.
func (s *Store) Projects(ctx context.Context) ([]*local.Project, error) {
	folders, err := s.namePaths(ctx, "Folder", "parent", ", ")
	if err != nil {
		return nil, fmt.Errorf("failed to read folders: %w", err)
	}
	contexts, err := s.namePaths(ctx, "Context", "parentContext", "/")
	if err != nil {
		return nil, fmt.Errorf("failed to read contexts: %w", err)
	}

	projects, order, err := s.readProjects(ctx, folders, contexts)
	if err != nil {
		return nil, err
	}
	if err := s.readTasks(ctx, projects, contexts); err != nil {
		return nil, err
	}

	out := make([]*local.Project, 0, len(order))
	for _, id := range order {
		out = append(out, projects[id])
	}
	return out, nil
}

func (s *Store) readProjects(ctx context.Context, folders, contexts map[string]string) (map[string]*local.Project, []string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT t.persistentIdentifier, t.name, t.plainTextNote, t.context,
		       t.dateDue, t.dateToStart, t.dateCompleted,
		       pi.status, pi.folder, pi.containsSingletonActions
		FROM Task t
		JOIN ProjectInfo pi ON pi.pk = t.projectInfo
		ORDER BY t.rank`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := make(map[string]*local.Project)
	var order []string
	for rows.Next() {
		var (
			id                  string
			name, note          sql.NullString
			contextID, folderID sql.NullString
			due, start, done    sql.NullFloat64
			status              sql.NullString
			singleton           sql.NullBool
		)
		if err := rows.Scan(&id, &name, &note, &contextID, &due, &start, &done,
			&status, &folderID, &singleton); err != nil {
			return nil, nil, fmt.Errorf("failed to scan project row: %w", err)
		}

		p := &local.Project{
			ID:               id,
			Name:             name.String,
			Note:             note.String,
			FolderPath:       folders[folderID.String],
			Context:          contexts[contextID.String],
			Status:           decodeStatus(status.String, done.Valid),
			SingleActionList: singleton.Valid && singleton.Bool,
			DueDate:          decodeTimestamp(due),
			StartDate:        decodeTimestamp(start),
		}
		projects[id] = p
		order = append(order, id)
	}
	return projects, order, rows.Err()
}

func (s *Store) readTasks(ctx context.Context, projects map[string]*local.Project, contexts map[string]string) error {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT t.persistentIdentifier, t.parent, t.name, t.context,
		       t.dateDue, t.dateToStart, t.dateCompleted
		FROM Task t
		WHERE t.projectInfo IS NULL AND t.parent IS NOT NULL
		ORDER BY t.rank`)
	if err != nil {
		return fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id               string
			parent           sql.NullString
			name, contextID  sql.NullString
			due, start, done sql.NullFloat64
		)
		if err := rows.Scan(&id, &parent, &name, &contextID, &due, &start, &done); err != nil {
			return fmt.Errorf("failed to scan task row: %w", err)
		}

		project, ok := projects[parent.String]
		if !ok {
			continue // task under a non-project parent
		}
		project.Tasks = append(project.Tasks, &local.Task{
			ID:        id,
			ProjectID: project.ID,
			Name:      name.String,
			Context:   contexts[contextID.String],
			Completed: done.Valid,
			DueDate:   decodeTimestamp(due),
			StartDate: decodeTimestamp(start),
		})
	}
	return rows.Err()
}

// decodeStatus maps the cache's project status column to a Status.
// The cache uses "inactive" where the scripting bridge says on hold.
func decodeStatus(status string, completed bool) local.Status {
	if completed {
		return local.StatusCompleted
	}
	switch status {
	case "inactive":
		return local.StatusOnHold
	case "done":
		return local.StatusCompleted
	case "dropped":
		return local.StatusDropped
	default:
		return local.StatusActive
	}
}

// namePaths loads a parent-linked name table and returns the full path
// for every row, child names appended to parent paths with sep.
func (s *Store) namePaths(ctx context.Context, table, parentCol, sep string) (map[string]string, error) {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(
		`SELECT persistentIdentifier, name, %s FROM %s`, parentCol, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type node struct {
		name   string
		parent string
	}
	nodes := make(map[string]node)
	for rows.Next() {
		var id string
		var name, parent sql.NullString
		if err := rows.Scan(&id, &name, &parent); err != nil {
			return nil, err
		}
		nodes[id] = node{name: name.String, parent: parent.String}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	paths := make(map[string]string, len(nodes))
	var resolve func(id string, seen map[string]bool) string
	resolve = func(id string, seen map[string]bool) string {
		n, ok := nodes[id]
		if !ok || seen[id] {
			return ""
		}
		if p, ok := paths[id]; ok {
			return p
		}
		seen[id] = true
		path := n.name
		if parentPath := resolve(n.parent, seen); parentPath != "" {
			path = parentPath + sep + n.name
		}
		paths[id] = path
		return path
	}

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		resolve(id, make(map[string]bool))
	}
	return paths, nil
}

// SetProjectStatus implements local.Store.SetProjectStatus.
// The cache is never written; use the scripting store for writes.
func (s *Store) SetProjectStatus(context.Context, string, local.Status) error {
	return local.ErrReadOnly
}

// SetTaskCompleted implements local.Store.SetTaskCompleted.
func (s *Store) SetTaskCompleted(context.Context, string) error {
	return local.ErrReadOnly
}
