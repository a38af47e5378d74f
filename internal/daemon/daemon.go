// Package daemon provides watch mode: it reruns the synchronizer when
// the local task database changes and on a periodic interval.
//
// The daemon:
// 1. Watches the task manager's cache database for changes
// 2. Debounces bursts of writes into a single sync run
// 3. Resyncs periodically to pick up board-side edits
// 4. Handles graceful shutdown
//
// Runs never overlap: all syncs are issued from one loop, so a change
// arriving mid-run is picked up by the next run instead of a second
// concurrent one.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/focuskan/focuskan/internal/sync"
)

// Runner performs one sync run. *sync.Syncer satisfies it.
type Runner interface {
	Run(ctx context.Context) (*sync.Report, error)
}

// Config holds configuration for the daemon.
type Config struct {
	// ResyncInterval is how often to run regardless of local changes,
	// so board-side edits propagate without waiting for local activity.
	ResyncInterval time.Duration

	// DebounceInterval is how long the database must stay quiet before
	// a change triggers a run. This batches rapid writes together.
	DebounceInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger

	// OnReport is called after every completed run, successful or not.
	// Optional; used to feed the dashboard and the run history.
	OnReport func(*sync.Report)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ResyncInterval:   15 * time.Minute,
		DebounceInterval: 2 * time.Second,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// RotatingLogger returns a logger writing to a size-rotated file.
func RotatingLogger(path string) *log.Logger {
	return log.New(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}, "[daemon] ", log.LstdFlags)
}

// Daemon reruns a sync Runner on database changes and on a timer.
type Daemon struct {
	runner    Runner
	watchPath string
	config    *Config

	watcher *fsnotify.Watcher

	pendingMu gosync.Mutex
	pending   bool
	pendingAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

// New creates a daemon watching the database file at watchPath.
func New(runner Runner, watchPath string) (*Daemon, error) {
	return NewWithConfig(runner, watchPath, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(runner Runner, watchPath string, config *Config) (*Daemon, error) {
	if runner == nil {
		return nil, errors.New("runner cannot be nil")
	}
	if watchPath == "" {
		return nil, errors.New("watchPath cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		runner:    runner,
		watchPath: watchPath,
		config:    config,
		watcher:   watcher,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins watch mode.
//
// The daemon performs an initial run, then watches the database's
// directory (SQLite writes land in sibling journal files, so watching
// the file alone misses changes) and reruns after each quiet period and
// on the resync interval.
//
// This blocks until ctx is cancelled or startup fails.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting watch mode")

	d.runOnce("startup")

	dir := filepath.Dir(d.watchPath)
	if err := d.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	d.config.Logger.Printf("Watching: %s", d.watchPath)

	d.wg.Add(2)
	go d.watchFileEvents()
	go d.runLoop()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping watch mode")

	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Watch mode stopped")
	return nil
}

// watchFileEvents monitors filesystem events and marks a run pending.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			// The database plus its -wal/-shm/-journal siblings.
			if !strings.HasPrefix(event.Name, d.watchPath) {
				continue
			}

			d.markPending()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

func (d *Daemon) markPending() {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	d.pending = true
	d.pendingAt = time.Now()
}

// takePending consumes the pending flag if the quiet period has passed.
func (d *Daemon) takePending() bool {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	if !d.pending || time.Since(d.pendingAt) < d.config.DebounceInterval {
		return false
	}
	d.pending = false
	return true
}

// runLoop issues all sync runs. Change-triggered and periodic runs
// share this loop, which is what guarantees single flight.
func (d *Daemon) runLoop() {
	defer d.wg.Done()

	debounce := time.NewTicker(d.config.DebounceInterval)
	defer debounce.Stop()
	resync := time.NewTicker(d.config.ResyncInterval)
	defer resync.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-debounce.C:
			if d.takePending() {
				d.runOnce("database change")
			}

		case <-resync.C:
			d.runOnce("interval")
		}
	}
}

// runOnce performs one sync run and reports the outcome.
func (d *Daemon) runOnce(reason string) {
	d.config.Logger.Printf("Sync run (%s)", reason)

	report, err := d.runner.Run(d.ctx)
	if err != nil {
		if d.ctx.Err() != nil {
			return
		}
		d.config.Logger.Printf("Sync run failed: %v", err)
		return
	}

	if d.config.OnReport != nil {
		d.config.OnReport(report)
	}
}
