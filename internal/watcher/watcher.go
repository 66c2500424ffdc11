// Package watcher turns file system events in the report directories into
// refresh triggers. Bursts of events (an export written in several chunks,
// a copy followed by a rename) are coalesced per directory.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"deliveryboard/internal/files"
	"deliveryboard/pkg/contracts/domain"
)

// DefaultDebounce is the quiet period before a trigger fires
const DefaultDebounce = 750 * time.Millisecond

// Trigger is called once per coalesced burst of changes
type Trigger func(kind domain.RecordKind)

// Watcher watches one directory per record kind, non-recursively
type Watcher struct {
	dirs     map[string]domain.RecordKind
	debounce time.Duration
	trigger  Trigger
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timers  map[domain.RecordKind]*time.Timer
	stopped bool

	wg sync.WaitGroup
}

// New creates a watcher. dirs maps each kind to its directory.
func New(dirs map[domain.RecordKind]string, debounce time.Duration, trigger Trigger, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	byDir := make(map[string]domain.RecordKind, len(dirs))
	for kind, dir := range dirs {
		byDir[cleanDir(dir)] = kind
	}

	return &Watcher{
		dirs:     byDir,
		debounce: debounce,
		trigger:  trigger,
		logger:   logger.With(slog.String("component", "watcher")),
		timers:   make(map[domain.RecordKind]*time.Timer),
	}
}

// Start registers the directories and begins dispatching events until ctx
// is done or Stop is called. A directory that does not exist yet is logged
// and skipped; the periodic refresh still covers it.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw

	watched := 0
	for dir, kind := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("Cannot watch report directory",
				slog.String("kind", string(kind)),
				slog.String("dir", dir),
				slog.String("error", err.Error()))
			continue
		}
		watched++
		w.logger.Info("Watching report directory", slog.String("kind", string(kind)), slog.String("dir", dir))
	}
	if watched == 0 {
		w.logger.Warn("No report directory is being watched")
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop ends event dispatch and cancels pending triggers
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for kind, t := range w.timers {
		t.Stop()
		delete(w.timers, kind)
	}
	w.mu.Unlock()

	var err error
	if w.fsw != nil {
		err = w.fsw.Close()
	}
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", slog.String("error", err.Error()))
		}
	}
}

// handleEvent schedules a trigger for relevant events and reports whether
// it did. Only creations and writes of regular, non-hidden files count;
// deletions never change the board.
func (w *Watcher) handleEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	if files.IsHidden(filepath.Base(ev.Name)) {
		return false
	}
	kind, ok := w.dirs[cleanDir(filepath.Dir(ev.Name))]
	if !ok {
		return false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return false
	}

	w.logger.Debug("Report change detected",
		slog.String("kind", string(kind)),
		slog.String("file", ev.Name),
		slog.String("op", ev.Op.String()))
	w.schedule(kind)
	return true
}

// schedule (re)arms the debounce timer of kind
func (w *Watcher) schedule(kind domain.RecordKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if t, ok := w.timers[kind]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[kind] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, kind)
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			w.trigger(kind)
		}
	})
}

func cleanDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
