package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryboard/pkg/contracts/domain"
)

type recorder struct {
	mu    sync.Mutex
	kinds []domain.RecordKind
}

func (r *recorder) trigger(kind domain.RecordKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recorder) calls() []domain.RecordKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RecordKind(nil), r.kinds...)
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name        string
		setupFile   bool
		setupDir    bool
		setupHidden bool
		operation   fsnotify.Op
		expected    bool
	}{
		{name: "create file event", setupFile: true, operation: fsnotify.Create, expected: true},
		{name: "write file event", setupFile: true, operation: fsnotify.Write, expected: true},
		{name: "remove file event is ignored", operation: fsnotify.Remove},
		{name: "rename file event is ignored", operation: fsnotify.Rename},
		{name: "chmod file event is ignored", setupFile: true, operation: fsnotify.Chmod},
		{name: "create directory event is ignored", setupDir: true, operation: fsnotify.Create},
		{name: "hidden file create is ignored", setupHidden: true, operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			var eventPath string
			switch {
			case tt.setupDir:
				eventPath = filepath.Join(dir, "archive")
				require.NoError(t, os.Mkdir(eventPath, 0o755))
			case tt.setupHidden:
				eventPath = filepath.Join(dir, ".report.txt.swp")
				require.NoError(t, os.WriteFile(eventPath, []byte("x"), 0o644))
			case tt.setupFile:
				eventPath = filepath.Join(dir, "report.txt")
				require.NoError(t, os.WriteFile(eventPath, []byte("x"), 0o644))
			default:
				eventPath = filepath.Join(dir, "removed.txt")
			}

			rec := &recorder{}
			w := New(map[domain.RecordKind]string{domain.KindReservation: dir}, time.Millisecond, rec.trigger, nil)
			defer w.Stop()

			got := w.handleEvent(fsnotify.Event{Name: eventPath, Op: tt.operation})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHandleEventUnknownDirectory(t *testing.T) {
	watched, other := t.TempDir(), t.TempDir()
	path := filepath.Join(other, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	w := New(map[domain.RecordKind]string{domain.KindReservation: watched}, time.Millisecond, func(domain.RecordKind) {}, nil)
	defer w.Stop()

	assert.False(t, w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create}))
}

func TestDebounceCoalescesPerDirectory(t *testing.T) {
	resDir, reqDir := t.TempDir(), t.TempDir()
	resFile := filepath.Join(resDir, "r.txt")
	reqFile := filepath.Join(reqDir, "q.txt")
	require.NoError(t, os.WriteFile(resFile, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(reqFile, []byte("x"), 0o644))

	rec := &recorder{}
	w := New(map[domain.RecordKind]string{
		domain.KindReservation: resDir,
		domain.KindRequisition: reqDir,
	}, 50*time.Millisecond, rec.trigger, nil)
	defer w.Stop()

	for i := 0; i < 5; i++ {
		w.handleEvent(fsnotify.Event{Name: resFile, Op: fsnotify.Write})
	}
	w.handleEvent(fsnotify.Event{Name: reqFile, Op: fsnotify.Create})

	assert.Eventually(t, func() bool { return len(rec.calls()) == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.ElementsMatch(t, []domain.RecordKind{domain.KindReservation, domain.KindRequisition}, rec.calls())
}

func TestStopCancelsPendingTrigger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	rec := &recorder{}
	w := New(map[domain.RecordKind]string{domain.KindReservation: dir}, 100*time.Millisecond, rec.trigger, nil)

	require.True(t, w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	require.NoError(t, w.Stop())

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.calls())
}

func TestWatcherTriggersOnNewFile(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New(map[domain.RecordKind]string{domain.KindRequisition: dir}, 20*time.Millisecond, rec.trigger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ME5A.txt"), []byte("| 01.01.2025 |"), 0o644))

	assert.Eventually(t, func() bool { return len(rec.calls()) >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, domain.KindRequisition, rec.calls()[0])
}

func TestStartWithMissingDirectory(t *testing.T) {
	w := New(map[domain.RecordKind]string{domain.KindReservation: filepath.Join(t.TempDir(), "missing")}, 0, func(domain.RecordKind) {}, nil)

	require.NoError(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop())
}
