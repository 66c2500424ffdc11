package testutil

import (
	"log/slog"
	"sync"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		if got := len(handler.GetRecords()); got != 2 {
			t.Errorf("Expected 2 records, got %d", got)
		}
		if !handler.ContainsMessage("test message") {
			t.Error("Expected to find 'test message'")
		}
		if !handler.ContainsAttr("key", "value") {
			t.Error("Expected to find attribute key=value")
		}
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		if got := len(handler.GetRecordsByLevel(slog.LevelInfo)); got != 1 {
			t.Errorf("Expected 1 info record, got %d", got)
		}
		if got := len(handler.GetRecordsByLevel(slog.LevelError)); got != 1 {
			t.Errorf("Expected 1 error record, got %d", got)
		}
	})

	t.Run("derived loggers share the sink", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "watcher")).Info("event", slog.String("kind", "reservation"))

		AssertLogAttr(t, handler, "component", "watcher")
		AssertLogAttr(t, handler, "kind", "reservation")
		if handler.Count() != 1 {
			t.Errorf("Expected 1 record, got %d", handler.Count())
		}
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		handler.Clear()

		if handler.Count() != 0 {
			t.Errorf("Expected 0 records after clear, got %d", handler.Count())
		}
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "retry", int64(3))
		AssertNoErrors(t, handler)
	})

	t.Run("thread safety", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.With(slog.Int("goroutine", n)).Info("concurrent log")
			}(i)
		}
		wg.Wait()

		if handler.Count() != 10 {
			t.Errorf("Expected 10 records from concurrent logging, got %d", handler.Count())
		}
	})
}
