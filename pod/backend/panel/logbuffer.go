package panel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is one captured log record.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// LogBuffer is a thread-safe circular buffer of log entries.
type LogBuffer struct {
	entries []LogEntry
	index   int
	count   int
	mutex   sync.RWMutex
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// Add inserts an entry, evicting the oldest when full.
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mutex.Lock()
	defer lb.mutex.Unlock()

	lb.entries[lb.index] = entry
	lb.index = (lb.index + 1) % len(lb.entries)
	if lb.count < len(lb.entries) {
		lb.count++
	}
}

// Recent returns up to maxCount entries, newest first.
func (lb *LogBuffer) Recent(maxCount int) []LogEntry {
	lb.mutex.RLock()
	defer lb.mutex.RUnlock()

	count := lb.count
	if maxCount >= 0 && maxCount < count {
		count = maxCount
	}
	result := make([]LogEntry, count)
	for i := range count {
		result[i] = lb.entries[(lb.index-1-i+len(lb.entries))%len(lb.entries)]
	}
	return result
}

// LogHandler is a slog.Handler that captures records into a LogBuffer,
// so logging does not scribble over the panel.
type LogHandler struct {
	buffer *LogBuffer
	level  slog.Leveler
	attrs  string
}

func NewLogHandler(buffer *LogBuffer, level slog.Leveler) *LogHandler {
	return &LogHandler{buffer: buffer, level: level}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)
	b.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})

	h.buffer.Add(LogEntry{Time: record.Time, Level: record.Level, Message: b.String()})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	return &LogHandler{buffer: h.buffer, level: h.level, attrs: b.String()}
}

// WithGroup is not supported; groups are flattened.
func (h *LogHandler) WithGroup(string) slog.Handler {
	return h
}

// FormatLogEntry formats an entry for one panel line.
func FormatLogEntry(entry LogEntry) string {
	var level string
	switch entry.Level {
	case slog.LevelDebug:
		level = "DBG"
	case slog.LevelInfo:
		level = "INF"
	case slog.LevelWarn:
		level = "WRN"
	case slog.LevelError:
		level = "ERR"
	default:
		level = "???"
	}
	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), level, entry.Message)
}
