package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelNone disables logging altogether.
const LevelNone = "none"

// ParseLevel maps a level name to a slog level. "none" is accepted and maps
// to a level above every record.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case LevelNone:
		return slog.LevelError + 4, nil
	case "error":
		return slog.LevelError, nil
	case "warn":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, name)
	}
}

// ConfigureLogger installs the default slog logger.
//
// Valid levels are "none", "error", "warn", "info" and "debug". With an
// empty logFile records go to stderr as text, otherwise the file is
// truncated and records are written to it as JSON.
//
// The returned file, if any, must be closed by the caller:
//
//	f, err := config.ConfigureLogger("debug", "pod.log")
//	if f != nil {
//		defer f.Close()
//	}
func ConfigureLogger(level, logFile string) (*os.File, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(level) == LevelNone {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, opts)))
		return nil, nil
	}

	if logFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
		return nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, opts)))
	return f, nil
}
