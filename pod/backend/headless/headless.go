package headless

import (
	"log/slog"
	"time"

	"github.com/valerio/go-pod/pod/backend"
)

// Backend runs the instrument without any front end for a fixed stretch of
// virtual time, for batch rendering and automated checks.
type Backend struct {
	config   backend.Config
	duration time.Duration
	updates  int
	last     backend.View
}

func New(duration time.Duration) *Backend {
	return &Backend{duration: duration}
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config
	slog.Info("Running headless mode", "duration", h.duration)
	return nil
}

// Update records the view and asks to quit once the duration has elapsed.
func (h *Backend) Update(view backend.View) ([]backend.Event, error) {
	h.updates++
	h.last = view

	if h.updates%100 == 0 {
		slog.Info("Progress", "elapsed", view.Elapsed, "total", h.duration, "blocks", view.Audio.Blocks)
	}

	if view.Elapsed < h.duration {
		return nil, nil
	}

	slog.Info("Headless execution completed",
		"elapsed", view.Elapsed,
		"blocks", view.Audio.Blocks,
		"overruns", view.Audio.Overruns,
		"muted", view.Muted,
		"control_cycles", view.Controls.Cycle)
	if view.Fault != nil {
		slog.Warn("Audio fault during run", "error", view.Fault)
	}
	return []backend.Event{backend.Quit}, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Last is the most recent view, for reporting after the run.
func (h *Backend) Last() backend.View {
	return h.last
}
