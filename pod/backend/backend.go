// Package backend defines the host front ends the simulated instrument can
// run behind.
package backend

import (
	"time"

	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/control"
	"github.com/valerio/go-pod/pod/sim"
)

// Backend is a host platform for the instrument: it shows the panel state
// and turns user input into changes on the simulated board.
type Backend interface {
	// Init prepares the backend. It must be called before Update.
	Init(config Config) error

	// Update is called once per real-time slice with the latest state.
	// Backends should:
	// 1. Poll for platform events and apply them to the board
	// 2. Render the view
	Update(view View) ([]Event, error)

	// Cleanup releases resources when shutting down.
	Cleanup() error
}

// Config holds configuration for backends.
type Config struct {
	Title string
	Board *sim.Board // may be nil for backends without input
}

// Event is a request from the backend to the run loop.
type Event int

const (
	// Quit stops the run loop.
	Quit Event = iota + 1
	// Reset resynchronizes real-time pacing, e.g. after a pause.
	Reset
)

func (e Event) String() string {
	switch e {
	case Quit:
		return "quit"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// View is a read-only picture of the instrument between two slices.
type View struct {
	Elapsed time.Duration

	Mode  audio.Mode
	Audio audio.Stats
	Muted bool
	Fault error
	Pitch float32

	// Controls is the last snapshot published by the control poller.
	// Valid is false until the first poll completes.
	Controls control.Snapshot
	Valid    bool

	LEDs [2]control.Color

	Loaded int
}
