package audio

import (
	"fmt"
	"log/slog"
	"strings"
)

// Mode selects what the audio interrupt does with each block.
type Mode int

const (
	// Passthrough copies the codec input straight to the output.
	Passthrough Mode = iota
	// Synthesis ignores the input and plays the swept sine on both channels.
	Synthesis
)

func (m Mode) String() string {
	switch m {
	case Passthrough:
		return "passthrough"
	case Synthesis:
		return "synthesis"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name back to its Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "passthrough":
		return Passthrough, nil
	case "synthesis":
		return Synthesis, nil
	default:
		return 0, fmt.Errorf("unknown audio mode %q", name)
	}
}

// OverrunError reports that an output block could not be delivered before
// the next block was due. It is a deadline miss and puts the engine into its
// safe state.
type OverrunError struct {
	Block uint64 // index of the block that was rejected
	Err   error
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf("audio overrun at block %d: %v", e.Block, e.Err)
}

func (e *OverrunError) Unwrap() error {
	return e.Err
}

// Stats are running counters of the audio interrupt.
type Stats struct {
	Blocks   uint64
	Overruns uint64
}

// Engine is the audio interrupt handler. It owns the codec and the
// oscillator; nothing else touches them once the engine is built.
//
// Process must not allocate or block: every buffer is allocated by NewEngine.
type Engine struct {
	codec Codec
	mode  Mode
	osc   *Oscillator

	in  Block
	out Block

	muted bool
	fault *OverrunError
	stats Stats
}

// NewEngine builds an engine moving blockSize frames per interrupt.
// A nil oscillator is replaced by the default sweep at SampleRate.
func NewEngine(codec Codec, mode Mode, osc *Oscillator, blockSize int) *Engine {
	if osc == nil {
		osc = NewOscillator(DefaultSweep, SampleRate)
	}
	return &Engine{
		codec: codec,
		mode:  mode,
		osc:   osc,
		in:    NewBlock(blockSize),
		out:   NewBlock(blockSize),
	}
}

// Process handles one audio-block-ready interrupt: read the input block,
// produce exactly one output block and push it to the codec.
//
// A rejected push is never propagated. The engine records an OverrunError,
// mutes itself and keeps feeding silence on later interrupts.
func (e *Engine) Process() {
	n := e.codec.ReadBlock(e.in)
	if n > len(e.in) {
		n = len(e.in)
	}

	switch {
	case e.muted:
		e.out.Silence()
	case e.mode == Synthesis:
		for i := range e.out {
			s := e.osc.Next()
			e.out[i] = Frame{Left: s, Right: s}
		}
	default:
		copy(e.out, e.in[:n])
		e.out[n:].Silence()
	}

	if err := e.codec.WriteBlock(e.out); err != nil {
		e.stats.Overruns++
		if !e.muted {
			e.enterSafeState(err)
		}
	}
	e.stats.Blocks++
}

func (e *Engine) enterSafeState(err error) {
	e.muted = true
	e.fault = &OverrunError{Block: e.stats.Blocks, Err: err}
	slog.Error("Audio deadline missed, output muted", "component", "audio", "block", e.stats.Blocks, "error", err)
}

// Mode returns the configured operating mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Muted reports whether the engine is in its safe state.
func (e *Engine) Muted() bool {
	return e.muted
}

// Fault returns the overrun that muted the engine, or nil.
func (e *Engine) Fault() error {
	if e.fault == nil {
		return nil
	}
	return e.fault
}

// Stats returns a copy of the interrupt counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Oscillator exposes the synthesis state for diagnostics.
func (e *Engine) Oscillator() *Oscillator {
	return e.osc
}
