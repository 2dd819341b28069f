// Package irq models the fixed-priority, preemptive interrupt controller the
// firmware runs on, so the handlers can be driven off-target.
package irq

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"sync/atomic"
)

// Line identifies an interrupt request line.
type Line uint8

const (
	// AudioLine is raised by the codec DMA stream when a block is ready.
	AudioLine Line = iota
	// ControlLine is raised by the control-rate timer.
	ControlLine

	maxLines = 32
)

func (l Line) String() string {
	switch l {
	case AudioLine:
		return "DMA1_STR1"
	case ControlLine:
		return "TIM2"
	default:
		return fmt.Sprintf("IRQ%d", uint8(l))
	}
}

// Priority of a handler. Higher runs first and preempts lower. Idle is the
// level of thread mode and cannot be registered.
type Priority uint8

const (
	Idle            Priority = 0
	ControlPriority Priority = 1
	AudioPriority   Priority = 8
)

var (
	ErrLineInUse   = errors.New("interrupt line already registered")
	ErrBadPriority = errors.New("handler priority must be above idle")
	ErrBadLine     = errors.New("interrupt line out of range")
)

// Handler is an interrupt service routine. It must return; it is never
// re-entered while running.
type Handler func()

type vector struct {
	handler  Handler
	priority Priority
	count    uint64
	running  bool
}

// Dispatcher holds the vector table and the pending register.
//
// Pend may be called from any goroutine. Service and Preempt must only be
// called from the goroutine that plays the role of the CPU.
type Dispatcher struct {
	vectors [maxLines]*vector
	pending atomic.Uint32
	level   Priority
}

func New() *Dispatcher {
	return &Dispatcher{}
}

// Register installs h on line at priority prio.
func (d *Dispatcher) Register(line Line, prio Priority, h Handler) error {
	if line >= maxLines {
		return fmt.Errorf("%w: %d", ErrBadLine, line)
	}
	if prio == Idle {
		return fmt.Errorf("%v: %w", line, ErrBadPriority)
	}
	if d.vectors[line] != nil {
		return fmt.Errorf("%v: %w", line, ErrLineInUse)
	}
	d.vectors[line] = &vector{handler: h, priority: prio}
	slog.Debug("Interrupt registered", "component", "irq", "line", line, "priority", prio)
	return nil
}

// Pend raises line. Raising an already pending line is a no-op: requests
// are not queued.
func (d *Dispatcher) Pend(line Line) {
	if line >= maxLines {
		return
	}
	mask := uint32(1) << line
	for {
		old := d.pending.Load()
		if old&mask != 0 || d.pending.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

// Pending reports whether line is waiting to be serviced.
func (d *Dispatcher) Pending(line Line) bool {
	return line < maxLines && d.pending.Load()&(1<<line) != 0
}

// Service runs pending handlers, highest priority first, until nothing that
// outranks the current level is left. Called from thread mode it drains
// everything.
func (d *Dispatcher) Service() {
	for {
		line, ok := d.next()
		if !ok {
			return
		}
		d.run(line)
	}
}

// Preempt is called by a running handler at a point where it may be
// interrupted. Any pending handler with a higher priority runs to
// completion before Preempt returns.
func (d *Dispatcher) Preempt() {
	d.Service()
}

// Level is the priority of the code currently running.
func (d *Dispatcher) Level() Priority {
	return d.level
}

// Count returns how many times the handler on line has run.
func (d *Dispatcher) Count(line Line) uint64 {
	if line >= maxLines || d.vectors[line] == nil {
		return 0
	}
	return d.vectors[line].count
}

func (d *Dispatcher) next() (Line, bool) {
	pending := d.pending.Load()
	best, found := Line(0), false
	var bestPrio Priority
	for pending != 0 {
		l := Line(bits.TrailingZeros32(pending))
		pending &^= 1 << l

		v := d.vectors[l]
		if v == nil || v.running || v.priority <= d.level {
			continue
		}
		if !found || v.priority > bestPrio {
			best, bestPrio, found = l, v.priority, true
		}
	}
	return best, found
}

func (d *Dispatcher) run(line Line) {
	mask := uint32(1) << line
	for {
		old := d.pending.Load()
		if d.pending.CompareAndSwap(old, old&^mask) {
			break
		}
	}

	v := d.vectors[line]
	saved := d.level
	d.level = v.priority
	v.running = true

	v.handler()

	v.running = false
	d.level = saved
	v.count++
}
