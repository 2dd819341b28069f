package sim

import (
	"sync/atomic"

	"github.com/valerio/go-pod/pod/control"
)

// Pin is a digital line usable both as an input and as an output.
type Pin struct {
	high atomic.Bool
}

// NewPin returns a pin at the given level.
func NewPin(high bool) *Pin {
	p := &Pin{}
	p.high.Store(high)
	return p
}

func (p *Pin) IsHigh() bool {
	return p.high.Load()
}

func (p *Pin) Set(high bool) {
	p.high.Store(high)
}

// Toggle inverts the level and returns the new one.
func (p *Pin) Toggle() bool {
	for {
		old := p.high.Load()
		if p.high.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// RGB is the three outputs of an RGB LED.
type RGB struct {
	R, G, B *Pin
}

func NewRGB() RGB {
	return RGB{R: NewPin(false), G: NewPin(false), B: NewPin(false)}
}

// Color decodes the levels currently driven on the outputs.
func (l RGB) Color() control.Color {
	var c control.Color
	if l.R.IsHigh() {
		c |= control.Red
	}
	if l.G.IsHigh() {
		c |= control.Green
	}
	if l.B.IsHigh() {
		c |= control.Blue
	}
	return c
}

// Quadrature generates the two phase signals of a rotary encoder. Turns are
// queued from any goroutine and played out one detent per two samples.
type Quadrature struct {
	pending atomic.Int32

	a, b  bool
	armed bool
}

// Turn queues detents: positive is clockwise.
func (q *Quadrature) Turn(detents int) {
	q.pending.Add(int32(detents))
}

// Pending is the number of detents not yet played out.
func (q *Quadrature) Pending() int {
	return int(q.pending.Load())
}

// A is the phase sampled first; reading it advances the waveform.
func (q *Quadrature) A() control.Pin {
	return phaseA{q}
}

func (q *Quadrature) B() control.Pin {
	return phaseB{q}
}

func (q *Quadrature) step() {
	if q.armed {
		q.a, q.b, q.armed = false, false, false
		return
	}
	switch p := q.pending.Load(); {
	case p > 0:
		q.pending.Add(-1)
		q.a, q.b, q.armed = true, false, true
	case p < 0:
		q.pending.Add(1)
		q.a, q.b, q.armed = false, true, true
	}
}

type phaseA struct{ q *Quadrature }

func (p phaseA) IsHigh() bool {
	p.q.step()
	return p.q.a
}

type phaseB struct{ q *Quadrature }

func (p phaseB) IsHigh() bool {
	return p.q.b
}
