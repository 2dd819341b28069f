package audio

import "math"

// Sweep describes the diagnostic pitch ramp: the pitch starts at Base, grows by
// Step every sample and snaps back to Base once it has passed Max.
type Sweep struct {
	Base float32
	Max  float32
	Step float32
}

// DefaultSweep ramps a sine from 440 Hz to 10 kHz in 0.1 Hz steps.
var DefaultSweep = Sweep{Base: sweepBase, Max: sweepMax, Step: sweepStep}

// Steps returns how many increments it takes for the pitch to pass Max.
func (s Sweep) Steps() int {
	if s.Step <= 0 || s.Max <= s.Base {
		return 0
	}
	return int(math.Ceil(float64(s.Max-s.Base) / float64(s.Step)))
}

// Oscillator is a sine phase accumulator driven by a pitch sweep.
//
// Phase is never reduced modulo 2π. The accumulator keeps growing, the float32
// spacing around it grows with it, and after a long enough run the increment
// pitch/sampleRate gets rounded away and the tone quantizes. This is a known
// property of the diagnostic tone and is kept as is.
//
// The pitch itself is derived from an integer step count rather than summed,
// so the sweep wraps on the same sample no matter how long it has been running.
type Oscillator struct {
	Phase float32
	Pitch float32

	sweep      Sweep
	steps      int
	top        int
	wrapped    bool
	sampleRate float32
}

// NewOscillator returns an oscillator at phase 0 and pitch sweep.Base.
func NewOscillator(sweep Sweep, sampleRate int) *Oscillator {
	return &Oscillator{
		Pitch:      sweep.Base,
		sweep:      sweep,
		top:        sweep.Steps(),
		sampleRate: float32(sampleRate),
	}
}

// Next advances the phase by one sample and returns sin(phase).
// Once the sample is computed the sweep is checked: if the pitch has reached
// the top step it is set back to Base. Then it is incremented by one step.
func (o *Oscillator) Next() float32 {
	o.Phase += o.Pitch / o.sampleRate
	s := float32(math.Sin(float64(o.Phase)))

	o.wrapped = false
	if o.top > 0 && o.steps >= o.top {
		o.steps = 0
		o.wrapped = true
	}
	o.steps++
	o.Pitch = o.sweep.Base + float32(o.steps)*o.sweep.Step

	return s
}

// Exceeded reports whether the pitch sits on the top step of the sweep, that
// is past Max. The next call to Next resets it.
func (o *Oscillator) Exceeded() bool {
	return o.top > 0 && o.steps >= o.top
}

// Wrapped reports whether the most recent call to Next reset the sweep.
func (o *Oscillator) Wrapped() bool {
	return o.wrapped
}
