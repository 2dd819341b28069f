package control

import (

	"github.com/valerio/go-pod/pod/cell"
)

// MaxPots and MaxSwitches bound the published Snapshot.
const (
	MaxPots     = 4
	MaxSwitches = 4
)

// Devices is the set of human-interface peripherals owned by the poller.
type Devices struct {
	Pots     []*Pot
	Switches []*Switch
	LEDs     []*LED
	Encoder  *Encoder
}

// Snapshot is what the poller publishes after every cycle for consumers at
// other priority levels.
type Snapshot struct {
	Cycle   uint64
	Pots    [MaxPots]float32
	Pressed [MaxSwitches]bool
	Delta   int
	Click   bool
}

// Poller is the control-rate interrupt handler. It owns the timer, the ADC
// and every device in Devices.
type Poller struct {
	timer   Timer
	adc     ADC
	devices Devices

	publish *cell.Cell[Snapshot]
	preempt func()

	cycles       uint64
	readFailures uint64
}

// Option configures a Poller.
type Option func(*Poller)

// WithPublisher makes the poller store a Snapshot into c after each cycle.
// The poller is the only writer of c.
func WithPublisher(c *cell.Cell[Snapshot]) Option {
	return func(p *Poller) { p.publish = c }
}

// WithPreemptionPoint registers fn to be called before each conversion and
// before the digital updates, where a higher-priority interrupt pended in
// the meantime may run.
func WithPreemptionPoint(fn func()) Option {
	return func(p *Poller) { p.preempt = fn }
}

func NewPoller(timer Timer, adc ADC, devices Devices, opts ...Option) *Poller {
	p := &Poller{
		timer:   timer,
		adc:     adc,
		devices: devices,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll runs one control cycle.
//
// The timer flag is cleared before any peripheral is touched. Every pot is
// read independently: a failed conversion leaves that pot at its previous
// value and the others are still updated. LEDs, switches and the encoder are
// refreshed unconditionally afterwards.
func (p *Poller) Poll() {
	p.timer.ClearIRQ()

	for _, pot := range p.devices.Pots {
		p.yield()
		raw, err := p.adc.Read(pot.channel)
		if err != nil {
			pot.failures++
			p.readFailures++
			continue
		}
		pot.Update(raw)
	}

	p.yield()
	for _, led := range p.devices.LEDs {
		led.Update()
	}
	for _, sw := range p.devices.Switches {
		sw.Update()
	}
	if p.devices.Encoder != nil {
		p.devices.Encoder.Update()
	}

	p.cycles++

	if p.publish != nil {
		p.publish.Store(p.snapshot())
	}
}

func (p *Poller) yield() {
	if p.preempt != nil {
		p.preempt()
	}
}

func (p *Poller) snapshot() Snapshot {
	s := Snapshot{Cycle: p.cycles}
	for i, pot := range p.devices.Pots {
		if i == MaxPots {
			break
		}
		s.Pots[i] = pot.value
	}
	for i, sw := range p.devices.Switches {
		if i == MaxSwitches {
			break
		}
		s.Pressed[i] = sw.Pressed()
	}
	if enc := p.devices.Encoder; enc != nil {
		s.Delta = enc.delta
		if enc.Click != nil {
			s.Click = enc.Click.Pressed()
		}
	}
	return s
}

// Devices returns the peripherals owned by the poller. Only code running at
// the control priority may touch them.
func (p *Poller) Devices() Devices {
	return p.devices
}

// Cycles is the number of completed polls.
func (p *Poller) Cycles() uint64 {
	return p.cycles
}

// ReadFailures is the total number of skipped pot conversions.
func (p *Poller) ReadFailures() uint64 {
	return p.readFailures
}
