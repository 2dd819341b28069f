package sim

import (
	"sync/atomic"

	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/control"
	"github.com/valerio/go-pod/pod/storage"
)

// Timer is the control-rate timer. The interrupt itself is raised by the
// clock driving the dispatcher; this only records acknowledgements.
type Timer struct {
	cleared atomic.Uint64
}

func (t *Timer) ClearIRQ() {
	t.cleared.Add(1)
}

// Cleared counts acknowledged interrupts.
func (t *Timer) Cleared() uint64 {
	return t.cleared.Load()
}

// Card is an SD card that always identifies unless Err is set.
type Card struct {
	Err     error
	ClockHz uint32
}

func (c *Card) Init(clockHz uint32) error {
	if c.Err != nil {
		return c.Err
	}
	c.ClockHz = clockHz
	return nil
}

// Pot channels, switch and LED indices of the Pod front panel.
const (
	Pot1 control.Channel = 0
	Pot2 control.Channel = 1

	Switch1 = 0
	Switch2 = 1

	LED1 = 0
	LED2 = 1
)

// Board is a complete simulated Pod: the codec, the card, and the panel
// controls, with handles for driving them from a front end.
type Board struct {
	Codec *Codec
	ADC   *ADC
	Timer *Timer
	Card  *Card
	FS    storage.FileSystem

	// Switches are active low: a released switch reads high.
	Switches [2]*Pin
	LEDs     [2]RGB
	Knob     *Quadrature
	Click    *Pin
}

// NewBoard returns a board whose card holds fs and whose codec writes to
// sink.
func NewBoard(fs storage.FileSystem, sink audio.BlockSink) *Board {
	return &Board{
		Codec:    NewCodec(sink),
		ADC:      NewADC(),
		Timer:    &Timer{},
		Card:     &Card{},
		FS:       fs,
		Switches: [2]*Pin{NewPin(true), NewPin(true)},
		LEDs:     [2]RGB{NewRGB(), NewRGB()},
		Knob:     &Quadrature{},
		Click:    NewPin(true),
	}
}

// Devices wires fresh control devices to the board's lines.
func (b *Board) Devices() control.Devices {
	leds := make([]*control.LED, len(b.LEDs))
	for i, l := range b.LEDs {
		leds[i] = control.NewLED(l.R, l.G, l.B)
	}
	return control.Devices{
		Pots: []*control.Pot{control.NewPot(Pot1), control.NewPot(Pot2)},
		Switches: []*control.Switch{
			control.NewSwitch(b.Switches[Switch1], true),
			control.NewSwitch(b.Switches[Switch2], true),
		},
		LEDs:    leds,
		Encoder: control.NewEncoder(b.Knob.A(), b.Knob.B(), control.NewSwitch(b.Click, true)),
	}
}

// Press holds switch i down or releases it.
func (b *Board) Press(i int, down bool) {
	b.Switches[i].Set(!down)
}

// Pressed reports whether switch i is physically held.
func (b *Board) Pressed(i int) bool {
	return !b.Switches[i].IsHigh()
}
