package pod

import (
	"github.com/valerio/go-pod/pod/control"
	"github.com/valerio/go-pod/pod/sim"
)

// SimPeripherals hands the lines of a simulated board to the instrument.
func SimPeripherals(b *sim.Board) Peripherals {
	return Peripherals{
		Codec:   b.Codec,
		Timer:   b.Timer,
		ADC:     b.ADC,
		Devices: b.Devices(),
		Card:    b.Card,
		FS:      b.FS,
		LEDs: func() [2]control.Color {
			return [2]control.Color{b.LEDs[sim.LED1].Color(), b.LEDs[sim.LED2].Color()}
		},
	}
}
