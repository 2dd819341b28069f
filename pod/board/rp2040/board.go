//go:build tinygo && rp2040

// Package rp2040 runs the instrument on a Raspberry Pi Pico with a PCM5102A
// DAC on I2S, two pots, two switches, two RGB LEDs and an encoder.
package rp2040

import (
	"errors"
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"
	"github.com/tinygo-org/pio/rp2-pio/piolib"

	"github.com/valerio/go-pod/pod/audio"
	"github.com/valerio/go-pod/pod/control"
)

const (
	DACData  = machine.GPIO16
	DACClock = machine.GPIO17

	Switch1Pin = machine.GPIO10
	Switch2Pin = machine.GPIO11
	EncoderA   = machine.GPIO12
	EncoderB   = machine.GPIO13
	EncoderSW  = machine.GPIO14

	sampleRate = audio.SampleRate
)

var led1 = [3]machine.Pin{machine.GPIO2, machine.GPIO3, machine.GPIO4}
var led2 = [3]machine.Pin{machine.GPIO5, machine.GPIO6, machine.GPIO7}

// Codec drives the DAC through a PIO I2S program. The board has no audio
// input, so reads are always empty.
type Codec struct {
	i2s   *piolib.I2S
	words []uint32
}

func NewCodec(blockSize int) (*Codec, error) {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	i2s, err := piolib.NewI2S(sm, DACData, DACClock)
	if err != nil {
		return nil, err
	}
	i2s.SetSampleFrequency(sampleRate)
	return &Codec{i2s: i2s, words: make([]uint32, blockSize)}, nil
}

func (c *Codec) ReadBlock(in audio.Block) int {
	return 0
}

// WriteBlock packs each frame as two signed 16-bit halves and queues it on
// the PIO FIFO, waiting for room.
func (c *Codec) WriteBlock(out audio.Block) error {
	if len(out) > len(c.words) {
		return audio.ErrSinkFull
	}
	for i, f := range out {
		c.words[i] = uint32(uint16(pcm16(f.Left))) | uint32(uint16(pcm16(f.Right)))<<16
	}
	c.i2s.WriteStereo(c.words[:len(out)])
	return nil
}

func pcm16(s float32) int16 {
	s = max(-1, min(s, 1))
	return int16(s * 32767)
}

// ADC reads the pots on the on-chip converter.
type ADC struct {
	inputs []machine.ADC
}

var errNoChannel = errors.New("no such adc channel")

func NewADC() *ADC {
	machine.InitADC()
	a := &ADC{inputs: []machine.ADC{{Pin: machine.ADC0}, {Pin: machine.ADC1}}}
	for _, in := range a.inputs {
		in.Configure(machine.ADCConfig{})
	}
	return a
}

func (a *ADC) Read(ch control.Channel) (uint16, error) {
	if int(ch) >= len(a.inputs) {
		return 0, errors.Join(control.ErrConversion, errNoChannel)
	}
	return a.inputs[ch].Get(), nil
}

// Timer is the control tick. The tick is raised from the main loop, so
// there is no hardware flag to clear.
type Timer struct{}

func (Timer) ClearIRQ() {}

type input struct{ pin machine.Pin }

func (p input) IsHigh() bool { return p.pin.Get() }

type output struct{ pin machine.Pin }

func (p output) Set(high bool) { p.pin.Set(high) }

func newInput(pin machine.Pin) input {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return input{pin}
}

func newLED(pins [3]machine.Pin) *control.LED {
	var outs [3]output
	for i, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		outs[i] = output{pin}
	}
	return control.NewLED(outs[0], outs[1], outs[2])
}

// Devices configures the panel pins and returns the control devices.
func Devices() control.Devices {
	return control.Devices{
		Pots: []*control.Pot{control.NewPot(0), control.NewPot(1)},
		Switches: []*control.Switch{
			control.NewSwitch(newInput(Switch1Pin), true),
			control.NewSwitch(newInput(Switch2Pin), true),
		},
		LEDs:    []*control.LED{newLED(led1), newLED(led2)},
		Encoder: control.NewEncoder(newInput(EncoderA), newInput(EncoderB), control.NewSwitch(newInput(EncoderSW), true)),
	}
}
