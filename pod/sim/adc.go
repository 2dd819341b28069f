package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/valerio/go-pod/pod/control"
)

// ADCChannels is the number of channels the simulated converter has.
const ADCChannels = 16

// ADC is a converter whose channel levels are set from outside, typically by
// the front panel. Levels may be changed from any goroutine.
type ADC struct {
	levels  [ADCChannels]atomic.Uint32
	failing [ADCChannels]atomic.Bool
	reads   atomic.Uint64
}

func NewADC() *ADC {
	return &ADC{}
}

func (a *ADC) Read(ch control.Channel) (uint16, error) {
	if int(ch) >= ADCChannels {
		return 0, fmt.Errorf("channel %d: %w", ch, control.ErrConversion)
	}
	a.reads.Add(1)
	if a.failing[ch].Load() {
		return 0, fmt.Errorf("channel %d: %w", ch, control.ErrConversion)
	}
	return uint16(a.levels[ch].Load()), nil
}

// Set puts a raw level on ch.
func (a *ADC) Set(ch control.Channel, raw uint16) {
	a.levels[ch].Store(uint32(raw))
}

// Level returns the raw level on ch.
func (a *ADC) Level(ch control.Channel) uint16 {
	return uint16(a.levels[ch].Load())
}

// Nudge moves the level on ch by delta, clamped to the 16-bit range.
func (a *ADC) Nudge(ch control.Channel, delta int) {
	for {
		old := a.levels[ch].Load()
		v := max(0, min(int(old)+delta, 0xFFFF))
		if a.levels[ch].CompareAndSwap(old, uint32(v)) {
			return
		}
	}
}

// Fail makes conversions on ch fail until cleared.
func (a *ADC) Fail(ch control.Channel, failing bool) {
	a.failing[ch].Store(failing)
}

// Reads counts conversions attempted on valid channels.
func (a *ADC) Reads() uint64 {
	return a.reads.Load()
}
