// Package sim provides host stand-ins for the Daisy Pod peripherals so the
// firmware can run and be tested off-target.
package sim

import (
	"sync/atomic"

	"github.com/valerio/go-pod/pod/audio"
)

// Codec stands in for the stereo audio codec. Its input loops over a mono
// sample buffer, duplicated on both channels; its output goes to a sink.
type Codec struct {
	source []float32
	pos    int

	sink    audio.BlockSink
	stalled atomic.Bool
	written atomic.Uint64
}

// NewCodec returns a codec writing to sink. A nil sink discards output.
func NewCodec(sink audio.BlockSink) *Codec {
	return &Codec{sink: sink}
}

// SetSource sets the looping input. It must not be called while the audio
// interrupt is running.
func (c *Codec) SetSource(samples []float32) {
	c.source = samples
	c.pos = 0
}

// ReadBlock fills in with the next frames of the source. Without a source
// the input is silent. A full block is always available.
func (c *Codec) ReadBlock(in audio.Block) int {
	if len(c.source) == 0 {
		in.Silence()
		return len(in)
	}
	for i := range in {
		s := c.source[c.pos]
		in[i] = audio.Frame{Left: s, Right: s}
		c.pos++
		if c.pos == len(c.source) {
			c.pos = 0
		}
	}
	return len(in)
}

// WriteBlock forwards out to the sink, or fails with audio.ErrSinkFull
// while the codec is stalled.
func (c *Codec) WriteBlock(out audio.Block) error {
	if c.stalled.Load() {
		return audio.ErrSinkFull
	}
	if c.sink != nil {
		if err := c.sink.WriteBlock(out); err != nil {
			return err
		}
	}
	c.written.Add(1)
	return nil
}

// Stall makes every following WriteBlock fail until released.
func (c *Codec) Stall(stalled bool) {
	c.stalled.Store(stalled)
}

// Stalled reports whether writes are being rejected.
func (c *Codec) Stalled() bool {
	return c.stalled.Load()
}

// Written is the number of blocks accepted so far.
func (c *Codec) Written() uint64 {
	return c.written.Load()
}
