package audio

import "errors"

// ErrSinkFull is returned by a codec when the hardware output FIFO cannot
// take another block.
var ErrSinkFull = errors.New("audio sink full")

// Codec is the audio peripheral as seen from the audio interrupt.
type Codec interface {
	// ReadBlock copies the ready input frames into in and returns how many
	// frames were available. It never blocks.
	ReadBlock(in Block) int

	// WriteBlock hands one full output block to the hardware.
	WriteBlock(out Block) error
}

// BlockSink consumes output blocks on the host side (capture files, speakers).
type BlockSink interface {
	WriteBlock(out Block) error
}
