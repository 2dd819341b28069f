package audio

// Codec timing constants
// Reference: Daisy Seed AK4556 codec, SAI1 driven by DMA1 stream 1
const (
	// SampleRate is the codec frame rate in Hz.
	SampleRate = 48000

	// DefaultBlockSize is the number of stereo frames per DMA half-transfer.
	DefaultBlockSize = 32
)

// Pitch sweep used by the diagnostic tone.
const (
	sweepBase = 440.0
	sweepMax  = 10000.0
	sweepStep = 0.1
)
