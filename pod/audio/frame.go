package audio

// Frame is one stereo output instant. Samples are nominally in [-1, 1].
type Frame struct {
	Left  float32
	Right float32
}

// Block is one DMA transfer worth of frames. Blocks are allocated once and
// reused on every audio interrupt.
type Block []Frame

// NewBlock allocates a block of n frames.
func NewBlock(n int) Block {
	return make(Block, n)
}

// Silence zeroes every frame in the block.
func (b Block) Silence() {
	for i := range b {
		b[i] = Frame{}
	}
}
