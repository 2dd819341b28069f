// Package ring queues audio between the real-time side and a host device.
package ring

import (
	"math/bits"
	"sync/atomic"

	"github.com/valerio/go-pod/pod/audio"
)

// Ring is a single-producer, single-consumer queue of interleaved stereo
// samples. The audio interrupt pushes whole blocks; the sound card pulls
// whatever it needs. Neither side blocks.
type Ring struct {
	buf  []float32
	mask uint64

	w atomic.Uint64 // next slot to write, producer owned
	r atomic.Uint64 // next slot to read, consumer owned
}

// NewRing returns a ring holding at least n samples.
func NewRing(n int) *Ring {
	size := uint64(1)
	if n > 1 {
		size = 1 << bits.Len64(uint64(n-1))
	}
	return &Ring{buf: make([]float32, size), mask: size - 1}
}

// Cap is the number of samples the ring holds.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Len is the number of samples waiting to be read.
func (r *Ring) Len() int {
	return int(r.w.Load() - r.r.Load())
}

// PushBlock appends every frame of b, or nothing at all when there is not
// enough room.
func (r *Ring) PushBlock(b audio.Block) bool {
	w := r.w.Load()
	if uint64(len(r.buf))-(w-r.r.Load()) < uint64(2*len(b)) {
		return false
	}
	for _, f := range b {
		r.buf[w&r.mask] = f.Left
		r.buf[(w+1)&r.mask] = f.Right
		w += 2
	}
	r.w.Store(w)
	return true
}

// Pop moves up to len(dst) samples into dst and returns how many it moved.
func (r *Ring) Pop(dst []float32) int {
	rd := r.r.Load()
	n := min(uint64(len(dst)), r.w.Load()-rd)
	for i := range n {
		dst[i] = r.buf[(rd+i)&r.mask]
	}
	r.r.Store(rd + n)
	return int(n)
}
