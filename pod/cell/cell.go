// Package cell provides the only sanctioned way to move a value from one
// interrupt priority level to another.
package cell

import "sync/atomic"

const (
	indexMask = 0x3
	freshBit  = 0x4
)

// Cell is a single-writer, single-reader slot where every Store overwrites
// the previous value. Neither side ever blocks or allocates: three slots are
// rotated so the writer and the reader never touch the same one.
//
// Exactly one goroutine (or interrupt level) may call Store and exactly one
// may call Load.
type Cell[T any] struct {
	slots [3]T
	mid   atomic.Uint32 // index of the hand-off slot, plus freshBit

	w    uint32 // writer-owned slot
	r    uint32 // reader-owned slot
	seen bool   // reader has received at least one value
}

// New returns an empty cell.
func New[T any]() *Cell[T] {
	c := &Cell[T]{w: 0, r: 2}
	c.mid.Store(1)
	return c
}

// Store publishes v, replacing whatever the reader has not picked up yet.
func (c *Cell[T]) Store(v T) {
	c.slots[c.w] = v
	prev := c.mid.Swap(c.w | freshBit)
	c.w = prev & indexMask
}

// Load returns the most recently stored value. ok is false until the first
// Store has been observed.
func (c *Cell[T]) Load() (v T, ok bool) {
	if c.mid.Load()&freshBit != 0 {
		prev := c.mid.Swap(c.r)
		c.r = prev & indexMask
		c.seen = true
	}
	return c.slots[c.r], c.seen
}
