// Package timing paces the host simulation against the wall clock.
package timing

import "time"

// Limiter keeps a loop in step with real time.
type Limiter interface {
	// Wait blocks until the next slice of real time is due.
	// Returns immediately if the loop is behind schedule.
	Wait()

	// Reset drops accumulated schedule, useful after pauses.
	Reset()

	// Period is the slice of time each Wait accounts for.
	Period() time.Duration
}

// NewNoOpLimiter returns a limiter that runs as fast as possible, for
// offline rendering and tests.
func NewNoOpLimiter(period time.Duration) Limiter {
	return &noOpLimiter{period: period}
}

type noOpLimiter struct {
	period time.Duration
}

func (n *noOpLimiter) Wait()                 {}
func (n *noOpLimiter) Reset()                {}
func (n *noOpLimiter) Period() time.Duration { return n.period }

// BlockPeriod is the time one audio block of blockSize frames lasts at
// sampleRate.
func BlockPeriod(blockSize, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(blockSize) * int64(time.Second) / int64(sampleRate))
}
