package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Sleeps for most of the wait and busy-waits the last millisecond.
type AdaptiveLimiter struct {
	period  time.Duration
	next    time.Time
	counter int64
	now     func() time.Time
}

func NewAdaptiveLimiter(period time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		period: period,
		next:   time.Now(),
		now:    time.Now,
	}
}

func (a *AdaptiveLimiter) Wait() {
	now := a.now()
	ahead := a.next.Sub(now)

	switch {
	case ahead >= 2*time.Millisecond:
		time.Sleep(ahead - time.Millisecond)
		fallthrough
	case ahead > 0:
		for a.now().Before(a.next) {
		}
	case ahead < -5*a.period && ahead < -5*time.Millisecond:
		// too far behind to catch up, resync
		a.next = now
	}

	a.next = a.next.Add(a.period)
	a.counter++

	if a.counter%100 == 0 {
		drift := a.now().Sub(a.next)
		if drift.Abs() > 10*time.Millisecond {
			a.next = a.next.Add(drift / 10)
			slog.Debug("Timing drift correction", "drift_ms", drift.Milliseconds(), "ticks", a.counter)
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.counter = 0
}

func (a *AdaptiveLimiter) Period() time.Duration {
	return a.period
}
