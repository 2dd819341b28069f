package irq

import (
	"errors"
	"time"
)

// ErrBadPeriod is returned for a non-positive source period.
var ErrBadPeriod = errors.New("period must be positive")

type source struct {
	line   Line
	period time.Duration
	next   time.Duration
}

// Clock raises periodic interrupt lines on a virtual timeline. Events that
// fall on the same instant are all pended before servicing, so priority
// decides their order.
//
// Handlers take no virtual time: the clock never moves while one runs, so a
// clock event cannot land inside a handler. A handler is only preempted
// mid-run by a line pended while it runs, by a device or another goroutine,
// at its next Preempt call.
type Clock struct {
	d       *Dispatcher
	sources []*source
	now     time.Duration
}

func NewClock(d *Dispatcher) *Clock {
	return &Clock{d: d}
}

// Every raises line once per period, first at now+period.
func (c *Clock) Every(line Line, period time.Duration) error {
	if period <= 0 {
		return ErrBadPeriod
	}
	c.sources = append(c.sources, &source{line: line, period: period, next: c.now + period})
	return nil
}

// Advance moves the clock forward by dt, servicing every interrupt that
// comes due on the way.
func (c *Clock) Advance(dt time.Duration) {
	end := c.now + dt
	for {
		at, ok := c.nextEvent()
		if !ok || at > end {
			break
		}
		c.now = at
		for _, s := range c.sources {
			if s.next == at {
				c.d.Pend(s.line)
				s.next += s.period
			}
		}
		c.d.Service()
	}
	c.now = end
}

// Now is the elapsed virtual time.
func (c *Clock) Now() time.Duration {
	return c.now
}

func (c *Clock) nextEvent() (time.Duration, bool) {
	if len(c.sources) == 0 {
		return 0, false
	}
	at := c.sources[0].next
	for _, s := range c.sources[1:] {
		if s.next < at {
			at = s.next
		}
	}
	return at, true
}
