package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent timing.
// Less accurate than AdaptiveLimiter but good enough at control rate.
type TickerLimiter struct {
	ticker *time.Ticker
	period time.Duration
}

func NewTickerLimiter(period time.Duration) *TickerLimiter {
	return &TickerLimiter{
		ticker: time.NewTicker(period),
		period: period,
	}
}

func (t *TickerLimiter) Wait() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
}

func (t *TickerLimiter) Period() time.Duration {
	return t.period
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
