package stream

import "time"

// Timer is a repeating frame-delta accumulator that fires once per period.
type Timer struct {
	period  time.Duration
	elapsed time.Duration
}

func NewTimer(period time.Duration) *Timer {
	return &Timer{period: period}
}

// Advance adds delta and reports whether a tick edge was crossed. Surplus
// time carries into the next period; several missed periods collapse into a
// single edge.
func (t *Timer) Advance(delta time.Duration) bool {
	if delta <= 0 || t.period <= 0 {
		return false
	}
	t.elapsed += delta
	if t.elapsed < t.period {
		return false
	}
	t.elapsed %= t.period
	return true
}

func (t *Timer) Period() time.Duration {
	return t.period
}
