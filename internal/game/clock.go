package game

import "time"

// Clock supplies monotonic wall time in milliseconds. The engine never reads
// time.Now directly so tests can drive the simulation with a manual clock.
type Clock interface {
	NowMillis() int64
}

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock backed by the runtime's monotonic clock.
func NewSystemClock() Clock {
	return systemClock{start: time.Now()}
}

func (c systemClock) NowMillis() int64 {
	return time.Since(c.start).Milliseconds()
}
