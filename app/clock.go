package app

import (
	"time"

	"github.com/petrodao/govledger"
)

// Clock supplies the logical time mutating operations run at. The
// core only compares ticks; what a tick means is decided here.
type Clock interface {
	Tick() govledger.Tick
}

// WallClock maps wall time to ticks at a fixed granularity, one tick
// per granularity unit since the Unix epoch. With the default
// one-minute granularity the standard 1440-tick lock period is one
// day.
type WallClock struct {
	Granularity time.Duration
}

var _ Clock = WallClock{}

func (c WallClock) Tick() govledger.Tick {
	gran := c.Granularity
	if gran <= 0 {
		gran = time.Minute
	}
	return govledger.Tick(time.Now().UnixNano() / int64(gran))
}

// ManualClock is a test clock that returns whatever it is set to.
type ManualClock struct {
	Current govledger.Tick
}

var _ Clock = (*ManualClock)(nil)

func (c *ManualClock) Tick() govledger.Tick {
	return c.Current
}

// Advance moves the clock forward.
func (c *ManualClock) Advance(by govledger.Tick) {
	c.Current += by
}
