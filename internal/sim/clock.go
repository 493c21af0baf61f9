package sim

import "time"

const (
	DefaultTickRate     = 60
	DefaultMaxFrameTick = 5
)

// Clock turns variable frame times into a whole number of fixed ticks.
// Leftover time carries into the next frame; a long stall is capped at
// MaxTicks so the train never teleports after a hitch.
type Clock struct {
	Rate     int
	MaxTicks int

	step  time.Duration
	accum time.Duration
}

func NewClock(rate, maxTicks int) *Clock {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	if maxTicks <= 0 {
		maxTicks = DefaultMaxFrameTick
	}
	return &Clock{
		Rate:     rate,
		MaxTicks: maxTicks,
		step:     time.Second / time.Duration(rate),
	}
}

// Step is the duration of one tick.
func (c *Clock) Step() time.Duration { return c.step }

// Advance adds elapsed frame time and returns how many ticks to run.
func (c *Clock) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	c.accum += elapsed
	n := int(c.accum / c.step)
	if n > c.MaxTicks {
		n = c.MaxTicks
		c.accum = 0
		return n
	}
	c.accum -= time.Duration(n) * c.step
	return n
}

// Alpha is how far the accumulator is into the next tick, in [0, 1).
func (c *Clock) Alpha() float64 {
	return float64(c.accum) / float64(c.step)
}
