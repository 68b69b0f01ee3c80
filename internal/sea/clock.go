package sea

import "github.com/go-gl/mathgl/mgl32"

// InverseTimeSentinel stands in for 1/t while t is zero.
const InverseTimeSentinel float32 = 1e6

// TimeVector packs the derived time channels (t, 2t, 3t, 1/t).
type TimeVector = mgl32.Vec4

// NewTimeVector derives the channels from t. The inverse channel is the
// sentinel for t <= 0 so no non-finite value reaches shared state.
func NewTimeVector(t float32) TimeVector {
	inv := InverseTimeSentinel
	if t > 0 {
		inv = 1 / t
	}
	return TimeVector{t, 2 * t, 3 * t, inv}
}

// ClockState is the run state of the simulation clock.
type ClockState int

const (
	Running ClockState = iota
	Paused
)

func (s ClockState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Clock accumulates simulation time. Pause and Resume are requests; they take
// effect at the start of the next Advance.
type Clock struct {
	elapsed    float64
	state      ClockState
	pending    ClockState
	hasPending bool
}

// NewClock returns a clock at t=0 in the given state.
func NewClock(initial ClockState) *Clock {
	return &Clock{state: initial}
}

func (c *Clock) Pause()  { c.request(Paused) }
func (c *Clock) Resume() { c.request(Running) }

func (c *Clock) request(s ClockState) {
	c.pending = s
	c.hasPending = true
}

// Advance starts a new tick: it applies any pending transition, then moves
// time forward by dt if running. It reports whether the tick is live.
// Negative deltas are ignored.
func (c *Clock) Advance(dt float64) bool {
	if c.hasPending {
		c.state = c.pending
		c.hasPending = false
	}
	if c.state == Paused {
		return false
	}
	if dt > 0 {
		c.elapsed += dt
	}
	return true
}

// State returns the state in effect for the current tick.
func (c *Clock) State() ClockState {
	return c.state
}

func (c *Clock) Elapsed() float32 {
	return float32(c.elapsed)
}

func (c *Clock) TimeVector() TimeVector {
	return NewTimeVector(c.Elapsed())
}
