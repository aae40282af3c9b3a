package frame

import "time"

type gateState int

const (
	stateUnstable gateState = iota
	stateStabilizing
	stateStableReady
)

// StabilityGate classifies incoming frames as changed or stable and
// emits a frame to the rest of the pipeline only after it has held
// steady for at least StabilityDelay. It is owned exclusively by the
// driver goroutine and is not safe for concurrent use.
type StabilityGate struct {
	stride      int
	tolerance   int
	cutoffPct   int
	delay       time.Duration

	state       gateState
	prev        *Frame
	stableSince time.Time
}

// NewStabilityGate constructs a gate with the given similarity stride
// (byte step across the row-major buffer), per-channel tolerance,
// difference-ratio cutoff percentage, and minimum stable dwell.
func NewStabilityGate(stride, tolerance, cutoffPct int, delay time.Duration) *StabilityGate {
	if stride <= 0 {
		stride = 750
	}
	return &StabilityGate{
		stride:    stride,
		tolerance: tolerance,
		cutoffPct: cutoffPct,
		delay:     delay,
		state:     stateUnstable,
	}
}

// Feed advances the state machine with a newly captured frame and
// reports whether this tick should emit it downstream. now is passed
// in rather than read internally so tests can drive the clock.
func (g *StabilityGate) Feed(f *Frame, now time.Time) (emit bool, out *Frame) {
	similar := g.prev != nil && similarFrames(g.prev, f, g.stride, g.tolerance, g.cutoffPct)

	if g.state == stateUnstable {
		if similar {
			g.stableSince = now
			g.state = stateStabilizing
		}
	}

	// No else: a frame that just transitioned Unstable->Stabilizing above
	// must still have its dwell checked in this same call, or emission
	// would always need one extra Feed call beyond STABILITY_DELAY.
	if g.state == stateStabilizing {
		if similar {
			if now.Sub(g.stableSince) >= g.delay {
				g.state = stateStableReady
				emit = true
				out = f
			}
		} else {
			g.state = stateUnstable
		}
	} else if g.state == stateStableReady {
		if !similar {
			g.state = stateUnstable
		}
	}

	if !similar {
		g.prev = f
	}
	return emit, out
}

// Reset forces the gate back to its initial Unstable state, discarding
// the previous frame. The Textbox Deduper calls this after forwarding a
// snapshot so that a subsequent in-place text change (same rectangle,
// new page) is treated as a fresh stabilization run.
func (g *StabilityGate) Reset() {
	g.state = stateUnstable
	g.prev = nil
}

// similarFrames implements the sampled pixel comparison from the spec:
// a stride walk across the row-major buffer, a per-channel tolerance,
// and a difference-ratio cutoff.
func similarFrames(a, b *Frame, stride, tolerance, cutoffPct int) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	n := len(a.Pix)
	if n == 0 {
		return true
	}
	sampled, differing := 0, 0
	for i := 0; i+2 < n; i += stride {
		sampled++
		if absDiff(a.Pix[i], b.Pix[i]) > tolerance ||
			absDiff(a.Pix[i+1], b.Pix[i+1]) > tolerance ||
			absDiff(a.Pix[i+2], b.Pix[i+2]) > tolerance {
			differing++
		}
	}
	if sampled == 0 {
		return true
	}
	return differing*100 < cutoffPct*sampled
}

func absDiff(x, y byte) int {
	if x > y {
		return int(x - y)
	}
	return int(y - x)
}
