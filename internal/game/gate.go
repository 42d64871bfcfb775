package game

import "time"

// GateDecision explains why a touchdown notification was or was not accepted.
type GateDecision int

const (
	GateAccepted GateDecision = iota
	GateDisarmed
	GateConsumed
	GateDebounced
)

func (d GateDecision) String() string {
	switch d {
	case GateAccepted:
		return "accepted"
	case GateDisarmed:
		return "disarmed"
	case GateConsumed:
		return "consumed"
	case GateDebounced:
		return "debounced"
	}
	return "unknown"
}

// TouchdownGate suppresses touchdowns outside descent phases, after the phase's
// touchdown has been consumed, and inside the debounce window of the last
// accepted contact.
type TouchdownGate struct {
	window       time.Duration
	armed        bool
	consumed     bool
	lastAccepted time.Time
}

func NewTouchdownGate(window time.Duration) *TouchdownGate {
	if window <= 0 {
		window = DebounceWindow
	}
	return &TouchdownGate{window: window}
}

// Arm enables the gate for a new phase and clears the consumed flag.
func (g *TouchdownGate) Arm() {
	g.armed = true
	g.consumed = false
}

// Disarm ignores every touchdown until the next Arm.
func (g *TouchdownGate) Disarm() {
	g.armed = false
	g.consumed = false
}

func (g *TouchdownGate) Armed() bool    { return g.armed }
func (g *TouchdownGate) Consumed() bool { return g.consumed }

// MarkConsumed records that the phase's touchdown has been evaluated.
func (g *TouchdownGate) MarkConsumed() {
	g.consumed = true
}

// Accept applies the gate rules in order and records now when accepted.
func (g *TouchdownGate) Accept(now time.Time) GateDecision {
	if !g.armed {
		return GateDisarmed
	}
	if g.consumed {
		return GateConsumed
	}
	if !g.lastAccepted.IsZero() && now.Sub(g.lastAccepted) < g.window {
		return GateDebounced
	}
	g.lastAccepted = now
	return GateAccepted
}

// ApplyTolerance returns a judged copy of ev with speeds divided by mult. The
// authoritative event passed in is never modified.
func ApplyTolerance(ev TouchdownEvent, mult float64) TouchdownEvent {
	mult = finite(mult, DefaultToleranceMult)
	if mult <= 0 {
		mult = DefaultToleranceMult
	}
	judged := ev
	judged.VerticalSpeed /= mult
	judged.HorizontalSpeed /= mult
	judged.CombinedSpeed /= mult
	return judged
}
