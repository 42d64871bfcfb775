package game

import "math"

// TouchdownThresholds defines the landing envelope.
// A contact inside the safe limits is a clean landing; anything reaching a destroy
// limit is fatal at contact. SettleSeconds <= 0 resolves every landing at contact.
type TouchdownThresholds struct {
	SafeVertical      float64 // m/s
	SafeHorizontal    float64 // m/s
	SafeTilt          float64 // degrees
	DestroyVertical   float64 // m/s
	DestroyHorizontal float64 // m/s
	DestroyMagnitude  float64 // m/s, combined speed
	UprightLimit      float64 // degrees tolerated while settling
	SettleSeconds     float64
}

// DefaultTouchdownThresholds returns the stock landing envelope.
func DefaultTouchdownThresholds() TouchdownThresholds {
	return TouchdownThresholds{
		SafeVertical:      DefaultSafeVertical,
		SafeHorizontal:    DefaultSafeHorizontal,
		SafeTilt:          DefaultSafeTilt,
		DestroyVertical:   DefaultDestroyVertical,
		DestroyHorizontal: DefaultDestroyHorizontal,
		DestroyMagnitude:  DefaultDestroyMagnitude,
		UprightLimit:      DefaultUprightLimit,
		SettleSeconds:     DefaultSettleSeconds,
	}
}

// SanitizeTouchdownThresholds replaces invalid values with defaults and keeps the
// destroy limits at or above the safe limits.
func SanitizeTouchdownThresholds(t TouchdownThresholds) TouchdownThresholds {
	d := DefaultTouchdownThresholds()
	positive := func(v, fallback float64) float64 {
		v = finite(v, fallback)
		if v <= 0 {
			return fallback
		}
		return v
	}
	out := TouchdownThresholds{
		SafeVertical:      positive(t.SafeVertical, d.SafeVertical),
		SafeHorizontal:    positive(t.SafeHorizontal, d.SafeHorizontal),
		SafeTilt:          positive(t.SafeTilt, d.SafeTilt),
		DestroyVertical:   positive(t.DestroyVertical, d.DestroyVertical),
		DestroyHorizontal: positive(t.DestroyHorizontal, d.DestroyHorizontal),
		DestroyMagnitude:  positive(t.DestroyMagnitude, d.DestroyMagnitude),
		UprightLimit:      positive(t.UprightLimit, d.UprightLimit),
		SettleSeconds:     finite(t.SettleSeconds, d.SettleSeconds),
	}
	if out.SettleSeconds < 0 {
		out.SettleSeconds = d.SettleSeconds
	}
	out.DestroyVertical = math.Max(out.DestroyVertical, out.SafeVertical)
	out.DestroyHorizontal = math.Max(out.DestroyHorizontal, out.SafeHorizontal)
	out.UprightLimit = math.Max(out.UprightLimit, out.SafeTilt)
	return out
}

// TouchdownEvent is the landing state captured at contact.
type TouchdownEvent struct {
	VerticalSpeed   float64 `json:"vertical_speed"`
	HorizontalSpeed float64 `json:"horizontal_speed"`
	CombinedSpeed   float64 `json:"combined_speed"`
	Tilt            float64 `json:"tilt"`
	ZoneID          string  `json:"zone_id,omitempty"`
	HullDamageRatio float64 `json:"hull_damage_ratio"`
	Successful      bool    `json:"successful"`
}

// TouchdownOutcome is the verdict class.
type TouchdownOutcome int

const (
	OutcomeSafe TouchdownOutcome = iota + 1
	OutcomeRough
	OutcomeFatal
)

func (o TouchdownOutcome) String() string {
	switch o {
	case OutcomeSafe:
		return "safe"
	case OutcomeRough:
		return "rough"
	case OutcomeFatal:
		return "fatal"
	}
	return "unknown"
}

// Fatal touchdown causes.
const (
	CauseImpact             = "impact_exceeded"
	CauseToppleDuringSettle = "topple_during_settle"
	CauseHardLanding        = "hard_landing"
)

// TouchdownVerdict is reported exactly once per contact.
type TouchdownVerdict struct {
	Outcome TouchdownOutcome
	Cause   string
	Event   TouchdownEvent
}

// ClassifierState tracks the contact lifecycle.
type ClassifierState int

const (
	ClassifierAirborne ClassifierState = iota
	ClassifierSettlePending
	ClassifierResolved
)

// TouchdownClassifier turns contacts into verdicts. The settle window is a polled
// counter advanced by Tick, so there is no blocking wait.
type TouchdownClassifier struct {
	thresholds TouchdownThresholds

	state         ClassifierState
	snapshot      TouchdownEvent
	settleElapsed float64
	settleFailed  bool
	destroyed     bool
}

func NewTouchdownClassifier(t TouchdownThresholds) *TouchdownClassifier {
	return &TouchdownClassifier{thresholds: SanitizeTouchdownThresholds(t)}
}

func (c *TouchdownClassifier) State() ClassifierState { return c.state }

// Ready reports whether the next contact would be judged.
func (c *TouchdownClassifier) Ready() bool { return c.state == ClassifierAirborne && !c.destroyed }

// Destroyed is sticky for the attempt.
func (c *TouchdownClassifier) Destroyed() bool { return c.destroyed }

func (c *TouchdownClassifier) Thresholds() TouchdownThresholds { return c.thresholds }

// Reset returns a resolved classifier to airborne so another contact can be judged.
// A destroyed lander stays resolved.
func (c *TouchdownClassifier) Reset() {
	if c.destroyed {
		return
	}
	c.state = ClassifierAirborne
	c.snapshot = TouchdownEvent{}
	c.settleElapsed = 0
	c.settleFailed = false
}

// Snapshot scores a contact without changing classifier state.
func (c *TouchdownClassifier) Snapshot(ev TouchdownEvent) TouchdownEvent {
	t := c.thresholds
	if ev.CombinedSpeed <= 0 {
		ev.CombinedSpeed = math.Hypot(ev.VerticalSpeed, ev.HorizontalSpeed)
	}
	ev.Successful = ev.VerticalSpeed <= t.SafeVertical &&
		ev.HorizontalSpeed <= t.SafeHorizontal &&
		ev.Tilt <= t.SafeTilt
	ev.HullDamageRatio = 0
	if !ev.Successful {
		excess := math.Max(0, math.Max(ev.VerticalSpeed-t.SafeVertical, ev.HorizontalSpeed-t.SafeHorizontal))
		ev.HullDamageRatio = Clamp(excess/math.Max(t.DestroyVertical, 1), 0, 1)
	}
	return ev
}

func (c *TouchdownClassifier) exceedsDestroy(ev TouchdownEvent) bool {
	t := c.thresholds
	return ev.VerticalSpeed >= t.DestroyVertical ||
		ev.HorizontalSpeed >= t.DestroyHorizontal ||
		ev.CombinedSpeed >= t.DestroyMagnitude
}

// Contact starts judging a touchdown. Speeds are magnitudes. It returns a verdict
// immediately for fatal impacts and for the instant-resolution variant; otherwise
// the classifier enters the settle window and Tick produces the verdict.
func (c *TouchdownClassifier) Contact(ev TouchdownEvent) (TouchdownVerdict, bool) {
	if c.state != ClassifierAirborne || c.destroyed {
		return TouchdownVerdict{}, false
	}
	ev.VerticalSpeed = math.Abs(finite(ev.VerticalSpeed, 0))
	ev.HorizontalSpeed = math.Abs(finite(ev.HorizontalSpeed, 0))
	ev.CombinedSpeed = math.Abs(finite(ev.CombinedSpeed, 0))
	ev.Tilt = math.Abs(finite(ev.Tilt, 0))
	snap := c.Snapshot(ev)

	if c.exceedsDestroy(snap) {
		snap.Successful = false
		snap.HullDamageRatio = 1
		return c.resolve(TouchdownVerdict{Outcome: OutcomeFatal, Cause: CauseImpact, Event: snap}), true
	}

	c.snapshot = snap
	c.settleElapsed = 0
	// the window opens at contact, so the contact attitude counts toward it
	c.settleFailed = snap.Tilt > c.thresholds.UprightLimit
	if c.thresholds.SettleSeconds <= 0 {
		return c.resolve(c.settleVerdict()), true
	}
	c.state = ClassifierSettlePending
	return TouchdownVerdict{}, false
}

// ObserveTilt records attitude during the settle window.
func (c *TouchdownClassifier) ObserveTilt(tilt float64) {
	if c.state != ClassifierSettlePending {
		return
	}
	if math.Abs(finite(tilt, 0)) > c.thresholds.UprightLimit {
		c.settleFailed = true
	}
}

// Tick advances the settle window by dt seconds of physics time.
func (c *TouchdownClassifier) Tick(dt float64) (TouchdownVerdict, bool) {
	if c.state != ClassifierSettlePending {
		return TouchdownVerdict{}, false
	}
	if dt > 0 {
		c.settleElapsed += dt
	}
	if c.settleElapsed+speedEpsilon < c.thresholds.SettleSeconds {
		return TouchdownVerdict{}, false
	}
	return c.resolve(c.settleVerdict()), true
}

func (c *TouchdownClassifier) settleVerdict() TouchdownVerdict {
	snap := c.snapshot
	switch {
	case c.settleFailed:
		snap.Successful = false
		return TouchdownVerdict{Outcome: OutcomeFatal, Cause: CauseToppleDuringSettle, Event: snap}
	case snap.Successful:
		return TouchdownVerdict{Outcome: OutcomeSafe, Event: snap}
	case snap.HullDamageRatio >= 1:
		return TouchdownVerdict{Outcome: OutcomeFatal, Cause: CauseHardLanding, Event: snap}
	default:
		return TouchdownVerdict{Outcome: OutcomeRough, Event: snap}
	}
}

func (c *TouchdownClassifier) resolve(v TouchdownVerdict) TouchdownVerdict {
	c.state = ClassifierResolved
	if v.Outcome == OutcomeFatal {
		c.destroyed = true
	}
	return v
}
