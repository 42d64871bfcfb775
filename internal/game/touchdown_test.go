package game

import (
	"math"
	"testing"
)

func TestClassifierSafeLandingAfterSettle(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	if _, ok := c.Contact(TouchdownEvent{VerticalSpeed: 3, HorizontalSpeed: 2, Tilt: 5}); ok {
		t.Fatalf("expected settle window before a verdict")
	}
	if c.State() != ClassifierSettlePending {
		t.Fatalf("expected settle pending, got %v", c.State())
	}
	if _, ok := c.Tick(1.0); ok {
		t.Fatalf("expected no verdict before 1.5s")
	}
	v, ok := c.Tick(0.5)
	if !ok {
		t.Fatalf("expected verdict after settle window")
	}
	if v.Outcome != OutcomeSafe {
		t.Fatalf("expected safe, got %s", v.Outcome)
	}
	if v.Event.HullDamageRatio != 0 {
		t.Fatalf("expected zero damage, got %.3f", v.Event.HullDamageRatio)
	}
	if !v.Event.Successful {
		t.Fatalf("expected successful snapshot")
	}
	if _, ok := c.Tick(1); ok {
		t.Fatalf("expected a single verdict per contact")
	}
}

func TestClassifierFatalAtContact(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	v, ok := c.Contact(TouchdownEvent{VerticalSpeed: 50})
	if !ok {
		t.Fatalf("expected immediate verdict for destroy-level impact")
	}
	if v.Outcome != OutcomeFatal || v.Cause != CauseImpact {
		t.Fatalf("expected fatal impact, got %s/%s", v.Outcome, v.Cause)
	}
	if v.Event.HullDamageRatio != 1 {
		t.Fatalf("expected full damage, got %.3f", v.Event.HullDamageRatio)
	}
	if !c.Destroyed() {
		t.Fatalf("expected classifier to be destroyed")
	}
	c.Reset()
	if _, ok := c.Contact(TouchdownEvent{VerticalSpeed: 1}); ok {
		t.Fatalf("expected destroyed classifier to ignore contacts")
	}
}

func TestClassifierCombinedSpeedDestroys(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	// 35 vertical and 29 horizontal are each below their limits but the magnitude is ~45.5.
	v, ok := c.Contact(TouchdownEvent{VerticalSpeed: 35, HorizontalSpeed: 29})
	if !ok || v.Outcome != OutcomeFatal {
		t.Fatalf("expected fatal on combined speed, got %v/%v", ok, v.Outcome)
	}
}

func TestClassifierBoundaryIsInclusive(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	snap := c.Snapshot(TouchdownEvent{VerticalSpeed: DefaultSafeVertical})
	if !snap.Successful {
		t.Fatalf("expected vertical speed equal to the safe limit to be successful")
	}
}

func TestClassifierRoughLanding(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	c.Contact(TouchdownEvent{VerticalSpeed: 12, HorizontalSpeed: 1})
	v, ok := c.Tick(2)
	if !ok {
		t.Fatalf("expected verdict")
	}
	if v.Outcome != OutcomeRough {
		t.Fatalf("expected rough, got %s", v.Outcome)
	}
	expected := (12.0 - DefaultSafeVertical) / DefaultDestroyVertical
	if math.Abs(v.Event.HullDamageRatio-expected) > 1e-9 {
		t.Fatalf("expected damage %.3f, got %.3f", expected, v.Event.HullDamageRatio)
	}
	if c.Destroyed() {
		t.Fatalf("expected rough landing to leave the vehicle intact")
	}
	c.Reset()
	if c.State() != ClassifierAirborne {
		t.Fatalf("expected reset to airborne, got %v", c.State())
	}
}

func TestClassifierToppleDuringSettle(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	c.Contact(TouchdownEvent{VerticalSpeed: 2, Tilt: 10})
	c.Tick(0.5)
	c.ObserveTilt(75)
	c.ObserveTilt(5)
	v, ok := c.Tick(1)
	if !ok {
		t.Fatalf("expected verdict")
	}
	if v.Outcome != OutcomeFatal || v.Cause != CauseToppleDuringSettle {
		t.Fatalf("expected topple, got %s/%s", v.Outcome, v.Cause)
	}
}

func TestClassifierContactBeyondUprightLimit(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	if _, ok := c.Contact(TouchdownEvent{VerticalSpeed: 2, HorizontalSpeed: 1, Tilt: 85}); ok {
		t.Fatalf("expected settle window before a verdict")
	}
	v, ok := c.Tick(2)
	if !ok {
		t.Fatalf("expected verdict")
	}
	if v.Outcome != OutcomeFatal || v.Cause != CauseToppleDuringSettle {
		t.Fatalf("expected topple from the contact attitude, got %s/%s", v.Outcome, v.Cause)
	}
	if !c.Destroyed() {
		t.Fatalf("expected classifier to be destroyed")
	}

	th := DefaultTouchdownThresholds()
	th.SettleSeconds = 0
	instant := NewTouchdownClassifier(th)
	v, ok = instant.Contact(TouchdownEvent{VerticalSpeed: 2, HorizontalSpeed: 1, Tilt: 89})
	if !ok {
		t.Fatalf("expected instant verdict")
	}
	if v.Outcome != OutcomeFatal || v.Cause != CauseToppleDuringSettle {
		t.Fatalf("expected instant topple, got %s/%s", v.Outcome, v.Cause)
	}

	// tilt past the safe limit but inside the upright limit is only rough
	upright := NewTouchdownClassifier(th)
	if v, _ := upright.Contact(TouchdownEvent{VerticalSpeed: 2, Tilt: DefaultUprightLimit}); v.Outcome != OutcomeRough {
		t.Fatalf("expected rough at the upright limit, got %s", v.Outcome)
	}
}

func TestClassifierHardLanding(t *testing.T) {
	th := DefaultTouchdownThresholds()
	th.DestroyVertical = 10
	th.DestroyMagnitude = 100
	th.DestroyHorizontal = 100
	c := NewTouchdownClassifier(th)
	// horizontal excess of 10 over a vertical destroy limit of 10 saturates damage
	c.Contact(TouchdownEvent{VerticalSpeed: 1, HorizontalSpeed: 13})
	v, ok := c.Tick(th.SettleSeconds)
	if !ok {
		t.Fatalf("expected verdict")
	}
	if v.Outcome != OutcomeFatal || v.Cause != CauseHardLanding {
		t.Fatalf("expected hard landing, got %s/%s", v.Outcome, v.Cause)
	}
}

func TestClassifierInstantResolution(t *testing.T) {
	th := DefaultTouchdownThresholds()
	th.SettleSeconds = 0
	c := NewTouchdownClassifier(th)
	v, ok := c.Contact(TouchdownEvent{VerticalSpeed: 1, HorizontalSpeed: 1, Tilt: 2})
	if !ok || v.Outcome != OutcomeSafe {
		t.Fatalf("expected instant safe verdict, got %v/%v", ok, v.Outcome)
	}
}

func TestSnapshotDamageStaysInRange(t *testing.T) {
	c := NewTouchdownClassifier(DefaultTouchdownThresholds())
	for _, vs := range []float64{0, 3, 4, 4.1, 20, 39, 80, 1e6} {
		for _, hs := range []float64{0, 2.9, 3.1, 25, 1e6} {
			snap := c.Snapshot(TouchdownEvent{VerticalSpeed: vs, HorizontalSpeed: hs})
			if snap.HullDamageRatio < 0 || snap.HullDamageRatio > 1 {
				t.Fatalf("expected damage in [0,1] for %.1f/%.1f, got %.3f", vs, hs, snap.HullDamageRatio)
			}
		}
	}
}

func TestSanitizeTouchdownThresholds(t *testing.T) {
	got := SanitizeTouchdownThresholds(TouchdownThresholds{
		SafeVertical:    math.NaN(),
		SafeHorizontal:  -1,
		DestroyVertical: 2,
		SettleSeconds:   -3,
	})
	d := DefaultTouchdownThresholds()
	if got.SafeVertical != d.SafeVertical {
		t.Fatalf("expected NaN to fall back to %.1f, got %.1f", d.SafeVertical, got.SafeVertical)
	}
	if got.SafeHorizontal != d.SafeHorizontal {
		t.Fatalf("expected negative to fall back to %.1f, got %.1f", d.SafeHorizontal, got.SafeHorizontal)
	}
	if got.DestroyVertical < got.SafeVertical {
		t.Fatalf("expected destroy limit >= safe limit, got %.1f < %.1f", got.DestroyVertical, got.SafeVertical)
	}
	if got.SettleSeconds != d.SettleSeconds {
		t.Fatalf("expected negative settle to fall back, got %.2f", got.SettleSeconds)
	}
}

func TestThresholdOverridesApply(t *testing.T) {
	settle := 0.0
	vertical := 6.0
	bogus := -3.0
	o := &ThresholdOverrides{SafeVertical: &vertical, SettleSeconds: &settle, SafeTilt: &bogus}
	got := o.Apply(DefaultTouchdownThresholds())
	if got.SafeVertical != 6 || got.SettleSeconds != 0 {
		t.Fatalf("expected overrides applied, got %+v", got)
	}
	if got.SafeTilt != DefaultSafeTilt {
		t.Fatalf("expected invalid tilt to fall back to default, got %.1f", got.SafeTilt)
	}
	var none *ThresholdOverrides
	if none.Apply(DefaultTouchdownThresholds()) != DefaultTouchdownThresholds() {
		t.Fatalf("expected nil overrides to keep defaults")
	}
}
