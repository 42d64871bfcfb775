package game

import (
	"math"
	"testing"
)

func record(typ ObjectiveType, primary bool, params map[string]any) *ObjectiveRecord {
	return newObjectiveRecord("p1", ObjectiveDescriptor{ID: string(typ), Type: typ, Primary: primary, Params: params})
}

func TestLandingObjectiveAnyZone(t *testing.T) {
	rec := record(ObjectiveLanding, true, map[string]any{"target_zone_id": "any"})
	td := TouchdownEvent{VerticalSpeed: 3, HorizontalSpeed: 2, CombinedSpeed: math.Hypot(3, 2), Tilt: 5, Successful: true}
	eval := EvaluateObjective(rec, EvalPayload{Trigger: TriggerTouchdown, Touchdown: &td})
	if eval.Transition != ToCompleted {
		t.Fatalf("expected landing to complete, got %v", eval.Transition)
	}
	if !ApplyEvaluation(rec, eval) || rec.Status != StatusCompleted {
		t.Fatalf("expected record completed, got %s", rec.Status)
	}
}

func TestLandingObjectiveZoneAndSpeed(t *testing.T) {
	rec := record(ObjectiveLanding, true, map[string]any{"target_zone_id": "pad-a", "max_impact_speed": 5})
	wrongZone := TouchdownEvent{CombinedSpeed: 2, ZoneID: "pad-b", Successful: true}
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerTouchdown, Touchdown: &wrongZone}); e.Transition != NoChange {
		t.Fatalf("expected wrong zone to leave objective pending")
	}
	tooFast := TouchdownEvent{CombinedSpeed: 6, ZoneID: "PAD-A", Successful: true}
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerTouchdown, Touchdown: &tooFast}); e.Transition != NoChange {
		t.Fatalf("expected impact above max to leave objective pending")
	}
	failed := TouchdownEvent{CombinedSpeed: 1, ZoneID: "pad-a", Successful: false}
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerTouchdown, Touchdown: &failed}); e.Transition != NoChange {
		t.Fatalf("expected unsuccessful touchdown to leave objective pending")
	}
	ok := TouchdownEvent{CombinedSpeed: 5, ZoneID: "pad-a", Successful: true}
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerTouchdown, Touchdown: &ok}); e.Transition != ToCompleted {
		t.Fatalf("expected impact equal to max to pass")
	}
}

func TestLandingObjectiveToleranceMultiplier(t *testing.T) {
	rec := record(ObjectiveLanding, true, map[string]any{"target_zone_id": "any", "max_impact_speed": 30})
	raw := TouchdownEvent{VerticalSpeed: 30, HorizontalSpeed: 29.4, CombinedSpeed: 42, Successful: true}
	judged := ApplyTolerance(raw, 1.4)
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerTouchdown, Touchdown: &judged}); e.Transition != ToCompleted {
		t.Fatalf("expected 42/1.4 to pass a max of 30, judged speed %.15f", judged.CombinedSpeed)
	}
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerTouchdown, Touchdown: &raw}); e.Transition != NoChange {
		t.Fatalf("expected raw 42 to fail a max of 30")
	}
}

func TestReturnToOrbitThreshold(t *testing.T) {
	rec := record(ObjectiveReturnToOrbit, true, nil)
	p := EvalPayload{Trigger: TriggerAltitude, Altitude: 20000}
	if e := EvaluateObjective(rec, p); e.Transition != NoChange {
		t.Fatalf("expected orbit objective to wait for a landing")
	}
	p.Landed = true
	p.Altitude = 1500
	p.SpawnHeight = 3000
	e := EvaluateObjective(rec, p)
	if e.Transition != NoChange || !e.HasProgress || math.Abs(e.Progress-0.5) > 1e-9 {
		t.Fatalf("expected half progress toward spawn height, got %+v", e)
	}
	p.Altitude = 3000
	if e := EvaluateObjective(rec, p); e.Transition != ToCompleted {
		t.Fatalf("expected spawn height to satisfy the objective")
	}

	explicit := record(ObjectiveReturnToOrbit, true, map[string]any{"min_altitude": 500.0})
	if e := EvaluateObjective(explicit, EvalPayload{Trigger: TriggerAltitude, Altitude: 600, Landed: true, SpawnHeight: 3000}); e.Transition != ToCompleted {
		t.Fatalf("expected explicit min_altitude to take precedence")
	}

	fallback := record(ObjectiveReturnToOrbit, true, nil)
	if e := EvaluateObjective(fallback, EvalPayload{Trigger: TriggerAltitude, Altitude: 9999, Landed: true}); e.Transition != NoChange {
		t.Fatalf("expected default threshold of %.0f", DefaultOrbitAltitude)
	}
}

func TestFinalizationObjectives(t *testing.T) {
	rt := MissionRuntimeState{Elapsed: 120, FuelRatio: 0.3, MaxHullDamage: 0.1}
	cases := []struct {
		rec  *ObjectiveRecord
		want Transition
	}{
		{record(ObjectiveTimeUnder, true, map[string]any{"limit_seconds": 180}), ToCompleted},
		{record(ObjectiveTimeUnder, true, map[string]any{"limit_seconds": 60}), ToFailed},
		{record(ObjectiveFuelRemaining, true, map[string]any{"min_ratio": 0.25}), ToCompleted},
		{record(ObjectiveFuelRemaining, true, map[string]any{"min_ratio": "0.5"}), ToFailed},
		{record(ObjectiveNoDamage, true, nil), ToFailed},
		{record(ObjectiveNoDamage, true, map[string]any{"max_damage": 0.2}), ToCompleted},
	}
	for _, tc := range cases {
		e := EvaluateObjective(tc.rec, EvalPayload{Trigger: TriggerFinalization, Runtime: rt})
		if e.Transition != tc.want {
			t.Fatalf("expected %v for %s %v, got %v", tc.want, tc.rec.Type, tc.rec.Params, e.Transition)
		}
	}
}

func TestLiveTriggersNeverFail(t *testing.T) {
	rec := record(ObjectiveReachPOI, true, map[string]any{"target_id": "beacon"})
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerPOIReached, ReachedID: "other"}); e.Transition != NoChange {
		t.Fatalf("expected mismatched poi to leave objective pending")
	}
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerZoneReached, ReachedID: "beacon"}); e.Transition != NoChange {
		t.Fatalf("expected zone trigger to be ignored by a poi objective")
	}
	if e := EvaluateObjective(rec, EvalPayload{Trigger: TriggerPOIReached, ReachedID: "beacon"}); e.Transition != ToCompleted {
		t.Fatalf("expected matching poi to complete")
	}
}

func TestUnknownObjectiveTypeStaysPending(t *testing.T) {
	rec := record(ObjectiveType("collect_samples"), true, nil)
	for _, trig := range []Trigger{TriggerTouchdown, TriggerAltitude, TriggerFinalization, TriggerZoneReached} {
		if e := EvaluateObjective(rec, EvalPayload{Trigger: trig}); e.Transition != NoChange {
			t.Fatalf("expected unknown type to be skipped on %s", trig)
		}
	}
	if KnownObjectiveType(rec.Type) {
		t.Fatalf("expected collect_samples to be unknown")
	}
}

func TestObjectiveStatusIsMonotonic(t *testing.T) {
	rec := record(ObjectiveReachZone, true, map[string]any{"target_id": "z"})
	if !rec.Complete() {
		t.Fatalf("expected pending record to complete")
	}
	if rec.Fail() {
		t.Fatalf("expected completed record to refuse failure")
	}
	if ApplyEvaluation(rec, Evaluation{Transition: ToFailed}) {
		t.Fatalf("expected evaluation on a terminal record to be a no-op")
	}
	if rec.Status != StatusCompleted {
		t.Fatalf("expected status to stay completed, got %s", rec.Status)
	}
}
