package game

import "strings"

// ObjectiveType names one of the evaluator rules.
type ObjectiveType string

const (
	ObjectiveLanding        ObjectiveType = "landing"
	ObjectiveReturnToOrbit  ObjectiveType = "return_to_orbit"
	ObjectiveTimeUnder      ObjectiveType = "time_under"
	ObjectiveFuelRemaining  ObjectiveType = "fuel_remaining"
	ObjectiveNoDamage       ObjectiveType = "no_damage"
	ObjectiveReachZone      ObjectiveType = "reach_zone"
	ObjectiveReachPOI       ObjectiveType = "reach_poi"
	ObjectiveRescueInteract ObjectiveType = "rescue_interact"
)

// ObjectiveStatus only ever moves away from pending.
type ObjectiveStatus string

const (
	StatusPending   ObjectiveStatus = "pending"
	StatusCompleted ObjectiveStatus = "completed"
	StatusFailed    ObjectiveStatus = "failed"
)

// Trigger identifies the kind of payload an objective is evaluated against.
type Trigger string

const (
	TriggerTouchdown    Trigger = "touchdown"
	TriggerAltitude     Trigger = "altitude"
	TriggerFinalization Trigger = "finalization"
	TriggerZoneReached  Trigger = "zone_reached"
	TriggerPOIReached   Trigger = "poi_reached"
	TriggerInteraction  Trigger = "interaction_completed"
)

// ObjectiveRecord is the per-attempt runtime copy of an ObjectiveDescriptor.
type ObjectiveRecord struct {
	ID          string
	Type        ObjectiveType
	Primary     bool
	PhaseID     string
	Description string
	Params      map[string]any
	Status      ObjectiveStatus
	Progress    float64 // 0..1
}

func newObjectiveRecord(phaseID string, d ObjectiveDescriptor) *ObjectiveRecord {
	return &ObjectiveRecord{
		ID:          d.ID,
		Type:        ObjectiveType(strings.ToLower(strings.TrimSpace(string(d.Type)))),
		Primary:     d.Primary,
		PhaseID:     phaseID,
		Description: d.Description,
		Params:      copyParams(d.Params),
		Status:      StatusPending,
	}
}

// Pending reports whether the record can still transition.
func (r *ObjectiveRecord) Pending() bool {
	return r != nil && r.Status == StatusPending
}

// Complete moves a pending record to completed. Returns false if already terminal.
func (r *ObjectiveRecord) Complete() bool {
	if !r.Pending() {
		return false
	}
	r.Status = StatusCompleted
	r.Progress = 1
	return true
}

// Fail moves a pending record to failed. Returns false if already terminal.
func (r *ObjectiveRecord) Fail() bool {
	if !r.Pending() {
		return false
	}
	r.Status = StatusFailed
	return true
}

// EvalPayload carries everything a rule may look at.
type EvalPayload struct {
	Trigger     Trigger
	Touchdown   *TouchdownEvent // judged copy, tolerance applied
	Altitude    float64
	Landed      bool
	ReachedID   string
	Runtime     MissionRuntimeState
	SpawnHeight float64
}

// Transition is the result of evaluating one record.
type Transition int

const (
	NoChange Transition = iota
	ToCompleted
	ToFailed
)

// Evaluation is returned by EvaluateObjective. Progress is only meaningful when
// HasProgress is set.
type Evaluation struct {
	Transition  Transition
	Progress    float64
	HasProgress bool
}

type objectiveRule struct {
	trigger Trigger
	// pass returns whether the rule is satisfied and an optional progress value.
	pass func(r *ObjectiveRecord, p EvalPayload) (bool, float64, bool)
}

var objectiveRules = map[ObjectiveType]objectiveRule{
	ObjectiveLanding: {
		trigger: TriggerTouchdown,
		pass: func(r *ObjectiveRecord, p EvalPayload) (bool, float64, bool) {
			td := p.Touchdown
			if td == nil || !td.Successful {
				return false, 0, false
			}
			target, _ := stringFromParam(r.Params["target_zone_id"])
			if !zoneMatches(target, td.ZoneID) {
				return false, 0, false
			}
			max, _ := floatFromParam(r.Params["max_impact_speed"])
			if max > 0 && td.CombinedSpeed > max+speedEpsilon {
				return false, 0, false
			}
			return true, 1, true
		},
	},
	ObjectiveReturnToOrbit: {
		trigger: TriggerAltitude,
		pass: func(r *ObjectiveRecord, p EvalPayload) (bool, float64, bool) {
			if !p.Landed {
				return false, 0, false
			}
			required := orbitThreshold(r, p.SpawnHeight)
			progress := Clamp(p.Altitude/required, 0, 1)
			return p.Altitude >= required, progress, true
		},
	},
	ObjectiveTimeUnder: {
		trigger: TriggerFinalization,
		pass: func(r *ObjectiveRecord, p EvalPayload) (bool, float64, bool) {
			limit, ok := floatFromParam(r.Params["limit_seconds"])
			if !ok {
				return false, 0, false
			}
			return p.Runtime.Elapsed <= limit, 0, false
		},
	},
	ObjectiveFuelRemaining: {
		trigger: TriggerFinalization,
		pass: func(r *ObjectiveRecord, p EvalPayload) (bool, float64, bool) {
			min, _ := floatFromParam(r.Params["min_ratio"])
			return p.Runtime.FuelRatio >= min, 0, false
		},
	},
	ObjectiveNoDamage: {
		trigger: TriggerFinalization,
		pass: func(r *ObjectiveRecord, p EvalPayload) (bool, float64, bool) {
			max, _ := floatFromParam(r.Params["max_damage"])
			return p.Runtime.MaxHullDamage <= max, 0, false
		},
	},
	ObjectiveReachZone: {
		trigger: TriggerZoneReached,
		pass:    matchTarget,
	},
	ObjectiveReachPOI: {
		trigger: TriggerPOIReached,
		pass:    matchTarget,
	},
	ObjectiveRescueInteract: {
		trigger: TriggerInteraction,
		pass:    matchTarget,
	},
}

func matchTarget(r *ObjectiveRecord, p EvalPayload) (bool, float64, bool) {
	target, _ := stringFromParam(r.Params["target_id"])
	if target == "" || p.ReachedID == "" {
		return false, 0, false
	}
	return target == p.ReachedID, 0, false
}

// orbitThreshold resolves the required altitude: explicit param, then the mission
// spawn height, then DefaultOrbitAltitude.
func orbitThreshold(r *ObjectiveRecord, spawnHeight float64) float64 {
	if v, ok := floatFromParam(r.Params["min_altitude"]); ok && v > 0 {
		return v
	}
	if spawnHeight > 0 {
		return spawnHeight
	}
	return DefaultOrbitAltitude
}

// KnownObjectiveType reports whether a rule exists for t.
func KnownObjectiveType(t ObjectiveType) bool {
	_, ok := objectiveRules[t]
	return ok
}

// IsFinalizationType reports whether t is only evaluated by the end-of-mission sweep.
func IsFinalizationType(t ObjectiveType) bool {
	rule, ok := objectiveRules[t]
	return ok && rule.trigger == TriggerFinalization
}

// EvaluateObjective is pure: it inspects r and p and reports the transition to
// apply. Only pending records with a matching trigger can change. Live triggers
// never fail an objective; finalization does.
func EvaluateObjective(r *ObjectiveRecord, p EvalPayload) Evaluation {
	if !r.Pending() {
		return Evaluation{}
	}
	rule, ok := objectiveRules[r.Type]
	if !ok || rule.trigger != p.Trigger {
		return Evaluation{}
	}
	passed, progress, hasProgress := rule.pass(r, p)
	eval := Evaluation{Progress: progress, HasProgress: hasProgress}
	switch {
	case passed:
		eval.Transition = ToCompleted
	case p.Trigger == TriggerFinalization:
		eval.Transition = ToFailed
	}
	return eval
}

// ApplyEvaluation mutates r according to e and reports whether the status changed.
func ApplyEvaluation(r *ObjectiveRecord, e Evaluation) bool {
	if r == nil {
		return false
	}
	if e.HasProgress && r.Pending() {
		r.Progress = Clamp(e.Progress, 0, 1)
	}
	switch e.Transition {
	case ToCompleted:
		return r.Complete()
	case ToFailed:
		return r.Fail()
	}
	return false
}
