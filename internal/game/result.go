package game

import "time"

// SuccessState is the overall classification of a finished attempt.
type SuccessState string

const (
	SuccessStateSuccess SuccessState = "success"
	SuccessStatePartial SuccessState = "partial"
	SuccessStateFail    SuccessState = "fail"
)

// ObjectiveOutcome is the frozen view of an ObjectiveRecord at result time.
type ObjectiveOutcome struct {
	ID          string          `json:"id"`
	Type        ObjectiveType   `json:"type"`
	PhaseID     string          `json:"phase_id,omitempty"`
	Primary     bool            `json:"is_primary"`
	Description string          `json:"description,omitempty"`
	Status      ObjectiveStatus `json:"status"`
	Progress    float64         `json:"progress"`
}

func outcomeOf(r *ObjectiveRecord) ObjectiveOutcome {
	return ObjectiveOutcome{
		ID:          r.ID,
		Type:        r.Type,
		PhaseID:     r.PhaseID,
		Primary:     r.Primary,
		Description: r.Description,
		Status:      r.Status,
		Progress:    r.Progress,
	}
}

// MissionStats is the telemetry summary attached to a result.
type MissionStats struct {
	Elapsed         float64 `json:"elapsed"`
	FuelRatio       float64 `json:"fuel_ratio"`
	MaxHullDamage   float64 `json:"max_hull_damage"`
	CrashCount      int     `json:"crash_count"`
	TouchdownCount  int     `json:"touchdown_count"`
	PhasesCompleted int     `json:"phases_completed"`
	Destroyed       bool    `json:"destroyed"`
	DestroyCause    string  `json:"destroy_cause,omitempty"`
	PlayerDied      bool    `json:"player_died"`
	DeathCause      string  `json:"death_cause,omitempty"`
	OrbitReached    bool    `json:"orbit_reached"`
	OrbitAltitude   float64 `json:"orbit_altitude,omitempty"`
	OrbitTime       float64 `json:"orbit_time,omitempty"`
}

// RewardRef points the reward collaborator at the tier earned. Grant is nil when
// the mission failed or the config defines no tier for the state.
type RewardRef struct {
	MissionID string       `json:"mission_id"`
	Tier      SuccessState `json:"tier"`
	Grant     *RewardTier  `json:"grant,omitempty"`
}

// MissionResult is built once per attempt and never modified afterwards.
type MissionResult struct {
	MissionID     string             `json:"mission_id"`
	AttemptID     string             `json:"attempt_id"`
	SuccessState  SuccessState       `json:"success_state"`
	FailureReason string             `json:"failure_reason,omitempty"`
	Objectives    []ObjectiveOutcome `json:"objectives"`
	Stats         MissionStats       `json:"stats"`
	Reward        *RewardRef         `json:"reward,omitempty"`
	FinishedAt    time.Time          `json:"finished_at"`
}

// Clone returns a deep copy so callers cannot reach the stored result.
func (r MissionResult) Clone() MissionResult {
	out := r
	out.Objectives = append([]ObjectiveOutcome(nil), r.Objectives...)
	if r.Reward != nil {
		ref := *r.Reward
		ref.Grant = copyTier(r.Reward.Grant)
		out.Reward = &ref
	}
	return out
}

// PrimariesCompleted reports whether every primary objective completed.
func (r MissionResult) PrimariesCompleted() bool {
	for _, o := range r.Objectives {
		if o.Primary && o.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// finalizeOutcome runs the end-of-mission sweep over records and classifies the
// attempt. The sweep evaluates finalization objectives, then forces any primary
// still pending to failed. A success that loses a primary during the sweep is
// downgraded to partial; the caller keeps its original failure reason.
func finalizeOutcome(records []*ObjectiveRecord, p EvalPayload, state SuccessState) (SuccessState, []*ObjectiveRecord) {
	p.Trigger = TriggerFinalization
	var changed []*ObjectiveRecord
	sweptFailure := false

	for _, rec := range records {
		if !rec.Pending() || !IsFinalizationType(rec.Type) {
			continue
		}
		if ApplyEvaluation(rec, EvaluateObjective(rec, p)) {
			changed = append(changed, rec)
			if rec.Primary && rec.Status == StatusFailed {
				sweptFailure = true
			}
		}
	}
	if forced := forcePendingPrimaries(records); len(forced) > 0 {
		changed = append(changed, forced...)
		sweptFailure = true
	}

	if state == SuccessStateSuccess && (sweptFailure || !primariesCompleted(records)) {
		state = SuccessStatePartial
	}
	return state, changed
}

func primariesCompleted(records []*ObjectiveRecord) bool {
	for _, rec := range records {
		if rec.Primary && rec.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// forcePendingPrimaries fails every pending primary and returns the records changed.
func forcePendingPrimaries(records []*ObjectiveRecord) []*ObjectiveRecord {
	var changed []*ObjectiveRecord
	for _, rec := range records {
		if rec.Primary && rec.Fail() {
			changed = append(changed, rec)
		}
	}
	return changed
}

func buildResult(cfg *MissionConfig, attemptID string, state SuccessState, reason string, records []*ObjectiveRecord, stats MissionStats, now time.Time) MissionResult {
	res := MissionResult{
		AttemptID:     attemptID,
		SuccessState:  state,
		FailureReason: reason,
		Objectives:    make([]ObjectiveOutcome, 0, len(records)),
		Stats:         stats,
		FinishedAt:    now,
	}
	for _, rec := range records {
		res.Objectives = append(res.Objectives, outcomeOf(rec))
	}
	if cfg != nil {
		res.MissionID = cfg.ID
		res.Reward = &RewardRef{MissionID: cfg.ID, Tier: state, Grant: cfg.RewardFor(state)}
	}
	return res
}
