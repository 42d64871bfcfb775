package game

import "log"

// PhaseRunner owns the ordered phase list and the objective records of every
// phase entered so far. It arms its touchdown gate only for descent-like phases
// and resets the classifier on each entry.
type PhaseRunner struct {
	phases  []PhaseDescriptor
	index   int
	entered int // number of phases whose records exist
	done    bool

	records [][]*ObjectiveRecord

	gate       *TouchdownGate
	classifier *TouchdownClassifier
	logger     *log.Logger
}

func NewPhaseRunner(phases []PhaseDescriptor, gate *TouchdownGate, classifier *TouchdownClassifier, logger *log.Logger) *PhaseRunner {
	if logger == nil {
		logger = log.Default()
	}
	return &PhaseRunner{
		phases:     phases,
		index:      -1,
		records:    make([][]*ObjectiveRecord, len(phases)),
		gate:       gate,
		classifier: classifier,
		logger:     logger,
	}
}

func (r *PhaseRunner) Index() int                       { return r.index }
func (r *PhaseRunner) Done() bool                       { return r.done }
func (r *PhaseRunner) Len() int                         { return len(r.phases) }
func (r *PhaseRunner) Gate() *TouchdownGate             { return r.gate }
func (r *PhaseRunner) Classifier() *TouchdownClassifier { return r.classifier }

// Current returns the active phase.
func (r *PhaseRunner) Current() (*PhaseDescriptor, bool) {
	if r.done || r.index < 0 || r.index >= len(r.phases) {
		return nil, false
	}
	return &r.phases[r.index], true
}

// Enter makes phase i current and instantiates fresh pending records for it.
func (r *PhaseRunner) Enter(i int) (*PhaseDescriptor, bool) {
	if i < 0 || i >= len(r.phases) {
		return nil, false
	}
	r.index = i
	phase := &r.phases[i]
	r.records[i] = r.instantiate(*phase)
	if i+1 > r.entered {
		r.entered = i + 1
	}
	r.classifier.Reset()
	if IsDescentLike(*phase) {
		r.gate.Arm()
	} else {
		r.gate.Disarm()
	}
	return phase, true
}

func (r *PhaseRunner) instantiate(phase PhaseDescriptor) []*ObjectiveRecord {
	out := make([]*ObjectiveRecord, 0, len(phase.Objectives))
	for _, d := range phase.Objectives {
		rec := newObjectiveRecord(phase.ID, d)
		if !KnownObjectiveType(rec.Type) {
			r.logger.Printf("phase %s: objective %s has unknown type %q, it will stay pending", phase.ID, rec.ID, rec.Type)
		}
		out = append(out, rec)
	}
	return out
}

// Advance moves to the next phase. It returns the new phase, or false when the
// list is exhausted and the runner is done.
func (r *PhaseRunner) Advance() (*PhaseDescriptor, bool) {
	if r.done {
		return nil, false
	}
	next := r.index + 1
	if next >= len(r.phases) {
		r.done = true
		r.gate.Disarm()
		return nil, false
	}
	return r.Enter(next)
}

// CurrentRecords returns the records of the active phase.
func (r *PhaseRunner) CurrentRecords() []*ObjectiveRecord {
	if r.index < 0 || r.index >= len(r.records) {
		return nil
	}
	return r.records[r.index]
}

// Records returns every instantiated record in phase order.
func (r *PhaseRunner) Records() []*ObjectiveRecord {
	var out []*ObjectiveRecord
	for _, recs := range r.records {
		out = append(out, recs...)
	}
	return out
}

// MaterializeRemaining instantiates pending records for phases never entered so
// the end-of-mission sweep covers the full objective set.
func (r *PhaseRunner) MaterializeRemaining() {
	for i := r.entered; i < len(r.phases); i++ {
		r.records[i] = r.instantiate(r.phases[i])
	}
	r.entered = len(r.phases)
}

// LandingSatisfies reports whether a safe touchdown in zoneID completes the
// current phase's landed_in_zone rule.
func (r *PhaseRunner) LandingSatisfies(zoneID string) bool {
	phase, ok := r.Current()
	if !ok || phase.Completion.Type != RuleLandedInZone {
		return false
	}
	return zoneMatches(phase.Completion.ZoneID, zoneID)
}

// OrbitSatisfies reports whether reaching orbit completes the current phase.
func (r *PhaseRunner) OrbitSatisfies() bool {
	phase, ok := r.Current()
	return ok && phase.Completion.Type == RuleReachOrbit
}

// ObjectivesSatisfy reports whether the current phase advances on its own
// objectives: legacy and objectives_complete rules with every live primary
// completed. A descent phase without live primaries advances on its safe landing.
func (r *PhaseRunner) ObjectivesSatisfy() bool {
	phase, ok := r.Current()
	if !ok {
		return false
	}
	if phase.Completion.Type != RuleLegacy && phase.Completion.Type != RuleObjectivesComplete {
		return false
	}
	live, completed := livePrimaryCounts(r.CurrentRecords())
	if live == 0 {
		return IsDescentLike(*phase) && r.gate.Consumed()
	}
	return live == completed
}

// AwaitingExternal reports whether the current phase is driven by an outside orchestrator.
func (r *PhaseRunner) AwaitingExternal() bool {
	phase, ok := r.Current()
	return ok && phase.Completion.Type == RuleExternal
}

// livePrimaryCounts ignores finalization-only objectives, which are settled by the
// end-of-mission sweep.
func livePrimaryCounts(records []*ObjectiveRecord) (live, completed int) {
	for _, rec := range records {
		if !rec.Primary || IsFinalizationType(rec.Type) {
			continue
		}
		live++
		if rec.Status == StatusCompleted {
			completed++
		}
	}
	return live, completed
}
