package game

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// MissionState is the engine lifecycle.
type MissionState string

const (
	StateNotStarted MissionState = "not_started"
	StateReady      MissionState = "ready"
	StateRunning    MissionState = "running"
	StatePaused     MissionState = "paused"
	StateCompleted  MissionState = "completed"
	StateFailed     MissionState = "failed"
)

// Terminal reports whether the attempt has ended.
func (s MissionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

var (
	ErrConfigurationMissing = errors.New("game: no mission config available")
	ErrMissionNotReady      = errors.New("game: mission is not ready")
	ErrMissionRunning       = errors.New("game: mission is already running")
	ErrMissionNotRunning    = errors.New("game: mission is not running")
	ErrUnknownPhase         = errors.New("game: phase is not awaiting external completion")
)

// MissionRuntimeState is mutated by the event handlers during an attempt.
type MissionRuntimeState struct {
	Elapsed        float64
	PhaseIndex     int
	FuelRatio      float64
	Altitude       float64
	MaxHullDamage  float64
	CrashCount     int
	TouchdownCount int
	Landed         bool // a safe touchdown happened this attempt
	Destroyed      bool
	DestroyCause   string
	PlayerDied     bool
	DeathCause     string
	OrbitReached   bool
	OrbitAltitude  float64
	OrbitTime      float64
}

func (rt MissionRuntimeState) stats(phasesCompleted int) MissionStats {
	return MissionStats{
		Elapsed:         rt.Elapsed,
		FuelRatio:       rt.FuelRatio,
		MaxHullDamage:   rt.MaxHullDamage,
		CrashCount:      rt.CrashCount,
		TouchdownCount:  rt.TouchdownCount,
		PhasesCompleted: phasesCompleted,
		Destroyed:       rt.Destroyed,
		DestroyCause:    rt.DestroyCause,
		PlayerDied:      rt.PlayerDied,
		DeathCause:      rt.DeathCause,
		OrbitReached:    rt.OrbitReached,
		OrbitAltitude:   rt.OrbitAltitude,
		OrbitTime:       rt.OrbitTime,
	}
}

// MissionOption configures a Mission.
type MissionOption func(*Mission)

// WithClock sets the wall clock used by the touchdown debounce.
func WithClock(now func() time.Time) MissionOption {
	return func(m *Mission) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(l *log.Logger) MissionOption {
	return func(m *Mission) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithThresholds(t TouchdownThresholds) MissionOption {
	return func(m *Mission) { m.thresholds = SanitizeTouchdownThresholds(t) }
}

// WithAutoEnd controls whether the mission ends by itself once every phase is
// done. When disabled the host calls Finish.
func WithAutoEnd(enabled bool) MissionOption {
	return func(m *Mission) { m.autoEnd = enabled }
}

// Mission drives one attempt at a time. It is not safe for concurrent use; the
// owner serializes calls on its game-logic step.
type Mission struct {
	now        func() time.Time
	logger     *log.Logger
	thresholds TouchdownThresholds
	autoEnd    bool

	state     MissionState
	ctx       MissionContext
	cfg       *MissionConfig
	attemptID string

	runtime  MissionRuntimeState
	timer    *MissionTimer
	runner   *PhaseRunner
	bonus    []*ObjectiveRecord
	advanced int // phases completed

	result  *MissionResult
	pending []Notification
}

func NewMission(opts ...MissionOption) *Mission {
	m := &Mission{
		now:        time.Now,
		logger:     log.Default(),
		thresholds: DefaultTouchdownThresholds(),
		autoEnd:    true,
		state:      StateNotStarted,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mission) State() MissionState { return m.state }

func (m *Mission) AttemptID() string { return m.attemptID }

// Config returns the normalized config of the prepared attempt.
func (m *Mission) Config() *MissionConfig { return m.cfg }

func (m *Mission) Runtime() MissionRuntimeState { return m.runtime }

// Timer exposes the attempt's countdown, nil before PrepareMission.
func (m *Mission) Timer() *MissionTimer { return m.timer }

// CurrentPhase returns the active phase while running.
func (m *Mission) CurrentPhase() (PhaseDescriptor, bool) {
	if m.runner == nil {
		return PhaseDescriptor{}, false
	}
	phase, ok := m.runner.Current()
	if !ok {
		return PhaseDescriptor{}, false
	}
	return *phase, true
}

// Objectives snapshots every instantiated objective, bonus objectives last.
func (m *Mission) Objectives() []ObjectiveOutcome {
	records := m.allRecords()
	out := make([]ObjectiveOutcome, 0, len(records))
	for _, rec := range records {
		out = append(out, outcomeOf(rec))
	}
	return out
}

// Result returns a copy of the final result once the attempt has ended.
func (m *Mission) Result() (MissionResult, bool) {
	if m.result == nil {
		return MissionResult{}, false
	}
	return m.result.Clone(), true
}

// PendingNotifications drains the notification queue.
func (m *Mission) PendingNotifications() []Notification {
	if len(m.pending) == 0 {
		return nil
	}
	out := m.pending
	m.pending = nil
	return out
}

// PrepareMission resolves the config and rebuilds every per-attempt component.
// Without a usable config the mission stays not_started.
func (m *Mission) PrepareMission(ctx MissionContext) error {
	if m.state == StateRunning || m.state == StatePaused {
		return ErrMissionRunning
	}
	var src *MissionConfig
	if ctx.Config != nil {
		cfg, err := ctx.Config.MissionConfig()
		if err != nil {
			m.logger.Printf("mission: resolve config: %v", err)
			m.reset(StateNotStarted)
			return fmt.Errorf("%w: %v", ErrConfigurationMissing, err)
		}
		src = cfg
	}
	if src == nil {
		m.logger.Printf("mission: no mission config available, staying inert")
		m.reset(StateNotStarted)
		return ErrConfigurationMissing
	}
	if err := src.Validate(); err != nil {
		m.logger.Printf("mission: %v", err)
		m.reset(StateNotStarted)
		return fmt.Errorf("%w: %w", ErrConfigurationMissing, err)
	}

	m.reset(StateReady)
	m.ctx = ctx
	m.cfg = NormalizeMissionConfig(src)
	m.attemptID = ctx.AttemptID
	if m.attemptID == "" {
		m.attemptID = uuid.NewString()
	}
	m.timer = NewMissionTimer(ResolveTimeLimit(m.cfg))
	m.runner = NewPhaseRunner(m.cfg.Phases, NewTouchdownGate(DebounceWindow), NewTouchdownClassifier(m.thresholds), m.logger)
	m.runtime = MissionRuntimeState{PhaseIndex: -1, FuelRatio: 1}
	if len(m.cfg.Phases) > 0 && m.cfg.Phases[0].Spawn.FuelRatio > 0 {
		m.runtime.FuelRatio = Clamp(m.cfg.Phases[0].Spawn.FuelRatio, 0, 1)
	}
	for _, d := range m.cfg.BonusObjectives {
		d.Primary = false
		m.bonus = append(m.bonus, newObjectiveRecord("", d))
	}

	if src.IsLegacy() {
		m.logger.Printf("mission %s: legacy config wrapped into %s", m.cfg.ID, LegacyPhaseID)
	}
	m.logger.Printf("mission %s: prepared attempt %s (%d phases, %.0fs limit)", m.cfg.ID, m.attemptID, len(m.cfg.Phases), m.timer.Limit())
	return nil
}

func (m *Mission) reset(state MissionState) {
	m.state = state
	m.ctx = MissionContext{}
	m.cfg = nil
	m.attemptID = ""
	m.runtime = MissionRuntimeState{}
	m.timer = nil
	m.runner = nil
	m.bonus = nil
	m.advanced = 0
	m.result = nil
	m.pending = nil
}

// StartLandingGameplay enters the first phase and starts the clock.
func (m *Mission) StartLandingGameplay() error {
	if m.state != StateReady {
		return ErrMissionNotReady
	}
	m.state = StateRunning
	m.notify(Notification{Kind: NotifyMissionStarted})
	if len(m.cfg.Phases) == 0 {
		m.logger.Printf("mission %s: no phases to run", m.cfg.ID)
		m.endMission(SuccessStateFail, ReasonPrimaryFailed)
		return nil
	}
	if phase, ok := m.runner.Enter(0); ok {
		m.onPhaseEntered(phase)
	}
	return nil
}

// SetPaused freezes or resumes a running attempt. Telemetry is ignored while paused.
func (m *Mission) SetPaused(paused bool) {
	switch {
	case paused && m.state == StateRunning:
		m.state = StatePaused
	case !paused && m.state == StatePaused:
		m.state = StateRunning
	}
}

// AbortMission ends a live attempt with reason. It is a no-op otherwise.
func (m *Mission) AbortMission(reason string) {
	if m.state != StateRunning && m.state != StatePaused {
		return
	}
	if reason == "" {
		reason = ReasonAborted
	}
	m.endMission(SuccessStateFail, reason)
}

// Finish ends the attempt on the host's request when auto-end is disabled.
func (m *Mission) Finish() error {
	if m.state != StateRunning {
		return ErrMissionNotRunning
	}
	state, reason := m.preSweepState()
	m.endMission(state, reason)
	return nil
}

// CompleteExternalPhase is called by the orchestrator of a ground_ops or rescue
// phase once it has concluded.
func (m *Mission) CompleteExternalPhase(phaseID string) error {
	if m.state != StateRunning {
		return ErrMissionNotRunning
	}
	phase, ok := m.runner.Current()
	if !ok || !m.runner.AwaitingExternal() || phase.ID != phaseID {
		return fmt.Errorf("%w: %s", ErrUnknownPhase, phaseID)
	}
	m.advancePhase()
	return nil
}

// Handle processes one telemetry event. Events are ignored unless the mission is running.
func (m *Mission) Handle(ev Telemetry) {
	if m.state != StateRunning {
		return
	}
	switch e := ev.(type) {
	case Touchdown:
		m.handleTouchdown(e)
	case LanderDestroyed:
		m.handleDestroyed(e.Cause)
	case PlayerDied:
		m.runtime.PlayerDied = true
		m.runtime.DeathCause = e.Cause
		m.logger.Printf("mission %s: player died (%s)", m.cfg.ID, e.Cause)
		m.endMission(SuccessStateFail, ReasonPlayerDied)
	case FuelChanged:
		m.runtime.FuelRatio = Clamp(finite(e.Ratio, m.runtime.FuelRatio), 0, 1)
	case AltitudeChanged:
		m.handleAltitude(e.Meters)
	case AttitudeChanged:
		m.runner.Classifier().ObserveTilt(e.Tilt)
	case ZoneReached:
		m.evaluateLive(EvalPayload{Trigger: TriggerZoneReached, ReachedID: e.ID})
	case POIReached:
		m.evaluateLive(EvalPayload{Trigger: TriggerPOIReached, ReachedID: e.ID})
	case RescueInteractionCompleted:
		m.evaluateLive(EvalPayload{Trigger: TriggerInteraction, ReachedID: e.ID})
	case OrbitReached:
		m.handleOrbit(e.Altitude)
	case TimeTick:
		m.handleTick(e)
	default:
		m.logger.Printf("mission %s: ignoring telemetry %T", m.cfg.ID, ev)
	}
}

func (m *Mission) handleTouchdown(e Touchdown) {
	gate := m.runner.Gate()
	if decision := gate.Accept(m.now()); decision != GateAccepted {
		return
	}
	classifier := m.runner.Classifier()
	if !classifier.Ready() {
		return
	}
	m.runtime.TouchdownCount++
	verdict, resolved := classifier.Contact(TouchdownEvent{
		VerticalSpeed:   e.VerticalSpeed,
		HorizontalSpeed: e.HorizontalSpeed,
		CombinedSpeed:   e.CombinedSpeed,
		Tilt:            e.Tilt,
		ZoneID:          e.ZoneID,
	})
	if resolved {
		m.resolveTouchdown(verdict)
	}
}

func (m *Mission) resolveTouchdown(v TouchdownVerdict) {
	m.runtime.MaxHullDamage = math.Max(m.runtime.MaxHullDamage, v.Event.HullDamageRatio)
	verdict := v
	m.notify(Notification{Kind: NotifyTouchdownResolved, Touchdown: &verdict})

	switch v.Outcome {
	case OutcomeFatal:
		m.runtime.CrashCount++
		m.logger.Printf("mission %s: fatal touchdown (%s)", m.cfg.ID, v.Cause)
		m.handleDestroyed(v.Cause)
	case OutcomeRough:
		m.runtime.CrashCount++
		m.logger.Printf("mission %s: rough touchdown, hull damage %.2f", m.cfg.ID, v.Event.HullDamageRatio)
		m.runner.Classifier().Reset()
	case OutcomeSafe:
		m.runner.Gate().MarkConsumed()
		m.runtime.Landed = true
		judged := ApplyTolerance(v.Event, m.cfg.Modifiers.LandingToleranceMult)
		idx := m.runner.Index()
		m.evaluateLive(EvalPayload{Trigger: TriggerTouchdown, Touchdown: &judged})
		if m.state == StateRunning && m.runner.Index() == idx && m.runner.LandingSatisfies(v.Event.ZoneID) {
			m.advancePhase()
		}
	}
}

func (m *Mission) handleDestroyed(cause string) {
	if m.runtime.Destroyed {
		return
	}
	m.runtime.Destroyed = true
	m.runtime.DestroyCause = cause
	m.endMission(SuccessStateFail, ReasonLanderDestroyed)
}

func (m *Mission) handleAltitude(meters float64) {
	meters = finite(meters, m.runtime.Altitude)
	m.runtime.Altitude = meters
	gate := m.runner.Gate()
	if gate.Consumed() && meters > LiftoffAltitude {
		// Lifted off after a landing that did not end the phase.
		gate.Arm()
		m.runner.Classifier().Reset()
	}
	m.evaluateLive(EvalPayload{Trigger: TriggerAltitude, Altitude: meters})
}

func (m *Mission) handleOrbit(altitude float64) {
	if !m.runtime.OrbitReached {
		m.runtime.OrbitReached = true
		m.runtime.OrbitAltitude = altitude
		m.runtime.OrbitTime = m.runtime.Elapsed
		m.notify(Notification{Kind: NotifyOrbitReached, Altitude: altitude})
	}
	idx := m.runner.Index()
	m.evaluateLive(EvalPayload{Trigger: TriggerAltitude, Altitude: altitude})
	if m.state == StateRunning && m.runner.Index() == idx && m.runner.OrbitSatisfies() {
		m.advancePhase()
	}
}

func (m *Mission) handleTick(e TimeTick) {
	switch e.Channel {
	case ChannelPhysics:
		if v, ok := m.runner.Classifier().Tick(e.DtGame); ok {
			m.resolveTouchdown(v)
		}
	case ChannelMission:
		if e.DtGame > 0 {
			m.runtime.Elapsed += e.DtGame
		}
		if m.timer.Advance(e.DtGame) {
			m.onTimeout()
		}
	}
}

func (m *Mission) onTimeout() {
	m.logger.Printf("mission %s: time limit of %.0fs exceeded", m.cfg.ID, m.timer.Limit())
	m.runner.MaterializeRemaining()
	for _, rec := range forcePendingPrimaries(m.runner.Records()) {
		m.notifyObjective(rec)
	}
	m.endMission(SuccessStateFail, ReasonTimeLimitExceeded)
}

// evaluateLive runs a live trigger over the active phase and bonus objectives,
// then checks whether the phase or the mission is done.
func (m *Mission) evaluateLive(p EvalPayload) {
	p.Runtime = m.runtime
	p.Landed = m.runtime.Landed
	p.SpawnHeight = m.cfg.SpawnHeight()

	changed := false
	for _, rec := range append(append([]*ObjectiveRecord(nil), m.runner.CurrentRecords()...), m.bonus...) {
		if ApplyEvaluation(rec, EvaluateObjective(rec, p)) {
			m.notifyObjective(rec)
			changed = true
		}
	}
	if changed {
		m.showHUD()
	}
	if m.state == StateRunning && m.runner.ObjectivesSatisfy() {
		m.advancePhase()
	}
}

func (m *Mission) advancePhase() {
	m.advanced++
	phase, ok := m.runner.Advance()
	if !ok {
		m.logger.Printf("mission %s: all %d phases complete", m.cfg.ID, m.runner.Len())
		m.checkAutoEnd()
		return
	}
	m.onPhaseEntered(phase)
}

func (m *Mission) onPhaseEntered(phase *PhaseDescriptor) {
	m.runtime.PhaseIndex = m.runner.Index()
	entered := *phase
	m.notify(Notification{Kind: NotifyPhaseEntered, Phase: &entered, Mode: phase.Mode})
	m.logger.Printf("mission %s: entered phase %s (%s)", m.cfg.ID, phase.ID, phase.Mode)

	if m.ctx.Terrain != nil {
		if err := m.ctx.Terrain.PrepareTerrain(m.cfg.ID, entered); err != nil {
			m.logger.Printf("mission %s: terrain for phase %s: %v", m.cfg.ID, phase.ID, err)
		}
	} else if m.runner.Index() == 0 {
		m.logger.Printf("mission %s: no terrain provider, skipping terrain setup", m.cfg.ID)
	}
	if m.ctx.Vehicle != nil {
		if err := m.ctx.Vehicle.SpawnVehicle(phase.Spawn); err != nil {
			m.logger.Printf("mission %s: spawn for phase %s: %v", m.cfg.ID, phase.ID, err)
		}
	}
	m.showHUD()

	if phase.Mode != ModeDescent {
		requested := entered
		m.notify(Notification{Kind: NotifyPhaseModeRequested, Mode: phase.Mode, Phase: &requested})
	}
}

// checkAutoEnd ends the mission once every phase is done.
func (m *Mission) checkAutoEnd() {
	if !m.autoEnd || m.state != StateRunning || !m.runner.Done() {
		return
	}
	state, reason := m.preSweepState()
	m.endMission(state, reason)
}

// preSweepState classifies the attempt from the live objective state.
func (m *Mission) preSweepState() (SuccessState, string) {
	if !m.runner.Done() {
		return SuccessStateFail, ReasonPrimaryFailed
	}
	for _, rec := range m.runner.Records() {
		if rec.Primary && rec.Status == StatusFailed {
			return SuccessStateFail, ReasonPrimaryFailed
		}
	}
	return SuccessStateSuccess, ""
}

// endMission finalizes objectives, builds and publishes the result, then emits the
// terminal notification. Calls after the first are no-ops.
func (m *Mission) endMission(state SuccessState, reason string) {
	if m.result != nil || m.state.Terminal() || m.cfg == nil {
		return
	}
	m.timer.Stop()
	m.runner.MaterializeRemaining()
	m.runner.Gate().Disarm()

	records := m.allRecords()
	payload := EvalPayload{
		Runtime:     m.runtime,
		Landed:      m.runtime.Landed,
		SpawnHeight: m.cfg.SpawnHeight(),
	}
	final, changed := finalizeOutcome(records, payload, state)
	for _, rec := range changed {
		m.notifyObjective(rec)
	}
	if final != state {
		m.logger.Printf("mission %s: downgraded %s to %s by finalization", m.cfg.ID, state, final)
	}

	result := buildResult(m.cfg, m.attemptID, final, reason, records, m.runtime.stats(m.advanced), m.now())
	m.result = &result
	if final == SuccessStateFail {
		m.state = StateFailed
	} else {
		m.state = StateCompleted
	}

	if m.ctx.Results != nil {
		if err := m.ctx.Results.PublishResult(result.Clone()); err != nil {
			m.logger.Printf("mission %s: publish result: %v", m.cfg.ID, err)
		}
	} else {
		m.logger.Printf("mission %s: no result store, result kept in memory", m.cfg.ID)
	}

	out := result.Clone()
	if final == SuccessStateFail {
		m.notify(Notification{Kind: NotifyMissionFailed, Reason: reason, Result: &out})
	} else {
		m.notify(Notification{Kind: NotifyMissionCompleted, Reason: reason, Result: &out})
	}
	m.logger.Printf("mission %s: attempt %s ended %s %s", m.cfg.ID, m.attemptID, final, reason)
}

func (m *Mission) allRecords() []*ObjectiveRecord {
	if m.runner == nil {
		return nil
	}
	return append(m.runner.Records(), m.bonus...)
}

func (m *Mission) notify(n Notification) {
	if m.cfg != nil {
		n.MissionID = m.cfg.ID
	}
	n.AttemptID = m.attemptID
	n.Elapsed = m.runtime.Elapsed
	m.pending = append(m.pending, n)
}

func (m *Mission) notifyObjective(rec *ObjectiveRecord) {
	outcome := outcomeOf(rec)
	m.notify(Notification{Kind: NotifyObjectiveChanged, Objective: &outcome})
}

func (m *Mission) showHUD() {
	if m.ctx.HUD == nil {
		return
	}
	phaseID := ""
	if phase, ok := m.runner.Current(); ok {
		phaseID = phase.ID
	}
	m.ctx.HUD.ShowObjectives(phaseID, m.Objectives())
}
