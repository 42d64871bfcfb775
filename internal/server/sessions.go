package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"LanderRescue/internal/game"
	"LanderRescue/internal/platform/otel"
	"LanderRescue/internal/progression"
	"LanderRescue/internal/storage/sqlite"
)

// ErrMissionLocked is returned when progression does not allow the mission yet.
var ErrMissionLocked = errors.New("mission locked")

// ReasonDisconnected ends an attempt whose client went away.
const ReasonDisconnected = "disconnected"

// Hub owns every live session and the shared result sinks.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session

	thresholds game.TouchdownThresholds
	store      *sqlite.Store
	ledger     *progression.Ledger
	logger     *log.Logger
	tracer     trace.Tracer
}

func NewHub(thresholds game.TouchdownThresholds, store *sqlite.Store, ledger *progression.Ledger, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		sessions:   map[string]*Session{},
		thresholds: thresholds,
		store:      store,
		ledger:     ledger,
		logger:     logger,
		tracer:     otel.MissionTracer(),
	}
}

// NewSession registers an idle session with its own engine.
func (h *Hub) NewSession() *Session {
	s := &Session{
		ID:  uuid.NewString(),
		hub: h,
		mission: game.NewMission(
			game.WithLogger(h.logger),
			game.WithThresholds(h.thresholds),
		),
	}
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	return s
}

// Remove ends any live attempt and forgets the session.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		return
	}
	s.close()
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Hub) snapshot() []*Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}

// Tick advances every session by one simulation step.
func (h *Hub) Tick() {
	for _, s := range h.snapshot() {
		s.Tick()
	}
}

// Run ticks sessions at SimHz until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(1000.0/game.SimHz) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Tick()
		}
	}
}

// PublishResult is the engine's result sink: the store first, then progression.
func (h *Hub) PublishResult(res game.MissionResult) error {
	if h.store == nil {
		h.recordProgress(res)
		return nil
	}
	return sqlite.Publisher{Store: h.store, OnSaved: h.recordProgress}.PublishResult(res)
}

func (h *Hub) recordProgress(res game.MissionResult) {
	if h.ledger == nil {
		return
	}
	applied, err := h.ledger.Apply(res)
	if err != nil || !applied || h.store == nil {
		return
	}
	snap, err := h.ledger.Snapshot()
	if err != nil {
		h.logger.Printf("progression snapshot: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.SaveProgression(ctx, sqlite.DefaultProfile, snap); err != nil {
		h.logger.Printf("progression save: %v", err)
	}
}

// Session is one client's engine. All engine calls go through mu.
type Session struct {
	ID  string
	hub *Hub

	mu        sync.Mutex
	mission   *game.Mission
	missionID string
	outbox    []game.Notification
	span      trace.Span
}

// Prepare loads missionID for a new attempt.
func (s *Session) Prepare(missionID, attemptID string) error {
	if s.hub.ledger != nil && !s.hub.ledger.CanFly(missionID) {
		if _, err := game.GetMission(missionID); err != nil {
			return err
		}
		return ErrMissionLocked
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mission.PrepareMission(game.MissionContext{
		AttemptID: attemptID,
		Config:    game.RegistrySource(missionID),
		Results:   s.hub,
	}); err != nil {
		return err
	}
	s.missionID = missionID
	return nil
}

// Start begins the prepared attempt and opens its trace span.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mission.StartLandingGameplay(); err != nil {
		return err
	}
	_, s.span = s.hub.tracer.Start(context.Background(), "mission.attempt",
		trace.WithAttributes(
			attribute.String("mission.id", s.missionID),
			attribute.String("mission.attempt_id", s.mission.AttemptID()),
			attribute.String("session.id", s.ID),
		))
	s.collect()
	return nil
}

func (s *Session) Handle(ev game.Telemetry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mission.Handle(ev)
	s.collect()
}

func (s *Session) Abort(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mission.AbortMission(reason)
	s.collect()
}

func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mission.SetPaused(paused)
}

func (s *Session) CompletePhase(phaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.mission.CompleteExternalPhase(phaseID)
	s.collect()
	return err
}

// Tick feeds one step to both clocks.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mission.State() != game.StateRunning {
		return
	}
	s.mission.Handle(game.TimeTick{Channel: game.ChannelPhysics, DtGame: game.Dt, DtReal: game.Dt})
	s.mission.Handle(game.TimeTick{Channel: game.ChannelMission, DtGame: game.Dt, DtReal: game.Dt})
	s.collect()
}

// Drain returns notifications produced since the last call.
func (s *Session) Drain() []game.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collect()
	out := s.outbox
	s.outbox = nil
	return out
}

// View summarizes the session for the client.
func (s *Session) View() sessionDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.mission.Runtime()
	v := sessionDTO{
		SessionID:  s.ID,
		MissionID:  s.missionID,
		AttemptID:  s.mission.AttemptID(),
		State:      s.mission.State(),
		Elapsed:    rt.Elapsed,
		Fuel:       rt.FuelRatio,
		Altitude:   rt.Altitude,
		Objectives: s.mission.Objectives(),
	}
	if phase, ok := s.mission.CurrentPhase(); ok {
		v.Phase = phase.ID
	}
	if t := s.mission.Timer(); t != nil {
		v.Remaining = t.Remaining()
	}
	return v
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mission.AbortMission(ReasonDisconnected)
	s.collect()
	s.endSpan(nil)
}

// collect moves engine notifications into the outbox. Caller holds mu.
func (s *Session) collect() {
	for _, n := range s.mission.PendingNotifications() {
		s.outbox = append(s.outbox, n)
		if n.Terminal() {
			s.endSpan(n.Result)
		}
	}
}

func (s *Session) endSpan(res *game.MissionResult) {
	if s.span == nil {
		return
	}
	if res != nil {
		s.span.SetAttributes(
			attribute.String("mission.success_state", string(res.SuccessState)),
			attribute.Float64("mission.elapsed", res.Stats.Elapsed),
		)
		if res.SuccessState == game.SuccessStateFail {
			s.span.SetStatus(codes.Error, res.FailureReason)
		}
	}
	s.span.End()
	s.span = nil
}
