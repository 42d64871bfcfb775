package replay

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"LanderRescue/internal/game"
)

// Epoch is the wall clock at mission time zero.
var Epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

const defaultSettle = 2.0 // seconds

// Report is the outcome of a replayed scenario.
type Report struct {
	Scenario      string
	AttemptID     string
	State         game.MissionState
	Result        *game.MissionResult
	Notifications []game.Notification
	StepsRun      int
	StepsSkipped  int
	Elapsed       float64
}

// Option configures Run.
type Option func(*runner)

// WithLogger routes engine logs. Logs are discarded by default.
func WithLogger(l *log.Logger) Option {
	return func(r *runner) { r.logger = l }
}

// WithPublisher stores the final result, e.g. in the sqlite result store.
func WithPublisher(p game.ResultPublisher) Option {
	return func(r *runner) { r.publisher = p }
}

type runner struct {
	logger    *log.Logger
	publisher game.ResultPublisher

	mission *game.Mission
	ticks   int
	report  *Report
}

func (r *runner) now() time.Time {
	return Epoch.Add(time.Duration(r.ticks) * time.Second / game.SimHz)
}

func (r *runner) seconds() float64 {
	return float64(r.ticks) / game.SimHz
}

// Run plays sc against a fresh engine and returns what it produced. Steps after
// the attempt ends are counted as skipped.
func Run(ctx context.Context, sc *Scenario, opts ...Option) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	r := &runner{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(r)
	}

	thresholds := sc.Thresholds.Apply(game.DefaultTouchdownThresholds())
	autoEnd := true
	if sc.AutoEnd != nil {
		autoEnd = *sc.AutoEnd
	}
	r.mission = game.NewMission(
		game.WithClock(r.now),
		game.WithLogger(r.logger),
		game.WithThresholds(thresholds),
		game.WithAutoEnd(autoEnd),
	)
	r.report = &Report{Scenario: sc.Name}

	if err := r.mission.PrepareMission(game.MissionContext{
		AttemptID: sc.AttemptID,
		Config:    sc.source(),
		Results:   r.publisher,
	}); err != nil {
		return nil, fmt.Errorf("prepare %s: %w", sc.Mission, err)
	}
	r.report.AttemptID = r.mission.AttemptID()
	if err := r.mission.StartLandingGameplay(); err != nil {
		return nil, fmt.Errorf("start %s: %w", sc.Mission, err)
	}
	r.drain()

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.mission.State().Terminal() {
			r.report.StepsSkipped = len(sc.Steps) - i
			break
		}
		r.advanceTo(st.At)
		if err := r.apply(st); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, st.Event, err)
		}
		r.drain()
		r.report.StepsRun++
	}

	r.report.State = r.mission.State()
	r.report.Elapsed = r.mission.Runtime().Elapsed
	if res, ok := r.mission.Result(); ok {
		r.report.Result = &res
	}
	return r.report, nil
}

func (r *runner) drain() {
	r.report.Notifications = append(r.report.Notifications, r.mission.PendingNotifications()...)
}

// advanceTo ticks both channels at SimHz until mission time reaches at.
func (r *runner) advanceTo(at float64) {
	target := int(math.Round(at * game.SimHz))
	for r.ticks < target && !r.mission.State().Terminal() {
		r.tick()
	}
}

func (r *runner) tick() {
	r.ticks++
	r.mission.Handle(game.TimeTick{Channel: game.ChannelPhysics, DtGame: game.Dt, DtReal: game.Dt})
	r.mission.Handle(game.TimeTick{Channel: game.ChannelMission, DtGame: game.Dt, DtReal: game.Dt})
	r.drain()
}

func (r *runner) apply(st Step) error {
	m := r.mission
	switch st.Event {
	case EventTouchdown:
		m.Handle(game.AttitudeChanged{Tilt: st.Tilt})
		m.Handle(game.Touchdown{
			VerticalSpeed:   st.Vertical,
			HorizontalSpeed: st.Horizontal,
			Tilt:            st.Tilt,
			ZoneID:          st.Zone,
		})
	case EventSettle:
		m.Handle(game.AttitudeChanged{Tilt: st.Tilt})
		d := st.Seconds
		if d <= 0 {
			d = defaultSettle
		}
		r.advanceTo(r.seconds() + d)
	case EventAdvance:
		r.advanceTo(r.seconds() + st.Seconds)
	case EventAttitude:
		m.Handle(game.AttitudeChanged{Tilt: st.Tilt})
	case EventAltitude:
		m.Handle(game.AltitudeChanged{Meters: st.Value})
	case EventFuel:
		m.Handle(game.FuelChanged{Ratio: st.Value})
	case EventDestroyed:
		m.Handle(game.LanderDestroyed{Cause: st.Cause})
	case EventPlayerDied:
		m.Handle(game.PlayerDied{Cause: st.Cause})
	case EventZone:
		m.Handle(game.ZoneReached{ID: st.ID})
	case EventPOI:
		m.Handle(game.POIReached{ID: st.ID})
	case EventRescue:
		m.Handle(game.RescueInteractionCompleted{ID: st.ID})
	case EventOrbit:
		m.Handle(game.OrbitReached{Altitude: st.Value})
	case EventCompletePhase:
		return m.CompleteExternalPhase(st.ID)
	case EventPause:
		m.SetPaused(true)
	case EventResume:
		m.SetPaused(false)
	case EventAbort:
		m.AbortMission(st.Reason)
	case EventFinish:
		return m.Finish()
	}
	return nil
}
