package game

// Telemetry is the single typed input channel of the engine. Implementations are
// the event structs below; the interface is sealed to this package.
type Telemetry interface {
	telemetry()
}

// Touchdown is produced by the vehicle per physical contact.
type Touchdown struct {
	VerticalSpeed   float64
	HorizontalSpeed float64
	CombinedSpeed   float64 // computed from the components when zero
	Tilt            float64
	ZoneID          string
}

type LanderDestroyed struct {
	Cause   string
	Context map[string]string
}

type FuelChanged struct{ Ratio float64 }

type AltitudeChanged struct{ Meters float64 }

// AttitudeChanged feeds the settle window with the current tilt in degrees.
type AttitudeChanged struct{ Tilt float64 }

type PlayerDied struct {
	Cause   string
	Context map[string]string
}

type ZoneReached struct{ ID string }

type POIReached struct{ ID string }

type RescueInteractionCompleted struct{ ID string }

type OrbitReached struct{ Altitude float64 }

// TickChannel selects which clock a TimeTick advances.
type TickChannel string

const (
	// ChannelPhysics advances the touchdown settle window.
	ChannelPhysics TickChannel = "physics"
	// ChannelMission advances elapsed mission time and the timer.
	ChannelMission TickChannel = "mission"
)

type TimeTick struct {
	Channel TickChannel
	DtGame  float64
	DtReal  float64
}

func (Touchdown) telemetry()                  {}
func (LanderDestroyed) telemetry()            {}
func (FuelChanged) telemetry()                {}
func (AltitudeChanged) telemetry()            {}
func (AttitudeChanged) telemetry()            {}
func (PlayerDied) telemetry()                 {}
func (ZoneReached) telemetry()                {}
func (POIReached) telemetry()                 {}
func (RescueInteractionCompleted) telemetry() {}
func (OrbitReached) telemetry()               {}
func (TimeTick) telemetry()                   {}

// NotificationKind enumerates engine notifications.
type NotificationKind string

const (
	NotifyMissionStarted     NotificationKind = "mission_started"
	NotifyMissionCompleted   NotificationKind = "mission_completed"
	NotifyMissionFailed      NotificationKind = "mission_failed"
	NotifyPhaseModeRequested NotificationKind = "phase_mode_requested"
	NotifyOrbitReached       NotificationKind = "orbit_reached"
	NotifyPhaseEntered       NotificationKind = "phase_entered"
	NotifyObjectiveChanged   NotificationKind = "objective_changed"
	NotifyTouchdownResolved  NotificationKind = "touchdown_resolved"
)

// Notification is queued by the engine and drained with PendingNotifications.
// Only the fields relevant to Kind are set.
type Notification struct {
	Kind      NotificationKind
	MissionID string
	AttemptID string
	Elapsed   float64

	Reason    string
	Result    *MissionResult
	Mode      PhaseMode
	Phase     *PhaseDescriptor
	Altitude  float64
	Objective *ObjectiveOutcome
	Touchdown *TouchdownVerdict
}

// Terminal reports whether n ends the attempt.
func (n Notification) Terminal() bool {
	return n.Kind == NotifyMissionCompleted || n.Kind == NotifyMissionFailed
}
