package game

import "time"

const (
	SimHz = 20.0 // server tick rate
	Dt    = 1.0 / SimHz

	DefaultTimeLimitTutorial = 900.0 // seconds
	DefaultTimeLimit         = 600.0 // seconds
	DefaultOrbitAltitude     = 10000.0
	DefaultToleranceMult     = 1.0

	DefaultSafeVertical      = 4.0
	DefaultSafeHorizontal    = 3.0
	DefaultSafeTilt          = 20.0 // degrees
	DefaultDestroyVertical   = 40.0
	DefaultDestroyHorizontal = 30.0
	DefaultDestroyMagnitude  = 45.0
	DefaultUprightLimit      = 60.0 // degrees
	DefaultSettleSeconds     = 1.5

	// DebounceWindow is measured on the wall clock, not game time.
	DebounceWindow = 500 * time.Millisecond

	LegacyPhaseID = "legacy_descent"

	// LiftoffAltitude re-arms the touchdown gate after a landing that did not end the phase.
	LiftoffAltitude = 5.0 // meters

	speedEpsilon = 1e-9
)

// Failure reasons reported on MissionResult.
const (
	ReasonTimeLimitExceeded = "time_limit_exceeded"
	ReasonLanderDestroyed   = "lander_destroyed"
	ReasonPlayerDied        = "player_died"
	ReasonAborted           = "aborted"
	ReasonPrimaryFailed     = "primary_objective_failed"
)
