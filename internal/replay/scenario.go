// Package replay drives the mission engine from a scripted telemetry file.
// A scenario pins the clock, so the same file always yields the same result.
package replay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"LanderRescue/internal/game"
)

// ErrInvalidScenario wraps every scenario decoding or validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted attempt.
type Scenario struct {
	Name       string                   `yaml:"name"`
	Mission    string                   `yaml:"mission"`
	Config     *game.MissionConfig      `yaml:"config"`
	AttemptID  string                   `yaml:"attempt_id"`
	Thresholds *game.ThresholdOverrides `yaml:"thresholds"`
	AutoEnd    *bool                    `yaml:"auto_end"`
	Steps      []Step                   `yaml:"steps"`
}

// Step is one scripted input. At is the mission time in seconds at which the
// step fires; the clock never moves backwards, so an earlier At fires
// immediately. Only the fields used by Event need to be set.
type Step struct {
	At    float64 `yaml:"at"`
	Event string  `yaml:"event"`

	Vertical   float64 `yaml:"vertical"`
	Horizontal float64 `yaml:"horizontal"`
	Tilt       float64 `yaml:"tilt"`
	Zone       string  `yaml:"zone"`
	ID         string  `yaml:"id"`
	Value      float64 `yaml:"value"`
	Cause      string  `yaml:"cause"`
	Reason     string  `yaml:"reason"`
	Seconds    float64 `yaml:"seconds"`
}

// Step events.
const (
	EventTouchdown     = "touchdown"
	EventSettle        = "settle"
	EventAttitude      = "attitude"
	EventAltitude      = "altitude"
	EventFuel          = "fuel"
	EventDestroyed     = "destroyed"
	EventPlayerDied    = "player_died"
	EventZone          = "zone"
	EventPOI           = "poi"
	EventRescue        = "rescue"
	EventOrbit         = "orbit"
	EventAdvance       = "advance"
	EventCompletePhase = "complete_phase"
	EventPause         = "pause"
	EventResume        = "resume"
	EventAbort         = "abort"
	EventFinish        = "finish"
)

var knownEvents = map[string]bool{
	EventTouchdown: true, EventSettle: true, EventAttitude: true, EventAltitude: true,
	EventFuel: true, EventDestroyed: true, EventPlayerDied: true, EventZone: true,
	EventPOI: true, EventRescue: true, EventOrbit: true, EventAdvance: true,
	EventCompletePhase: true, EventPause: true, EventResume: true, EventAbort: true,
	EventFinish: true,
}

// Parse decodes a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and decodes a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scenario %q: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	return sc, nil
}

// Validate checks that the scenario names a mission and only known events.
func (sc *Scenario) Validate() error {
	if sc.Mission == "" && sc.Config == nil {
		return fmt.Errorf("%w: mission or config is required", ErrInvalidScenario)
	}
	for i, st := range sc.Steps {
		if !knownEvents[st.Event] {
			return fmt.Errorf("%w: step %d: unknown event %q", ErrInvalidScenario, i, st.Event)
		}
		if st.At < 0 {
			return fmt.Errorf("%w: step %d: negative time", ErrInvalidScenario, i)
		}
	}
	return nil
}

func (sc *Scenario) source() game.ConfigSource {
	if sc.Config != nil {
		return game.StaticConfig{Config: sc.Config}
	}
	return game.RegistrySource(sc.Mission)
}
