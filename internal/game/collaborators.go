package game

// ConfigSource resolves the mission config for an attempt. A nil config with a nil
// error means nothing is selected.
type ConfigSource interface {
	MissionConfig() (*MissionConfig, error)
}

// StaticConfig serves a fixed config.
type StaticConfig struct {
	Config *MissionConfig
}

func (s StaticConfig) MissionConfig() (*MissionConfig, error) { return s.Config, nil }

// ConfigFunc adapts a function to ConfigSource.
type ConfigFunc func() (*MissionConfig, error)

func (f ConfigFunc) MissionConfig() (*MissionConfig, error) { return f() }

// ResultPublisher is the shared state store that receives the final result, once
// per attempt, before the terminal notification.
type ResultPublisher interface {
	PublishResult(MissionResult) error
}

// TerrainProvider prepares the surface for a phase.
type TerrainProvider interface {
	PrepareTerrain(missionID string, phase PhaseDescriptor) error
}

// VehicleSpawner places the lander for a phase.
type VehicleSpawner interface {
	SpawnVehicle(spawn SpawnDescriptor) error
}

// HUD shows objective state to the player.
type HUD interface {
	ShowObjectives(phaseID string, objectives []ObjectiveOutcome)
}

// MissionContext is passed explicitly to PrepareMission. Only Config is required;
// every other collaborator is optional and its setup step is skipped when nil.
type MissionContext struct {
	AttemptID string
	Config    ConfigSource
	Results   ResultPublisher
	Terrain   TerrainProvider
	Vehicle   VehicleSpawner
	HUD       HUD
}
