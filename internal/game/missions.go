package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MissionRegistry holds the built-in missions plus any loaded from disk at startup.
var MissionRegistry = map[string]MissionConfig{
	"tutorial-landing": {
		ID:          "tutorial-landing",
		DisplayName: "First Touchdown",
		Category:    CategoryTutorial,
		Spawn:       SpawnDescriptor{HeightAboveSurface: 1200, FuelRatio: 1},
		Objectives: LegacyObjectives{
			Primary: []ObjectiveDescriptor{
				{
					ID:          "land-anywhere",
					Type:        ObjectiveLanding,
					Description: "Set the lander down gently",
					Params:      map[string]any{"target_zone_id": "any"},
				},
			},
			Bonus: []ObjectiveDescriptor{
				{
					ID:          "fuel-saver",
					Type:        ObjectiveFuelRemaining,
					Description: "Land with half a tank",
					Params:      map[string]any{"min_ratio": 0.5},
				},
			},
		},
		Rewards: Rewards{
			Success: &RewardTier{Credits: 100, Unlocks: []string{"outpost-rescue"}},
			Partial: &RewardTier{Credits: 50},
		},
	},
	"outpost-rescue": {
		ID:          "outpost-rescue",
		DisplayName: "Outpost Rescue",
		Category:    CategoryRescue,
		Phases: []PhaseDescriptor{
			{
				ID:   "descent",
				Mode: ModeDescent,
				Spawn: SpawnDescriptor{
					HeightAboveSurface: 2500,
					FuelRatio:          1,
				},
				Objectives: []ObjectiveDescriptor{
					{
						ID:          "land-at-outpost",
						Type:        ObjectiveLanding,
						Primary:     true,
						Description: "Land on the outpost pad",
						Params:      map[string]any{"target_zone_id": "outpost", "max_impact_speed": 5.0},
					},
				},
				Completion: CompletionRule{Type: RuleLandedInZone, ZoneID: "outpost"},
			},
			{
				ID:   "rescue",
				Mode: ModeRescue,
				Objectives: []ObjectiveDescriptor{
					{
						ID:          "reach-survivor",
						Type:        ObjectiveReachPOI,
						Description: "Find the survivor",
						Params:      map[string]any{"target_id": "survivor"},
					},
					{
						ID:          "board-survivor",
						Type:        ObjectiveRescueInteract,
						Primary:     true,
						Description: "Bring the survivor aboard",
						Params:      map[string]any{"target_id": "survivor"},
					},
				},
				Completion: CompletionRule{Type: RuleExternal},
			},
			{
				ID:   "return",
				Mode: ModeReturnToOrbit,
				Objectives: []ObjectiveDescriptor{
					{
						ID:          "reach-orbit",
						Type:        ObjectiveReturnToOrbit,
						Primary:     true,
						Description: "Climb back to orbit",
					},
				},
				Completion: CompletionRule{Type: RuleReachOrbit},
			},
		},
		BonusObjectives: []ObjectiveDescriptor{
			{
				ID:          "quick-rescue",
				Type:        ObjectiveTimeUnder,
				Description: "Finish within five minutes",
				Params:      map[string]any{"limit_seconds": 300},
			},
			{
				ID:          "spotless",
				Type:        ObjectiveNoDamage,
				Description: "Keep the hull intact",
			},
		},
		FailureRules: FailureRules{TimeLimitSeconds: 600},
		Rewards: Rewards{
			Success: &RewardTier{Credits: 400},
			Partial: &RewardTier{Credits: 150},
		},
		Modifiers: MissionModifiers{LandingToleranceMult: 1.2},
	},
}

// GetMission retrieves a mission by ID.
func GetMission(id string) (*MissionConfig, error) {
	cfg, ok := MissionRegistry[id]
	if !ok {
		return nil, fmt.Errorf("mission not found: %s", id)
	}
	return &cfg, nil
}

// MissionIDs lists registered missions in a stable order.
func MissionIDs() []string {
	ids := make([]string, 0, len(MissionRegistry))
	for id := range MissionRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RegisterMission validates cfg and adds it to the registry, replacing any
// mission with the same id. Call during startup only.
func RegisterMission(cfg MissionConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	MissionRegistry[cfg.ID] = cfg
	return nil
}

// LoadMissionDir registers every .yaml, .yml and .json mission file in dir and
// returns the ids loaded.
func LoadMissionDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read mission dir %q: %w", dir, err)
	}
	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return loaded, fmt.Errorf("read mission %q: %w", path, err)
		}
		cfg, err := ParseMissionConfig(data)
		if err != nil {
			return loaded, fmt.Errorf("mission %q: %w", path, err)
		}
		if err := RegisterMission(*cfg); err != nil {
			return loaded, err
		}
		loaded = append(loaded, cfg.ID)
	}
	return loaded, nil
}

// RegistrySource serves a registered mission as a ConfigSource. An unknown id
// yields no config, leaving the mission inert.
type RegistrySource string

func (id RegistrySource) MissionConfig() (*MissionConfig, error) {
	cfg, ok := MissionRegistry[string(id)]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}
