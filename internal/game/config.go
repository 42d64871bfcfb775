package game

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MissionCategory groups missions; tutorial missions get a longer default time limit.
type MissionCategory string

const (
	CategoryTutorial MissionCategory = "tutorial"
	CategoryRescue   MissionCategory = "rescue"
	CategoryCampaign MissionCategory = "campaign"
)

// PhaseMode selects how a phase is driven.
type PhaseMode string

const (
	ModeDescent       PhaseMode = "descent"
	ModeGroundOps     PhaseMode = "ground_ops"
	ModeRescue        PhaseMode = "rescue"
	ModeReturnToOrbit PhaseMode = "return_to_orbit"
)

// CompletionRuleType names the condition that advances a phase.
type CompletionRuleType string

const (
	RuleLandedInZone       CompletionRuleType = "landed_in_zone"
	RuleLegacy             CompletionRuleType = "legacy"
	RuleReachOrbit         CompletionRuleType = "reach_orbit"
	RuleObjectivesComplete CompletionRuleType = "objectives_complete"
	RuleExternal           CompletionRuleType = "external"
)

type SpawnDescriptor struct {
	HeightAboveSurface float64 `json:"height_above_surface,omitempty" yaml:"height_above_surface,omitempty"`
	ZoneID             string  `json:"zone_id,omitempty" yaml:"zone_id,omitempty"`
	FuelRatio          float64 `json:"fuel_ratio,omitempty" yaml:"fuel_ratio,omitempty"`
}

type CompletionRule struct {
	Type   CompletionRuleType `json:"type" yaml:"type"`
	ZoneID string             `json:"zone_id,omitempty" yaml:"zone_id,omitempty"`
}

type ObjectiveDescriptor struct {
	ID          string         `json:"id" yaml:"id"`
	Type        ObjectiveType  `json:"type" yaml:"type"`
	Primary     bool           `json:"is_primary" yaml:"is_primary"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Params      map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

type PhaseDescriptor struct {
	ID         string                `json:"id" yaml:"id"`
	Mode       PhaseMode             `json:"mode" yaml:"mode"`
	Spawn      SpawnDescriptor       `json:"spawn" yaml:"spawn"`
	Objectives []ObjectiveDescriptor `json:"objectives" yaml:"objectives"`
	Completion CompletionRule        `json:"completion" yaml:"completion"`
}

type FailureRules struct {
	TimeLimitSeconds float64 `json:"time_limit_seconds,omitempty" yaml:"time_limit_seconds,omitempty"`
}

// RewardTier is what the reward collaborator grants for a given success state.
type RewardTier struct {
	Credits int      `json:"credits" yaml:"credits"`
	Unlocks []string `json:"unlocks,omitempty" yaml:"unlocks,omitempty"`
}

type Rewards struct {
	Success *RewardTier `json:"success,omitempty" yaml:"success,omitempty"`
	Partial *RewardTier `json:"partial,omitempty" yaml:"partial,omitempty"`
}

type MissionModifiers struct {
	LandingToleranceMult float64 `json:"landing_tolerance_mult,omitempty" yaml:"landing_tolerance_mult,omitempty"`
}

// LegacyObjectives is the top-level objectives block of configs written before phases existed.
type LegacyObjectives struct {
	Primary []ObjectiveDescriptor `json:"primary,omitempty" yaml:"primary,omitempty"`
	Bonus   []ObjectiveDescriptor `json:"bonus,omitempty" yaml:"bonus,omitempty"`
}

// MissionConfig is loaded once per attempt and never mutated by the engine.
type MissionConfig struct {
	ID              string                `json:"id" yaml:"id"`
	DisplayName     string                `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Category        MissionCategory       `json:"category" yaml:"category"`
	Phases          []PhaseDescriptor     `json:"phases,omitempty" yaml:"phases,omitempty"`
	BonusObjectives []ObjectiveDescriptor `json:"bonus_objectives,omitempty" yaml:"bonus_objectives,omitempty"`
	FailureRules    FailureRules          `json:"failure_rules" yaml:"failure_rules"`
	Rewards         Rewards               `json:"rewards" yaml:"rewards"`
	Modifiers       MissionModifiers      `json:"mission_modifiers" yaml:"mission_modifiers"`

	// Legacy single-descent shape.
	Spawn      SpawnDescriptor  `json:"spawn" yaml:"spawn"`
	Objectives LegacyObjectives `json:"objectives" yaml:"objectives"`
}

var (
	// ErrInvalidConfig wraps every structural problem found by Validate.
	ErrInvalidConfig = errors.New("game: invalid mission config")
)

// ParseMissionConfig decodes a YAML or JSON mission document.
func ParseMissionConfig(data []byte) (*MissionConfig, error) {
	var cfg MissionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mission config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks identifiers. Unknown objective types are tolerated here and
// handled by the evaluator.
func (c *MissionConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: mission id cannot be empty", ErrInvalidConfig)
	}
	seen := make(map[string]bool)
	for i, phase := range c.Phases {
		if strings.TrimSpace(phase.ID) == "" {
			return fmt.Errorf("%w: mission %s phase %d missing id", ErrInvalidConfig, c.ID, i)
		}
		if seen[phase.ID] {
			return fmt.Errorf("%w: mission %s has duplicate phase %s", ErrInvalidConfig, c.ID, phase.ID)
		}
		seen[phase.ID] = true
		switch phase.Mode {
		case ModeDescent, ModeGroundOps, ModeRescue, ModeReturnToOrbit, "":
		default:
			return fmt.Errorf("%w: mission %s phase %s has unknown mode %q", ErrInvalidConfig, c.ID, phase.ID, phase.Mode)
		}
	}
	return nil
}

// IsLegacy reports whether the config predates phase lists.
func (c *MissionConfig) IsLegacy() bool {
	return c != nil && len(c.Phases) == 0
}

// NormalizeMissionConfig returns a deep copy with defaults applied. Legacy configs are
// wrapped into a single synthetic legacy_descent phase built from the top-level
// spawn and primary objectives, order preserved.
func NormalizeMissionConfig(src *MissionConfig) *MissionConfig {
	if src == nil {
		return nil
	}
	cfg := *src
	cfg.Phases = nil
	cfg.BonusObjectives = copyObjectives(src.BonusObjectives)
	cfg.Rewards = Rewards{Success: copyTier(src.Rewards.Success), Partial: copyTier(src.Rewards.Partial)}

	if src.IsLegacy() {
		primaries := copyObjectives(src.Objectives.Primary)
		for i := range primaries {
			primaries[i].Primary = true
		}
		bonus := copyObjectives(src.Objectives.Bonus)
		for i := range bonus {
			bonus[i].Primary = false
		}
		cfg.BonusObjectives = append(cfg.BonusObjectives, bonus...)
		cfg.Phases = []PhaseDescriptor{{
			ID:         LegacyPhaseID,
			Mode:       ModeDescent,
			Spawn:      src.Spawn,
			Objectives: primaries,
			Completion: CompletionRule{Type: RuleLegacy},
		}}
	} else {
		cfg.Phases = make([]PhaseDescriptor, len(src.Phases))
		for i, phase := range src.Phases {
			phase.Objectives = copyObjectives(phase.Objectives)
			if phase.Mode == "" {
				phase.Mode = ModeDescent
			}
			if phase.Completion.Type == "" {
				phase.Completion.Type = defaultCompletionRule(phase.Mode)
			}
			cfg.Phases[i] = phase
		}
	}
	cfg.Objectives = LegacyObjectives{}

	mult := finite(cfg.Modifiers.LandingToleranceMult, 0)
	if mult <= 0 {
		mult = DefaultToleranceMult
	}
	cfg.Modifiers.LandingToleranceMult = mult
	return &cfg
}

func defaultCompletionRule(mode PhaseMode) CompletionRuleType {
	switch mode {
	case ModeGroundOps, ModeRescue:
		return RuleExternal
	case ModeReturnToOrbit:
		return RuleReachOrbit
	default:
		return RuleLegacy
	}
}

// IsDescentLike reports whether touchdowns are meaningful in this phase.
func IsDescentLike(p PhaseDescriptor) bool {
	if p.Mode == ModeDescent {
		return true
	}
	id := strings.ToLower(p.ID)
	return strings.Contains(id, "descent") || strings.Contains(id, "landing") || strings.Contains(id, "legacy")
}

// ResolveTimeLimit returns the configured limit, falling back on the category default.
func ResolveTimeLimit(cfg *MissionConfig) float64 {
	if cfg == nil {
		return DefaultTimeLimit
	}
	if limit := finite(cfg.FailureRules.TimeLimitSeconds, 0); limit > 0 {
		return limit
	}
	if cfg.Category == CategoryTutorial {
		return DefaultTimeLimitTutorial
	}
	return DefaultTimeLimit
}

// SpawnHeight returns the first positive spawn height across phases, or 0.
func (c *MissionConfig) SpawnHeight() float64 {
	if c == nil {
		return 0
	}
	if c.Spawn.HeightAboveSurface > 0 {
		return c.Spawn.HeightAboveSurface
	}
	for _, phase := range c.Phases {
		if phase.Spawn.HeightAboveSurface > 0 {
			return phase.Spawn.HeightAboveSurface
		}
	}
	return 0
}

// RewardFor returns the tier granted for a success state, or nil.
func (c *MissionConfig) RewardFor(state SuccessState) *RewardTier {
	if c == nil {
		return nil
	}
	switch state {
	case SuccessStateSuccess:
		return copyTier(c.Rewards.Success)
	case SuccessStatePartial:
		return copyTier(c.Rewards.Partial)
	}
	return nil
}

func copyObjectives(src []ObjectiveDescriptor) []ObjectiveDescriptor {
	if src == nil {
		return nil
	}
	out := make([]ObjectiveDescriptor, len(src))
	for i, obj := range src {
		obj.Params = copyParams(obj.Params)
		out[i] = obj
	}
	return out
}

func copyTier(t *RewardTier) *RewardTier {
	if t == nil {
		return nil
	}
	return &RewardTier{Credits: t.Credits, Unlocks: append([]string(nil), t.Unlocks...)}
}
