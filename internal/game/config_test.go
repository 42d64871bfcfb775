package game

import (
	"errors"
	"testing"
)

const legacyYAML = `
id: legacy-drop
category: tutorial
spawn:
  height_above_surface: 800
objectives:
  primary:
    - id: land
      type: landing
      params:
        target_zone_id: any
    - id: fast
      type: time_under
      params:
        limit_seconds: 90
  bonus:
    - id: frugal
      type: fuel_remaining
      params:
        min_ratio: 0.4
mission_modifiers:
  landing_tolerance_mult: 1.4
`

func TestLegacyConfigNormalizesToSinglePhase(t *testing.T) {
	cfg, err := ParseMissionConfig([]byte(legacyYAML))
	if err != nil {
		t.Fatalf("expected legacy config to parse, got %v", err)
	}
	if !cfg.IsLegacy() {
		t.Fatalf("expected config without phases to be legacy")
	}
	norm := NormalizeMissionConfig(cfg)
	if len(norm.Phases) != 1 {
		t.Fatalf("expected exactly one synthetic phase, got %d", len(norm.Phases))
	}
	phase := norm.Phases[0]
	if phase.ID != LegacyPhaseID {
		t.Fatalf("expected phase id %s, got %s", LegacyPhaseID, phase.ID)
	}
	if phase.Mode != ModeDescent || phase.Completion.Type != RuleLegacy {
		t.Fatalf("expected descent phase with legacy rule, got %s/%s", phase.Mode, phase.Completion.Type)
	}
	if len(phase.Objectives) != 2 || phase.Objectives[0].ID != "land" || phase.Objectives[1].ID != "fast" {
		t.Fatalf("expected primary objectives in order, got %+v", phase.Objectives)
	}
	for _, obj := range phase.Objectives {
		if !obj.Primary {
			t.Fatalf("expected legacy primary %s to be marked primary", obj.ID)
		}
	}
	if phase.Spawn.HeightAboveSurface != 800 {
		t.Fatalf("expected spawn carried over, got %.0f", phase.Spawn.HeightAboveSurface)
	}
	if len(norm.BonusObjectives) != 1 || norm.BonusObjectives[0].ID != "frugal" {
		t.Fatalf("expected bonus objective moved to bonus list, got %+v", norm.BonusObjectives)
	}
	if norm.Modifiers.LandingToleranceMult != 1.4 {
		t.Fatalf("expected tolerance 1.4, got %.2f", norm.Modifiers.LandingToleranceMult)
	}
	if cfg.Phases != nil {
		t.Fatalf("expected source config untouched")
	}
}

func TestNormalizeDefaultsPhaseRules(t *testing.T) {
	cfg := &MissionConfig{
		ID: "multi",
		Phases: []PhaseDescriptor{
			{ID: "drop"},
			{ID: "work", Mode: ModeGroundOps},
			{ID: "home", Mode: ModeReturnToOrbit},
		},
	}
	norm := NormalizeMissionConfig(cfg)
	want := []CompletionRuleType{RuleLegacy, RuleExternal, RuleReachOrbit}
	for i, phase := range norm.Phases {
		if phase.Completion.Type != want[i] {
			t.Fatalf("expected phase %s rule %s, got %s", phase.ID, want[i], phase.Completion.Type)
		}
	}
	if norm.Phases[0].Mode != ModeDescent {
		t.Fatalf("expected empty mode to default to descent, got %s", norm.Phases[0].Mode)
	}
	if norm.Modifiers.LandingToleranceMult != DefaultToleranceMult {
		t.Fatalf("expected default tolerance, got %.2f", norm.Modifiers.LandingToleranceMult)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := map[string]*MissionConfig{
		"empty id":  {},
		"dup phase": {ID: "x", Phases: []PhaseDescriptor{{ID: "a"}, {ID: "a"}}},
		"bad mode":  {ID: "x", Phases: []PhaseDescriptor{{ID: "a", Mode: "hover"}}},
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestResolveTimeLimit(t *testing.T) {
	if got := ResolveTimeLimit(&MissionConfig{Category: CategoryTutorial}); got != 900 {
		t.Fatalf("expected tutorial default 900, got %.0f", got)
	}
	if got := ResolveTimeLimit(&MissionConfig{Category: CategoryRescue}); got != 600 {
		t.Fatalf("expected default 600, got %.0f", got)
	}
	if got := ResolveTimeLimit(&MissionConfig{FailureRules: FailureRules{TimeLimitSeconds: 42}}); got != 42 {
		t.Fatalf("expected configured 42, got %.0f", got)
	}
}

func TestIsDescentLike(t *testing.T) {
	if !IsDescentLike(PhaseDescriptor{ID: "final_landing", Mode: ModeGroundOps}) {
		t.Fatalf("expected landing marker in id to count as descent")
	}
	if IsDescentLike(PhaseDescriptor{ID: "rescue", Mode: ModeRescue}) {
		t.Fatalf("expected rescue phase not to be descent-like")
	}
}
