package game

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetMissionValid(t *testing.T) {
	cfg, err := GetMission("tutorial-landing")
	if err != nil {
		t.Fatalf("expected no error retrieving tutorial-landing, got %v", err)
	}
	if cfg.ID != "tutorial-landing" {
		t.Errorf("expected mission ID tutorial-landing, got %s", cfg.ID)
	}
	if !cfg.IsLegacy() {
		t.Errorf("expected tutorial mission to use the legacy shape")
	}
	if got := ResolveTimeLimit(cfg); got != DefaultTimeLimitTutorial {
		t.Errorf("expected tutorial limit %.0f, got %.0f", DefaultTimeLimitTutorial, got)
	}
}

func TestGetMissionInvalid(t *testing.T) {
	cfg, err := GetMission("invalid")
	if err == nil {
		t.Fatalf("expected error retrieving invalid mission, got nil")
	}
	if cfg != nil {
		t.Fatalf("expected nil config for invalid ID")
	}
	expected := "mission not found: invalid"
	if err.Error() != expected {
		t.Fatalf("expected error %q, got %q", expected, err.Error())
	}
}

func TestBuiltinMissionsValidate(t *testing.T) {
	for _, id := range MissionIDs() {
		cfg, err := GetMission(id)
		if err != nil {
			t.Fatalf("expected %s, got %v", id, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("expected %s to validate, got %v", id, err)
		}
	}
}

func TestLoadMissionDir(t *testing.T) {
	dir := t.TempDir()
	doc := `
id: test-canyon
category: campaign
phases:
  - id: canyon_descent
    objectives:
      - id: land
        type: landing
        is_primary: true
        params:
          target_zone_id: canyon-floor
    completion:
      type: landed_in_zone
      zone_id: canyon-floor
`
	if err := os.WriteFile(filepath.Join(dir, "canyon.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write mission: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}
	t.Cleanup(func() { delete(MissionRegistry, "test-canyon") })

	ids, err := LoadMissionDir(dir)
	if err != nil {
		t.Fatalf("expected mission dir to load, got %v", err)
	}
	if len(ids) != 1 || ids[0] != "test-canyon" {
		t.Fatalf("expected [test-canyon], got %v", ids)
	}
	cfg, err := RegistrySource("test-canyon").MissionConfig()
	if err != nil || cfg == nil {
		t.Fatalf("expected registry source to resolve, got %v/%v", cfg, err)
	}
	if cfg.Phases[0].Completion.ZoneID != "canyon-floor" {
		t.Fatalf("expected completion zone canyon-floor, got %q", cfg.Phases[0].Completion.ZoneID)
	}
}

func TestRegistrySourceUnknown(t *testing.T) {
	cfg, err := RegistrySource("nope").MissionConfig()
	if err != nil || cfg != nil {
		t.Fatalf("expected nil config and nil error, got %v/%v", cfg, err)
	}
}
