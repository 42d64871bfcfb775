package server

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"LanderRescue/internal/game"
)

func TestLoadThresholdsMissingFileUsesDefaults(t *testing.T) {
	got, err := loadThresholdsFromFile(filepath.Join(t.TempDir(), "nope.json"), game.DefaultTouchdownThresholds())
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if got != game.DefaultTouchdownThresholds() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestLoadThresholdsMergesTouchdownBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.json")
	doc := `{"touchdown": {"safeVertical": 5, "settleSeconds": 0}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got, err := loadThresholdsFromFile(path, game.DefaultTouchdownThresholds())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SafeVertical != 5 || got.SettleSeconds != 0 {
		t.Fatalf("expected merged overrides, got %+v", got)
	}
	if got.DestroyVertical != game.DefaultDestroyVertical {
		t.Fatalf("expected untouched fields to keep defaults, got %.1f", got.DestroyVertical)
	}
}

func TestResolveThresholdsBadFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var buf bytes.Buffer
	tilt := 12.0
	cfg := AppConfig{TuningPath: path, Overrides: game.ThresholdOverrides{SafeTilt: &tilt}}
	got := resolveThresholds(cfg, log.New(&buf, "", 0))
	if got.SafeTilt != 12 || got.SafeVertical != game.DefaultSafeVertical {
		t.Fatalf("expected defaults plus override, got %+v", got)
	}
	if !strings.Contains(buf.String(), "touchdown config") {
		t.Fatalf("expected parse failure to be logged, got %q", buf.String())
	}
}

func TestLoadAppConfigFromEnv(t *testing.T) {
	t.Setenv("LANDER_ADDR", ":9999")
	t.Setenv("LANDER_DB_PATH", "")
	t.Setenv("LANDER_MISSIONS_DIR", "missions")
	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("load app config: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.MissionsDir != "missions" {
		t.Fatalf("expected env values, got %+v", cfg)
	}
	if cfg.TuningPath != "configs/world.json" {
		t.Fatalf("expected default tuning path, got %q", cfg.TuningPath)
	}
}
