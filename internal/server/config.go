package server

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"LanderRescue/internal/game"
	"LanderRescue/internal/platform/config"
)

type worldConfig struct {
	Touchdown *game.ThresholdOverrides `json:"touchdown"`
}

// EnvConfig is the process configuration read from the environment.
type EnvConfig struct {
	Addr        string `env:"LANDER_ADDR" envDefault:":8080"`
	DBPath      string `env:"LANDER_DB_PATH" envDefault:"data/lander.db"`
	TuningPath  string `env:"LANDER_TUNING_PATH" envDefault:"configs/world.json"`
	MissionsDir string `env:"LANDER_MISSIONS_DIR"`
}

// AppConfig is everything StartApp needs.
type AppConfig struct {
	Addr        string
	DBPath      string // empty disables persistence
	TuningPath  string
	MissionsDir string
	Overrides   game.ThresholdOverrides
	Logger      *log.Logger
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Addr:       ":8080",
		TuningPath: "configs/world.json",
	}
}

// LoadAppConfig reads EnvConfig and maps it onto AppConfig.
func LoadAppConfig() (AppConfig, error) {
	var env EnvConfig
	if err := config.ParseEnv(&env); err != nil {
		return AppConfig{}, err
	}
	cfg := DefaultAppConfig()
	cfg.Addr = env.Addr
	cfg.DBPath = env.DBPath
	cfg.TuningPath = env.TuningPath
	cfg.MissionsDir = env.MissionsDir
	return cfg, nil
}

func loadThresholdsFromFile(path string, base game.TouchdownThresholds) (game.TouchdownThresholds, error) {
	if path == "" {
		return game.SanitizeTouchdownThresholds(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return game.SanitizeTouchdownThresholds(base), nil
		}
		return game.SanitizeTouchdownThresholds(base), fmt.Errorf("read touchdown config %q: %w", cleanPath, err)
	}
	var cfg worldConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return game.SanitizeTouchdownThresholds(base), fmt.Errorf("parse touchdown config %q: %w", cleanPath, err)
	}
	return cfg.Touchdown.Apply(base), nil
}

func resolveThresholds(cfg AppConfig, logger *log.Logger) game.TouchdownThresholds {
	params := game.DefaultTouchdownThresholds()
	loaded, err := loadThresholdsFromFile(cfg.TuningPath, params)
	if err != nil {
		logger.Printf("touchdown config: %v (using defaults)", err)
	} else {
		params = loaded
	}
	return cfg.Overrides.Apply(params)
}
