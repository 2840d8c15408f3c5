package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name in Config.
const EnvPrefix = "FOLDPIPE_"

// ApplyEnv overlays FOLDPIPE_* environment variables on cfg. Variables from
// the optional dotenv files are loaded first; variables already present in
// the process environment win.
func ApplyEnv(cfg *Config, dotenvFiles ...string) error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.normalize()
	return nil
}

// Load builds the effective configuration: defaults, then the CSV file at
// path, then .env and FOLDPIPE_* variables.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfigCSV(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	return cfg, nil
}
