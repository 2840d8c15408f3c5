package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir is the directory name under the user config root.
const ConfigDir = "foldpipe"

// getConfigDir returns the platform-appropriate config directory.
//   - Windows: %APPDATA%\foldpipe
//   - Unix: $XDG_CONFIG_HOME/foldpipe or ~/.config/foldpipe
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ConfigDir)
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// GetDefaultConfigPath returns the default config file path.
func GetDefaultConfigPath() string {
	dir := getConfigDir()
	if dir == "" {
		return "config.csv"
	}
	return filepath.Join(dir, "config.csv")
}

// PreferencesFile returns the theme preference file, honouring an explicit
// override in cfg.
func PreferencesFile(cfg *Config) string {
	if cfg != nil && cfg.PreferencesPath != "" {
		return cfg.PreferencesPath
	}
	dir := getConfigDir()
	if dir == "" {
		return "preferences.toml"
	}
	return filepath.Join(dir, "preferences.toml")
}

// LogDirectory returns the directory for log files written by the terminal UI.
func LogDirectory() string {
	dir := getConfigDir()
	if dir == "" {
		return filepath.Join(os.TempDir(), "foldpipe-logs")
	}
	return filepath.Join(dir, "logs")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	dir := getConfigDir()
	if dir == "" {
		return fmt.Errorf("could not determine config directory")
	}
	return os.MkdirAll(dir, 0700)
}
