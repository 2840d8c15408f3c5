// Package config provides configuration management for foldpipe.
package config

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/foldlab/foldpipe/internal/constants"
)

// Config represents the client configuration
type Config struct {
	// Pipeline server base URL, e.g. http://localhost:5000
	ServerURL string `env:"SERVER_URL"`

	// Proxy settings
	ProxyMode     string `env:"PROXY_MODE"` // "no-proxy", "ntlm", "basic", "system"
	ProxyHost     string `env:"PROXY_HOST"`
	ProxyPort     int    `env:"PROXY_PORT"`
	ProxyUser     string `env:"PROXY_USER"`
	ProxyPassword string `env:"PROXY_PASSWORD"` // never read from or written to the config file
	NoProxy       string `env:"NO_PROXY"`       // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool   `env:"PROXY_WARMUP"`

	// Theme preference file (TOML). Empty means the default location.
	PreferencesPath string `env:"PREFERENCES_PATH"`

	// Readiness probe retry count
	ProbeRetries int `env:"PROBE_RETRIES"`

	// Log level: debug, info, warn, error
	LogLevel string `env:"LOG_LEVEL"`
}

// Default returns a config with every field at its default value.
func Default() *Config {
	return &Config{
		ServerURL:    constants.DefaultServerURL,
		ProxyMode:    "no-proxy",
		ProbeRetries: constants.ProbeRetries,
		LogLevel:     "info",
	}
}

// LoadConfigCSV loads configuration from a CSV file
// CSV format: key,value pairs
func LoadConfigCSV(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // Return defaults if config doesn't exist
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read config CSV: %w", err)
	}

	for i, record := range records {
		if i == 0 && len(record) >= 2 && strings.ToLower(record[0]) == "key" {
			continue
		}
		if len(record) < 2 {
			continue
		}

		key := strings.TrimSpace(strings.ToLower(record[0]))
		value := strings.TrimSpace(record[1])

		switch key {
		case "server_url":
			cfg.ServerURL = value
		case "proxy_mode":
			cfg.ProxyMode = value
		case "proxy_host":
			cfg.ProxyHost = value
		case "proxy_port":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.ProxyPort = v
			}
		case "proxy_user":
			cfg.ProxyUser = value
		case "proxy_password":
			// SECURITY: passwords come from FOLDPIPE_PROXY_PASSWORD or the prompt
			if value != "" {
				log.Printf("[WARN] proxy_password in config file is ignored - use FOLDPIPE_PROXY_PASSWORD")
			}
		case "no_proxy":
			cfg.NoProxy = value
		case "proxy_warmup":
			cfg.ProxyWarmup = parseBool(value)
		case "preferences_path":
			cfg.PreferencesPath = value
		case "probe_retries":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.ProbeRetries = v
			}
		case "log_level":
			cfg.LogLevel = value
		}
	}

	return cfg, nil
}

// SaveConfigCSV saves configuration to a CSV file
// CSV format: key,value pairs
func SaveConfigCSV(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"key", "value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// proxy_password intentionally omitted
	for _, record := range cfg.Records() {
		if record[1] == "" || record[1] == "0" || record[1] == "false" {
			continue
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Records returns the persisted key/value pairs in file order.
func (c *Config) Records() [][]string {
	return [][]string{
		{"server_url", c.ServerURL},
		{"proxy_mode", c.ProxyMode},
		{"proxy_host", c.ProxyHost},
		{"proxy_port", strconv.Itoa(c.ProxyPort)},
		{"proxy_user", c.ProxyUser},
		{"no_proxy", c.NoProxy},
		{"proxy_warmup", strconv.FormatBool(c.ProxyWarmup)},
		{"preferences_path", c.PreferencesPath},
		{"probe_retries", strconv.Itoa(c.ProbeRetries)},
		{"log_level", c.LogLevel},
	}
}

// MergeWithFlags applies command-line overrides. Empty values leave the
// current setting alone.
func (c *Config) MergeWithFlags(serverURL, proxyMode, proxyHost string, proxyPort int) {
	if serverURL != "" {
		c.ServerURL = serverURL
	}
	if proxyMode != "" {
		c.ProxyMode = proxyMode
	}
	if proxyHost != "" {
		c.ProxyHost = proxyHost
	}
	if proxyPort > 0 {
		c.ProxyPort = proxyPort
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.ServerURL = strings.TrimSuffix(strings.TrimSpace(c.ServerURL), "/")
	if c.ServerURL != "" && !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		c.ServerURL = "http://" + c.ServerURL
	}
	if c.ProxyMode == "" {
		c.ProxyMode = "no-proxy"
	}
}

// Validate checks the settings needed to reach the server.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is empty")
	}
	switch strings.ToLower(c.ProxyMode) {
	case "no-proxy", "system", "basic", "ntlm":
	default:
		return fmt.Errorf("unsupported proxy mode: %s", c.ProxyMode)
	}
	if c.ProbeRetries < 0 {
		return fmt.Errorf("probe_retries must be >= 0, got %d", c.ProbeRetries)
	}
	return nil
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}
