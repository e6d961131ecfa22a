package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"dimledger/pkg/domain"
)

// ConfigPath is the config file read when no path is given.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	LogLevel        string `yaml:"logLevel"`
	StatusAuthority string `yaml:"statusAuthority"`
	InitialStatus   string `yaml:"initialStatus"`
	Metrics         bool   `yaml:"metrics"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() FileConfig {
	return FileConfig{
		LogLevel:        "info",
		StatusAuthority: domain.DefaultStatusAuthority,
		InitialStatus:   string(domain.StatusPending),
	}
}

// Load reads config from path. An empty path falls back to ConfigPath, which
// may be absent; an explicit path must exist.
func Load(path string) (FileConfig, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("LEDGER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LEDGER_STATUS_AUTHORITY"); v != "" {
		cfg.StatusAuthority = v
	}
	if v := os.Getenv("LEDGER_INITIAL_STATUS"); v != "" {
		cfg.InitialStatus = v
	}
	if v := os.Getenv("LEDGER_METRICS"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics = enabled
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: logLevel %q must be one of debug, info, warn, error", cfg.LogLevel)
	}
	if strings.TrimSpace(cfg.StatusAuthority) == "" {
		return errors.New("config: statusAuthority is required (set in config.yaml or LEDGER_STATUS_AUTHORITY)")
	}
	if strings.TrimSpace(cfg.InitialStatus) == "" {
		return errors.New("config: initialStatus must not be empty (set in config.yaml or LEDGER_INITIAL_STATUS)")
	}
	return nil
}
