package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Model settings
	Model struct {
		Default string `yaml:"default"`
	} `yaml:"model"`

	// VAD settings
	VAD struct {
		Enabled      bool    `yaml:"enabled"`
		Threshold    float64 `yaml:"threshold"`
		SilenceDelay float64 `yaml:"silence_delay"`
	} `yaml:"vad"`

	// Audio settings
	Audio struct {
		Device string `yaml:"device"`
	} `yaml:"audio"`

	// Store settings
	Store struct {
		// Path to the observations database file
		Path string `yaml:"path"`
	} `yaml:"store"`

	// Feedback settings
	Feedback struct {
		Enabled bool `yaml:"enabled"`
		// Voice is the startup feedback voice: male or female. The user
		// can switch by voice command at any time.
		Voice string `yaml:"voice"`
		// ClipDir holds the pre-generated voice clips, one subdirectory
		// per voice.
		ClipDir string `yaml:"clip_dir"`
	} `yaml:"feedback"`

	// Recording settings
	Recording struct {
		// Timezone overrides the GPS-derived recording timezone
		// (IANA name). Empty means derive from GPS, falling back to
		// America/Guayaquil.
		Timezone string `yaml:"timezone"`
		// Debounce window in milliseconds for identical final
		// transcripts delivered twice.
		DebounceMs int `yaml:"debounce_ms"`
		// Hotkey toggles listening on and off.
		Hotkey string `yaml:"hotkey"`
	} `yaml:"recording"`

	// Fincas maps extra spoken aliases to finca names, merged into the
	// built-in alias table at startup.
	Fincas map[string]string `yaml:"fincas"`

	// Server settings
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Model defaults
	cfg.Model.Default = ""

	// VAD defaults: short utterances, quick turnaround
	cfg.VAD.Enabled = true
	cfg.VAD.Threshold = 0.01
	cfg.VAD.SilenceDelay = 0.8

	// Audio defaults
	cfg.Audio.Device = ""

	// Store defaults
	cfg.Store.Path = "observations.db"

	// Feedback defaults
	cfg.Feedback.Enabled = true
	cfg.Feedback.Voice = "male"
	cfg.Feedback.ClipDir = "clips"

	// Recording defaults
	cfg.Recording.Timezone = ""
	cfg.Recording.DebounceMs = 200
	cfg.Recording.Hotkey = ""

	// Server defaults
	cfg.Server.Port = 50051
	cfg.Server.Host = "localhost"

	return cfg
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.conteorc > /etc/conteo/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	// If explicit path is provided, use it
	if explicitPath != "" {
		return Load(explicitPath)
	}

	// Try user config (~/.conteorc)
	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".conteorc")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	// Try system config (/etc/conteo/config.yaml)
	systemConfigPath := "/etc/conteo/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		cfg, err := Load(systemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
