package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName      = "ecocharge"
	settingsFile = "settings.yaml"
)

// Defaults applied when no settings file exists.
const (
	// DefaultServerURL is the base address of the charging service.
	DefaultServerURL = "http://127.0.0.1:8000"

	// DefaultPollIntervalSeconds is the admin dashboard refresh cadence.
	DefaultPollIntervalSeconds = 2

	// DefaultDiscoverTimeoutSeconds is the mDNS endpoint scan timeout.
	DefaultDiscoverTimeoutSeconds = 10
)

var (
	// Global settings instance (loaded lazily)
	globalSettings     *Settings
	globalSettingsOnce sync.Once
	globalSettingsErr  error

	// Mutex for thread-safe file operations
	fileMutex sync.Mutex
)

// Settings holds user preferences for the console.
type Settings struct {
	// Version is the settings schema version
	Version int `yaml:"version"`

	// ServerURL is the base address of the charging service
	ServerURL string `yaml:"server_url"`

	// PollIntervalSeconds is the dashboard refresh cadence in seconds
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// DiscoverTimeoutSeconds is the endpoint scan timeout in seconds
	DiscoverTimeoutSeconds int `yaml:"discover_timeout_seconds"`
}

// NewSettings returns settings populated with defaults.
func NewSettings() *Settings {
	return &Settings{
		Version:                1,
		ServerURL:              DefaultServerURL,
		PollIntervalSeconds:    DefaultPollIntervalSeconds,
		DiscoverTimeoutSeconds: DefaultDiscoverTimeoutSeconds,
	}
}

// PollInterval returns the dashboard refresh cadence as a duration.
func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// DiscoverTimeout returns the endpoint scan timeout as a duration.
func (s *Settings) DiscoverTimeout() time.Duration {
	return time.Duration(s.DiscoverTimeoutSeconds) * time.Second
}

// Dir returns the OS-appropriate configuration directory for the application.
// This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/ecocharge or $HOME/.config/ecocharge
//   - macOS: $HOME/.config/ecocharge (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\ecocharge
func Dir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// SettingsPath returns the full path to the settings file.
func SettingsPath() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, settingsFile), nil
}

// EnsureDir ensures the configuration directory exists.
// Creates the directory with user-only permissions if it doesn't exist.
func EnsureDir() error {
	configDir, err := Dir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// Load loads the settings from disk.
// If the file doesn't exist, returns new default settings.
// Thread-safe - multiple calls will return the same instance.
func Load() (*Settings, error) {
	globalSettingsOnce.Do(func() {
		globalSettings, globalSettingsErr = loadFromDisk()
	})
	return globalSettings, globalSettingsErr
}

// loadFromDisk performs the actual file loading.
func loadFromDisk() (*Settings, error) {
	settingsPath, err := SettingsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings path: %w", err)
	}

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return NewSettings(), nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings, err := parseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return settings, nil
}

// parseSettings parses settings from YAML and fills missing fields with defaults.
func parseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	if settings.Version != 1 {
		return nil, fmt.Errorf("unsupported settings version: %d (expected 1)", settings.Version)
	}

	if settings.ServerURL == "" {
		settings.ServerURL = DefaultServerURL
	}
	if settings.PollIntervalSeconds <= 0 {
		settings.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if settings.DiscoverTimeoutSeconds <= 0 {
		settings.DiscoverTimeoutSeconds = DefaultDiscoverTimeoutSeconds
	}

	return &settings, nil
}

// Save saves the settings to disk.
// Performs an atomic write to prevent corruption on crash.
func (s *Settings) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to ensure config directory exists: %w", err)
	}

	settingsPath, err := SettingsPath()
	if err != nil {
		return fmt.Errorf("failed to get settings path: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	header := []byte(`# EcoCharge Console Settings
# This file stores operator preferences for the EcoCharge console.
#
# Security Note: the admin credential is NOT stored in this file.
# It lives in a separate file managed by the login/logout commands.
#
# Location: ` + settingsPath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := settingsPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary settings file: %w", err)
	}

	if err := os.Rename(tmpPath, settingsPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings file: %w", err)
	}

	return nil
}
