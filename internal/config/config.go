package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "airscan"
	configFile = "config.yaml"
)

// Defaults applied when the config file is absent or omits a field
const (
	// DefaultListTimeoutSeconds bounds how long device listing waits for
	// the table to become ready
	DefaultListTimeoutSeconds = 5

	// DefaultInitScanWindowMillis is the duration of the initial mDNS sweep
	DefaultInitScanWindowMillis = 2500
)

// Config is the on-disk configuration for the airscan backend
type Config struct {
	// Version is the config schema version (currently 1)
	Version int `yaml:"version"`

	// Discovery holds mDNS discovery preferences
	Discovery Discovery `yaml:"discovery"`

	// Devices maps statically configured device names to their eSCL base
	// URLs. Static devices skip mDNS discovery entirely.
	Devices map[string]string `yaml:"devices"`
}

// Discovery holds mDNS discovery preferences
type Discovery struct {
	// Enabled controls whether mDNS discovery runs at all. Disable it on
	// networks where only statically configured devices should be used.
	Enabled bool `yaml:"enabled"`

	// InitScanWindowMillis is the initial sweep duration in milliseconds
	InitScanWindowMillis int `yaml:"init_scan_window_ms"`

	// ListTimeoutSeconds bounds the device-listing wait in seconds
	ListTimeoutSeconds int `yaml:"list_timeout_seconds"`
}

// New returns a config populated with defaults
func New() *Config {
	return &Config{
		Version: 1,
		Discovery: Discovery{
			Enabled:              true,
			InitScanWindowMillis: DefaultInitScanWindowMillis,
			ListTimeoutSeconds:   DefaultListTimeoutSeconds,
		},
		Devices: make(map[string]string),
	}
}

// InitScanWindow returns the initial sweep duration
func (c *Config) InitScanWindow() time.Duration {
	return time.Duration(c.Discovery.InitScanWindowMillis) * time.Millisecond
}

// ListTimeout returns the device-listing wait bound
func (c *Config) ListTimeout() time.Duration {
	return time.Duration(c.Discovery.ListTimeoutSeconds) * time.Second
}

// GetConfigDir returns the OS-appropriate configuration directory for the
// application. This follows platform conventions:
//   - Linux: $XDG_CONFIG_HOME/airscan or $HOME/.config/airscan
//   - macOS: $HOME/.config/airscan (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\airscan
func GetConfigDir() (string, error) {
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

	default:
		// Unix-like systems: XDG_CONFIG_HOME or $HOME/.config
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

// GetConfigPath returns the full path to the configuration file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads the configuration from the default location. A missing file is
// not an error; defaults are returned.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFromFile(configPath)
}

// LoadFromFile reads the configuration from an explicit path. A missing
// file yields defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", cfg.Version)
	}
	if cfg.Devices == nil {
		cfg.Devices = make(map[string]string)
	}
	if cfg.Discovery.InitScanWindowMillis <= 0 {
		cfg.Discovery.InitScanWindowMillis = DefaultInitScanWindowMillis
	}
	if cfg.Discovery.ListTimeoutSeconds <= 0 {
		cfg.Discovery.ListTimeoutSeconds = DefaultListTimeoutSeconds
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks statically configured device entries
func (c *Config) validate() error {
	for name, rawURL := range c.Devices {
		if name == "" {
			return fmt.Errorf("device with empty name in config")
		}
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("device %q: invalid URL %q: %w", name, rawURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("device %q: URL %q must use http or https", name, rawURL)
		}
		if u.Host == "" {
			return fmt.Errorf("device %q: URL %q has no host", name, rawURL)
		}
	}
	return nil
}
