package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}
	if !strings.Contains(configDir, "airscan") {
		t.Errorf("GetConfigDir() = %v, should contain 'airscan'", configDir)
	}

	if runtime.GOOS != "windows" && os.Getenv("XDG_CONFIG_HOME") == "" {
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	if cfg.Version != 1 {
		t.Errorf("New().Version = %v, want 1", cfg.Version)
	}
	if cfg.Devices == nil {
		t.Error("New().Devices should not be nil")
	}
	if !cfg.Discovery.Enabled {
		t.Error("New().Discovery.Enabled should be true by default")
	}
	if cfg.ListTimeout() != 5*time.Second {
		t.Errorf("ListTimeout() = %v, want 5s", cfg.ListTimeout())
	}
	if cfg.InitScanWindow() != 2500*time.Millisecond {
		t.Errorf("InitScanWindow() = %v, want 2.5s", cfg.InitScanWindow())
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile() on missing file error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("missing file should yield defaults, got version %d", cfg.Version)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `version: 1
discovery:
  enabled: false
  init_scan_window_ms: 1000
  list_timeout_seconds: 10
devices:
  "Office MFP": http://192.168.1.102:9095/eSCL
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Discovery.Enabled {
		t.Error("Discovery.Enabled should be false")
	}
	if cfg.InitScanWindow() != time.Second {
		t.Errorf("InitScanWindow() = %v, want 1s", cfg.InitScanWindow())
	}
	if cfg.ListTimeout() != 10*time.Second {
		t.Errorf("ListTimeout() = %v, want 10s", cfg.ListTimeout())
	}
	if got := cfg.Devices["Office MFP"]; got != "http://192.168.1.102:9095/eSCL" {
		t.Errorf("Devices[Office MFP] = %q", got)
	}
}

func TestLoadFromFile_BadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should reject unsupported version")
	}
}

func TestLoadFromFile_InvalidDeviceURL(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad scheme",
			yaml: "version: 1\ndevices:\n  printer: ftp://10.0.0.1/\n",
		},
		{
			name: "no host",
			yaml: "version: 1\ndevices:\n  printer: http://\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFromFile(path); err == nil {
				t.Error("LoadFromFile() should reject invalid device URL")
			}
		})
	}
}
