package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GitBinary != "git" {
		t.Errorf("GitBinary = %q, want git", cfg.GitBinary)
	}
	if cfg.Download.Retries != 0 {
		t.Errorf("Retries = %d, want 0", cfg.Download.Retries)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := writeConfig(t, `
package_host: https://packages.internal.example
cipd_binary: /opt/cipd
download:
  retries: 3
  retry_wait: 2s
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PackageHost != "https://packages.internal.example" {
		t.Errorf("PackageHost = %q", cfg.PackageHost)
	}
	if cfg.CIPDBinary != "/opt/cipd" {
		t.Errorf("CIPDBinary = %q", cfg.CIPDBinary)
	}
	if cfg.Download.Retries != 3 || cfg.Download.RetryWait != 2*time.Second {
		t.Errorf("Download = %+v", cfg.Download)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// Untouched fields keep their defaults.
	if cfg.GitBinary != "git" {
		t.Errorf("GitBinary = %q, want default", cfg.GitBinary)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "package_host not a url", content: "package_host: not-a-url"},
		{name: "empty git binary", content: `git_binary: ""`},
		{name: "retries over limit", content: "download:\n  retries: 99"},
		{name: "unknown log level", content: "logging:\n  level: loud"},
		{name: "unknown log format", content: "logging:\n  format: xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load() succeeded, want validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() succeeded, want read error")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "package_host: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("Load() succeeded, want parse error")
	}
}
