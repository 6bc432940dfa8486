package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("expected default URL %q, got %q", DefaultAPIURL, cfg.API.URL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.API.Timeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
api:
  url: "http://localhost:8000/api"
  timeout: 5s
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.URL != "http://localhost:8000/api" {
		t.Errorf("expected url from file, got %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.API.Timeout)
	}
}

func TestLoadWritesAnnotatedDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("expected default URL, got %q", cfg.API.URL)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if !strings.Contains(string(data), "# work-tracker configuration") {
		t.Error("written template is missing its documentation header")
	}

	// The template itself must round-trip.
	cfg2, err := Load(path)
	if err != nil {
		t.Fatalf("reloading template failed: %v", err)
	}
	if cfg2.API.URL != DefaultAPIURL || cfg2.API.Timeout != DefaultTimeout {
		t.Errorf("template round-trip mismatch: %+v", cfg2)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("WORKTRACKER_API_URL", "http://override.example/api")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.URL != "http://override.example/api" {
		t.Errorf("env override not applied, got %q", cfg.API.URL)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	content := `
api:
  url: "http://localhost:9999/api"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout for unset field, got %v", cfg.API.Timeout)
	}
}
