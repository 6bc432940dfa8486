package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration, stored in ~/.worktracker/config.yaml.
type Config struct {
	API APIConfig `yaml:"api"`
}

// APIConfig holds the remote Work Tracker API settings.
type APIConfig struct {
	// URL is the base URL of the Work Tracker REST API, including the /api
	// prefix.
	URL string `yaml:"url"`
	// Timeout applies per request.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultAPIURL is the hosted Work Tracker backend.
	DefaultAPIURL = "https://work-tracker-backend-j9dj.onrender.com/api"
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second
)

// configTemplate is the annotated config written on first run.
const configTemplate = `# work-tracker configuration – ~/.worktracker/config.yaml
#
# All settings are optional; the built-in defaults shown below work out of
# the box against the hosted backend.

api:
  # Base URL of the Work Tracker REST API, including the /api prefix.
  # Point this at your own deployment if you self-host the backend.
  url: "` + DefaultAPIURL + `"

  # Per-request timeout.
  timeout: 30s
`

func defaults() *Config {
	return &Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: DefaultTimeout,
		},
	}
}

// BaseDir returns the root data directory (~/.worktracker). It holds the
// config file and the persisted session token; nothing else is stored
// client-side.
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".worktracker"), nil
}

// TokenPath returns the path of the persisted session token under base.
func TokenPath(base string) string {
	return filepath.Join(base, "auth", "token.json")
}

// Load reads the config file at path, creating it with annotated defaults on
// first run. Missing fields fall back to defaults; environment variables
// override the file (WORKTRACKER_API_URL).
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	} else if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if cfg.API.URL == "" {
		cfg.API.URL = DefaultAPIURL
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = DefaultTimeout
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WORKTRACKER_API_URL"); v != "" {
		cfg.API.URL = v
	}
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
