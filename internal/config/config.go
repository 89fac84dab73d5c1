package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/moonbound/moonbound/pkg/api"
)

// Config is the client configuration, read from ~/.moonbound/config.yaml
// with environment overrides layered on top. Every field has a working
// default; the file is optional.
type Config struct {
	// APIBaseURL is the MoonBound API endpoint. Overridden by
	// MOONBOUND_API_URL.
	APIBaseURL string `yaml:"api_base_url"`
	// SessionLimit caps how many sessions the list screen requests.
	SessionLimit int `yaml:"session_limit"`
	// ImageStyle is the default style sent with image generation requests.
	ImageStyle string `yaml:"image_style"`
	// LogLevel sets the file logger level: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

const defaultSessionLimit = 20

// Dir returns ~/.moonbound, creating it if needed. It holds the config
// file, the persisted token and the log file.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.Dir: get home dir: %w", err)
	}
	dir := filepath.Join(home, ".moonbound")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("config.Dir: create %s: %w", dir, err)
	}
	return dir, nil
}

// Load reads the config file from dir and applies environment overrides.
// A missing file yields pure defaults; a malformed one is an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:   api.DefaultBaseURL,
		SessionLimit: defaultSessionLimit,
		ImageStyle:   api.DefaultImageStyle,
		LogLevel:     "info",
	}

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("MOONBOUND_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = api.DefaultBaseURL
	}
	if cfg.SessionLimit <= 0 {
		cfg.SessionLimit = defaultSessionLimit
	}
	if cfg.ImageStyle == "" {
		cfg.ImageStyle = api.DefaultImageStyle
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
