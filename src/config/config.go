package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Logging controls the rotating log file used while the TUI owns the terminal.
type Logging struct {
	Level      string `yaml:"level"`
	Encoding   string `yaml:"encoding"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Server holds settings for the reference generation service.
type Server struct {
	Addr          string        `yaml:"addr"`
	Model         string        `yaml:"model"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	UTCPProviders string        `yaml:"utcp_providers,omitempty"`
}

// Config holds all configuration options
type Config struct {
	BackendURL     string        `yaml:"backend_url"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	DownloadDir    string        `yaml:"download_dir,omitempty"`
	PreviewURL     string        `yaml:"preview_url"`
	Logging        Logging       `yaml:"logging"`
	Server         Server        `yaml:"server"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BackendURL: "http://localhost:8001",
		PreviewURL: "http://localhost:3001",
		Logging: Logging{
			Level:      "info",
			Encoding:   "json",
			File:       filepath.Join(stateDir(), "promptly.log"),
			MaxSizeMB:  15,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Server: Server{
			Addr:          ":8001",
			Model:         "gemini-2.5-pro",
			SessionTTL:    time.Hour,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// configPath returns the path to the config file
func configPath() string {
	if p := os.Getenv("PROMPTLY_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "promptly", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "promptly", "config.yaml")
}

func stateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "promptly")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "promptly")
}

// Load reads the config file, falling back to defaults when it is missing,
// and applies environment overrides.
func Load() (*Config, error) {
	return LoadFile(configPath())
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	// REACT_APP_BACKEND_URL is honored so existing frontend .env files keep working.
	for _, key := range []string{"REACT_APP_BACKEND_URL", "PROMPTLY_BACKEND_URL"} {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			c.BackendURL = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup("PROMPTLY_DOWNLOAD_DIR"); ok && v != "" {
		c.DownloadDir = v
	}
	if v, ok := lookup("PROMPTLY_PREVIEW_URL"); ok && v != "" {
		c.PreviewURL = v
	}
	if v, ok := lookup("PROMPTLY_LOG_FILE"); ok && v != "" {
		c.Logging.File = v
	}
	if v, ok := lookup("PROMPTLY_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("PROMPTLY_SERVER_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
}

// Validate checks fields that would otherwise fail late. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var err error
	if strings.TrimSpace(c.BackendURL) == "" {
		err = multierr.Append(err, fmt.Errorf("backend_url must not be empty"))
	}
	if c.RequestTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("request_timeout must not be negative"))
	}
	if c.Server.SessionTTL <= 0 {
		err = multierr.Append(err, fmt.Errorf("server.session_ttl must be positive"))
	}
	if c.Server.SweepInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("server.sweep_interval must be positive"))
	}
	return err
}

// ResolveDownloadDir returns DownloadDir, defaulting to ~/Downloads or the
// working directory.
func (c *Config) ResolveDownloadDir() string {
	if c.DownloadDir != "" {
		return c.DownloadDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		dl := filepath.Join(home, "Downloads")
		if info, err := os.Stat(dl); err == nil && info.IsDir() {
			return dl
		}
	}
	wd, _ := os.Getwd()
	return wd
}

// Path returns the config file path (for help text)
func Path() string {
	return configPath()
}
