package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment keys read by LoadConfig.
const (
	EnvBaseURL = "BISTRO_API_URL"
	EnvTimeout = "BISTRO_TIMEOUT"
	EnvSession = "BISTRO_SESSION"
)

// Config represents client configuration.
type Config struct {
	BaseURL     string        `yaml:"api_url"`
	Timeout     time.Duration `yaml:"timeout"`
	SessionPath string        `yaml:"session_path"`
	UserAgent   string        `yaml:"user_agent"`
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://localhost:5000/api",
		Timeout:     15 * time.Second,
		SessionPath: defaultSessionPath(),
		UserAgent:   "bistro",
	}
}

// LoadConfig builds a Config from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded first when present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvSession); v != "" {
		c.SessionPath = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bistro-session.yaml"
	}
	return filepath.Join(dir, "bistro", "session.yaml")
}
