package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gravitrone/elog/cli/internal/api"
)

// PasswordEnv overrides the stored password when set.
const PasswordEnv = "ELOG_PASSWORD"

// Config holds CLI configuration stored at ~/.elog/config.
type Config struct {
	URL        string   `yaml:"url"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password,omitempty"`
	Instrument string   `yaml:"instrument"`
	Station    string   `yaml:"station,omitempty"`
	Experiment string   `yaml:"experiment,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Facilities bool     `yaml:"facilities,omitempty"`
	LogLevel   string   `yaml:"log_level,omitempty"`
}

// Dir returns the directory holding the config and log files.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".elog")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Instrument == "" {
		return nil, fmt.Errorf("config missing instrument")
	}
	if cfg.URL == "" {
		cfg.URL = api.DefaultBaseURL
	}
	if pw := os.Getenv(PasswordEnv); pw != "" {
		cfg.Password = pw
	}

	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(path, 0600)
}

// DefaultTags returns a copy of the tags preselected for new entries.
func (c *Config) DefaultTags() []string {
	if c == nil || len(c.Tags) == 0 {
		return nil
	}
	return append([]string(nil), c.Tags...)
}
