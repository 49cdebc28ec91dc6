// Package config handles the XDG configuration directory, config.yaml and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskboard"

	// ConfigFile is the settings filename.
	ConfigFile = "config.yaml"

	// CookieFile stores session cookies of the REST backend.
	CookieFile = "cookies.json"

	// OAuthClientFile is the OAuth client credentials filename (google backend).
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename (google backend).
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKBOARD_SERVER_URL.
	EnvPrefix = "TASKBOARD"
)

// Backend names.
const (
	BackendREST   = "rest"
	BackendGoogle = "google"
)

// Defaults.
const (
	DefaultServerURL  = "http://localhost:5000/api"
	DefaultTimeout    = 10 * time.Second
	DefaultListenAddr = "localhost:8080"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `mapstructure:"-" yaml:"-"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"-" yaml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `mapstructure:"-" yaml:"-"`

	// ServerURL is the base URL of the REST API.
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`

	// Backend selects the service implementation: "rest" or "google".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Timeout bounds every backend call.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// ListenAddr is the address of the web dashboard.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// RateLimitRPS limits login and signup posts on the web dashboard. Zero disables.
	RateLimitRPS float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
}

// New creates a Config from the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskboard or $HOME/.config/taskboard.
// Values come from defaults, then config.yaml, then TASKBOARD_* environment variables.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetDefault("server_url", DefaultServerURL)
	v.SetDefault("backend", BackendREST)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("rate_limit_rps", 0)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Dir = dir

	switch cfg.Backend {
	case BackendREST, BackendGoogle:
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// CookiePath returns the path to the persisted session cookies.
func (c *Config) CookiePath() string {
	return filepath.Join(c.Dir, CookieFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// fileConfig is the on-disk shape written by WriteDefault.
type fileConfig struct {
	ServerURL    string  `yaml:"server_url"`
	Backend      string  `yaml:"backend"`
	Timeout      string  `yaml:"timeout"`
	ListenAddr   string  `yaml:"listen_addr"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
}

// WriteDefault writes config.yaml with the current settings.
// Fails if the file already exists.
func (c *Config) WriteDefault() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	if _, err := os.Stat(c.ConfigPath()); err == nil {
		return fmt.Errorf("%s: %w", c.ConfigPath(), fs.ErrExist)
	}
	data, err := yaml.Marshal(fileConfig{
		ServerURL:    c.ServerURL,
		Backend:      c.Backend,
		Timeout:      c.Timeout.String(),
		ListenAddr:   c.ListenAddr,
		RateLimitRPS: c.RateLimitRPS,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.ConfigPath(), data, 0600)
}
