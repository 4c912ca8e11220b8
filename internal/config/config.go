package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
}

// ServerConfig describes how to reach the debug server
type ServerConfig struct {
	URL            string        `mapstructure:"url"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	// Breakpoints registered on every attach, as "path:line,line"
	Breakpoints []string `mapstructure:"breakpoints"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "ndjson",
		Quiet:   false,
		Verbose: false,
		Server: ServerConfig{
			URL:            "http://localhost:4747",
			PollInterval:   time.Second,
			RequestTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	// Config paths, lowest precedence first
	v.AddConfigPath("/etc/cfdbg/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "cfdbg"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigName(".cfdbg")

	// Environment variables
	v.SetEnvPrefix("CFDBG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("format", "CFDBG_FORMAT")
	v.BindEnv("quiet", "CFDBG_QUIET")
	v.BindEnv("verbose", "CFDBG_VERBOSE")
	v.BindEnv("server.url", "CFDBG_URL")
	v.BindEnv("server.poll_interval", "CFDBG_POLL_INTERVAL")

	setDefaults(v)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, err
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("server.url", cfg.Server.URL)
	v.SetDefault("server.poll_interval", cfg.Server.PollInterval)
	v.SetDefault("server.request_timeout", cfg.Server.RequestTimeout)
	v.SetDefault("session.handshake_timeout", cfg.Session.HandshakeTimeout)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var err error

	if c.Format != "ndjson" && c.Format != "text" {
		err = multierr.Append(err, fmt.Errorf("format must be ndjson or text, got %q", c.Format))
	}
	if u, perr := url.Parse(c.Server.URL); perr != nil || u.Scheme == "" || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("server.url must be an absolute URL, got %q", c.Server.URL))
	}
	if c.Server.PollInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("server.poll_interval must be positive, got %s", c.Server.PollInterval))
	}
	if c.Server.RequestTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("server.request_timeout must not be negative, got %s", c.Server.RequestTimeout))
	}
	if c.Session.HandshakeTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("session.handshake_timeout must be positive, got %s", c.Session.HandshakeTimeout))
	}

	return err
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	v := viper.New()

	v.SetConfigName(".cfdbg")
	v.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	return ""
}
