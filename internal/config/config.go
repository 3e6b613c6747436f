// Package config provides YAML-based configuration loading for pytutor.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/pytutor/internal/tutor"
)

// Config is the top-level pytutor configuration, loaded from config.yaml.
// Provider credentials are not part of the file; they come from the
// environment (see llm.ConfigFromEnv).
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Server   ServerConfig `yaml:"server"`
	Client   ClientConfig `yaml:"client"`
	Tutor    TutorConfig  `yaml:"tutor"`
}

// ServerConfig holds settings for the chat proxy.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RateLimit is the sustained number of chat requests per second.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
	// Timeout bounds one chat exchange. Zero uses the LLM timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// ClientConfig holds settings for the chat client.
type ClientConfig struct {
	ServerURL string `yaml:"server_url"`
	// HistoryWindow is how many prior messages accompany each request.
	HistoryWindow int `yaml:"history_window"`
}

// TutorConfig tunes the completion requests.
type TutorConfig struct {
	Temperature      *float64 `yaml:"temperature"`
	MaxTokens        int      `yaml:"max_tokens"`
	Summarize        *bool    `yaml:"summarize"`
	SummaryModel     string   `yaml:"summary_model"`
	SummaryMaxTokens int      `yaml:"summary_max_tokens"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional is like Load but returns Default when path does not exist.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath resolves the config file location:
// 1. PYTUTOR_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/pytutor/config.yaml
// 3. ~/.config/pytutor/config.yaml
func DefaultPath() string {
	if p := os.Getenv("PYTUTOR_CONFIG"); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "pytutor", "config.yaml")
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8787"
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 1
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = 5
	}
	if c.Client.ServerURL == "" {
		c.Client.ServerURL = "http://" + c.Server.Addr
	}
	if c.Client.HistoryWindow == 0 {
		c.Client.HistoryWindow = 2
	}

	d := tutor.DefaultConfig()
	if c.Tutor.Temperature == nil {
		c.Tutor.Temperature = &d.Temperature
	}
	if c.Tutor.MaxTokens == 0 {
		c.Tutor.MaxTokens = d.MaxTokens
	}
	if c.Tutor.Summarize == nil {
		c.Tutor.Summarize = &d.Summarize
	}
	if c.Tutor.SummaryMaxTokens == 0 {
		c.Tutor.SummaryMaxTokens = d.SummaryMaxTokens
	}
}

// validate checks that all fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server.rate_limit must not be negative")
	}
	if c.Server.Burst < 0 {
		errs = append(errs, "server.burst must not be negative")
	}
	if u, err := url.Parse(c.Client.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("client.server_url %q is not an absolute URL", c.Client.ServerURL))
	}
	if c.Client.HistoryWindow < 0 {
		errs = append(errs, "client.history_window must not be negative")
	}
	if t := *c.Tutor.Temperature; t < 0 || t > 2 {
		errs = append(errs, fmt.Sprintf("tutor.temperature %.2f out of range [0, 2]", t))
	}
	if c.Tutor.MaxTokens < 0 || c.Tutor.SummaryMaxTokens < 0 {
		errs = append(errs, "tutor token limits must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TutorService converts the file settings into a tutor.Config. The
// summary model defaults per provider when unset.
func (c *Config) TutorService(provider string) tutor.Config {
	tc := tutor.DefaultConfig()
	tc.Temperature = *c.Tutor.Temperature
	tc.MaxTokens = c.Tutor.MaxTokens
	tc.Summarize = *c.Tutor.Summarize
	tc.SummaryMaxTokens = c.Tutor.SummaryMaxTokens
	tc.SummaryModel = c.Tutor.SummaryModel
	if tc.SummaryModel == "" && provider == "openai" {
		tc.SummaryModel = "gpt-4o-mini"
	}
	return tc
}

// ParseLevel maps a level name to an slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", name, err)
	}
	return l, nil
}
