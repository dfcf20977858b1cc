// ABOUTME: Configuration loading and parsing for the discord emulator
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Reidentify policies for a session that sends Identify while already ready.
const (
	ReidentifyReissue = "reissue" // answer with a fresh READY dispatch
	ReidentifyReject  = "reject"  // close the connection
)

// Config represents the complete emulator configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Seed      SeedConfig      `yaml:"seed"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Inspector InspectorConfig `yaml:"inspector"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// GatewayConfig holds gateway protocol configuration
type GatewayConfig struct {
	HeartbeatInterval time.Duration `yaml:"-"`
	Reidentify        string        `yaml:"reidentify"`

	// Raw string value for YAML unmarshaling
	HeartbeatIntervalRaw string `yaml:"heartbeat_interval"`
}

// SeedConfig holds the static entities loaded into the store at startup
type SeedConfig struct {
	Guilds []SeedGuild `yaml:"guilds"`
}

// SeedGuild describes one guild and its channels
type SeedGuild struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Channels []SeedChannel `yaml:"channels"`
}

// SeedChannel describes one channel within a seed guild
type SeedChannel struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type int    `yaml:"type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// InspectorConfig holds the debug console configuration
type InspectorConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a configuration matching the emulator's built-in defaults:
// one guild ("Test Guild") with a single text channel ("general").
func Default() *Config {
	return &Config{
		Server: ServerConfig{HTTPAddr: "127.0.0.1:8001"},
		Gateway: GatewayConfig{
			HeartbeatInterval: 5 * time.Second,
			Reidentify:        ReidentifyReissue,
		},
		Seed: SeedConfig{
			Guilds: []SeedGuild{
				{
					ID:   "1",
					Name: "Test Guild",
					Channels: []SeedChannel{
						{ID: "10", Name: "general", Type: 0},
					},
				},
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: false, Path: "/metrics"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
// Fields left empty fall back to the Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(cfg)

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in zero values that Unmarshal may have cleared.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = def.Server.HTTPAddr
	}
	if cfg.Gateway.HeartbeatInterval == 0 {
		cfg.Gateway.HeartbeatInterval = def.Gateway.HeartbeatInterval
	}
	if cfg.Gateway.Reidentify == "" {
		cfg.Gateway.Reidentify = def.Gateway.Reidentify
	}
	if len(cfg.Seed.Guilds) == 0 {
		cfg.Seed.Guilds = def.Seed.Guilds
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = def.Metrics.Path
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Gateway.Reidentify != ReidentifyReissue && c.Gateway.Reidentify != ReidentifyReject {
		return fmt.Errorf("gateway.reidentify must be %q or %q, got %q",
			ReidentifyReissue, ReidentifyReject, c.Gateway.Reidentify)
	}

	if c.Gateway.HeartbeatInterval <= 0 {
		return fmt.Errorf("gateway.heartbeat_interval must be positive")
	}

	// Guild and channel identifiers must be unique across the whole seed:
	// a channel belongs to exactly one guild, and message routing looks
	// channels up by id alone.
	guildIDs := make(map[string]struct{})
	channelIDs := make(map[string]struct{})
	for _, g := range c.Seed.Guilds {
		if g.ID == "" {
			return fmt.Errorf("seed guild %q has empty id", g.Name)
		}
		if _, dup := guildIDs[g.ID]; dup {
			return fmt.Errorf("duplicate seed guild id %q", g.ID)
		}
		guildIDs[g.ID] = struct{}{}

		for _, ch := range g.Channels {
			if ch.ID == "" {
				return fmt.Errorf("seed channel %q in guild %q has empty id", ch.Name, g.ID)
			}
			if _, dup := channelIDs[ch.ID]; dup {
				return fmt.Errorf("duplicate seed channel id %q", ch.ID)
			}
			channelIDs[ch.ID] = struct{}{}
		}
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Gateway.HeartbeatIntervalRaw != "" {
		d, err := time.ParseDuration(cfg.Gateway.HeartbeatIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing heartbeat_interval %q: %w", cfg.Gateway.HeartbeatIntervalRaw, err)
		}
		cfg.Gateway.HeartbeatInterval = d
	}
	return nil
}
