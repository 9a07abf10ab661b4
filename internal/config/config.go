package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Profiler ProfilerConfig `toml:"profiler" yaml:"profiler"`
	Report   ReportConfig   `toml:"report" yaml:"report"`
	State    StateConfig    `toml:"state" yaml:"state"`
	Logging  LogConfig      `toml:"logging" yaml:"logging"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Script   ScriptConfig   `toml:"script" yaml:"script"`
}

// ProfilerConfig holds turn budget and flush thresholds.
type ProfilerConfig struct {
	Limit          float64  `envconfig:"TICKPROF_LIMIT" default:"20" toml:"limit" yaml:"limit"`
	TickLimit      float64  `envconfig:"TICKPROF_TICK_LIMIT" default:"500" toml:"tick_limit" yaml:"tick_limit"`
	LongTickRatio  *float64 `envconfig:"TICKPROF_LONG_TICK_RATIO" toml:"long_tick_ratio" yaml:"long_tick_ratio"`
	PanicTickRatio *float64 `envconfig:"TICKPROF_PANIC_TICK_RATIO" toml:"panic_tick_ratio" yaml:"panic_tick_ratio"`
	Clock          string   `envconfig:"TICKPROF_CLOCK" default:"cpu" toml:"clock" yaml:"clock"`
}

// ReportConfig holds report sink configuration.
type ReportConfig struct {
	Dir    string `envconfig:"TICKPROF_REPORT_DIR" toml:"dir" yaml:"dir"`
	Stdout bool   `envconfig:"TICKPROF_REPORT_STDOUT" default:"true" toml:"stdout" yaml:"stdout"`
	Log    bool   `envconfig:"TICKPROF_REPORT_LOG" default:"false" toml:"log" yaml:"log"`
}

// StateConfig holds turn state persistence configuration.
type StateConfig struct {
	Path string `envconfig:"TICKPROF_STATE" toml:"path" yaml:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development" yaml:"development"`
}

// ServerConfig holds the status server configuration.
type ServerConfig struct {
	Enabled           bool     `envconfig:"SERVER_ENABLED" default:"false" toml:"enabled" yaml:"enabled"`
	Addr              string   `envconfig:"SERVER_ADDR" default:":9102" toml:"addr" yaml:"addr"`
	AllowOrigins      []string `envconfig:"CORS_ORIGINS" default:"*" toml:"allow_origins" yaml:"allow_origins"`
	RequestsPerSecond int      `envconfig:"RATE_LIMIT_RPS" default:"5" toml:"requests_per_second" yaml:"requests_per_second"`
	Burst             int      `envconfig:"RATE_LIMIT_BURST" default:"10" toml:"burst" yaml:"burst"`
}

// ScriptConfig holds script host configuration.
type ScriptConfig struct {
	Turns   int      `envconfig:"TICKPROF_TURNS" default:"1" toml:"turns" yaml:"turns"`
	Timeout Duration `envconfig:"TICKPROF_SCRIPT_TIMEOUT" default:"5s" toml:"timeout" yaml:"timeout"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile loads the environment first and then applies the keys present in
// path on top. The format follows the extension: .toml, .yaml or .yml.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Profiler: ProfilerConfig{
			Limit:     20,
			TickLimit: 500,
			Clock:     "cpu",
		},
		Report: ReportConfig{
			Stdout: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Server: ServerConfig{
			Enabled:           false,
			Addr:              ":9102",
			AllowOrigins:      []string{"*"},
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Script: ScriptConfig{
			Turns:   1,
			Timeout: Duration(5 * time.Second),
		},
	}
}

// Validate rejects values the tracer cannot run with.
func (c *Config) Validate() error {
	if c.Profiler.Limit <= 0 {
		return fmt.Errorf("profiler limit must be positive, got %v", c.Profiler.Limit)
	}
	if r := c.Profiler.LongTickRatio; r != nil && *r <= 0 {
		return fmt.Errorf("long tick ratio must be positive, got %v", *r)
	}
	if r := c.Profiler.PanicTickRatio; r != nil && *r <= 0 {
		return fmt.Errorf("panic tick ratio must be positive, got %v", *r)
	}
	if c.Server.Enabled && c.Server.RequestsPerSecond <= 0 {
		return fmt.Errorf("server rate limit must be positive, got %d", c.Server.RequestsPerSecond)
	}
	if c.Script.Turns < 1 {
		return fmt.Errorf("turns must be at least 1, got %d", c.Script.Turns)
	}
	return nil
}
