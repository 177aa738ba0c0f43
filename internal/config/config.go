// Package config loads the TOML configuration of the readback service.
package config

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/yegors/readback-check/internal/analyzer"
	"github.com/yegors/readback-check/pkg/logger"
)

// ErrInvalidConfig wraps every validation failure returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Storage  StorageConfig  `toml:"storage"`
	Analysis AnalysisConfig `toml:"analysis"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	ReadTimeoutSeconds int      `toml:"read_timeout_seconds"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig configures pkg/logger
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StorageConfig configures session history
type StorageConfig struct {
	// Path is the sqlite file; ":memory:" keeps history in memory, "" disables it
	Path          string `toml:"path"`
	HistoryWindow int    `toml:"history_window"`
}

// AnalysisConfig configures the analyzer and batch evaluation
type AnalysisConfig struct {
	DefaultMode       string `toml:"default_mode"`
	CacheSize         int    `toml:"cache_size"`
	EvaluationWorkers int    `toml:"evaluation_workers"`
	RequireCallsign   bool   `toml:"require_callsign"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               8080,
			ReadTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Path:          "data/readback.db",
			HistoryWindow: 10,
		},
		Analysis: AnalysisConfig{
			DefaultMode:       string(analyzer.ModeAuto),
			CacheSize:         1024,
			EvaluationWorkers: 0,
		},
	}
}

// Load reads the TOML file at path over the defaults and validates the result
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %q: %w", path, err)
	}
	return finish(cfg, md)
}

// LoadFromReader is Load for an already opened source
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return finish(cfg, md)
}

func finish(cfg *Config, md toml.MetaData) (*Config, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: unknown keys: %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all failures at once
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range [1, 65535]", c.Server.Port))
	}
	if c.Server.ReadTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout_seconds must not be negative"))
	}

	if !logger.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is invalid; valid values: debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		errs = append(errs, fmt.Errorf("logging.format %q is invalid; valid values: json, console", c.Logging.Format))
	}

	if c.Storage.HistoryWindow < 0 {
		errs = append(errs, fmt.Errorf("storage.history_window must not be negative"))
	}

	if _, err := analyzer.ParseMode(c.Analysis.DefaultMode); err != nil {
		errs = append(errs, fmt.Errorf("analysis.default_mode: %w", err))
	}
	if c.Analysis.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("analysis.cache_size must not be negative"))
	}
	if c.Analysis.EvaluationWorkers < 0 {
		errs = append(errs, fmt.Errorf("analysis.evaluation_workers must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// AnalyzerConfig converts the analysis section for analyzer.New
func (c *Config) AnalyzerConfig() analyzer.Config {
	mode, err := analyzer.ParseMode(c.Analysis.DefaultMode)
	if err != nil {
		mode = analyzer.ModeAuto
	}
	return analyzer.Config{CacheSize: c.Analysis.CacheSize, DefaultMode: mode}
}

// LoggerConfig converts the logging section for logger.New
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Logging.Level, Format: c.Logging.Format}
}
