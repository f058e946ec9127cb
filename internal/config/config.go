// Package config loads the datamimic YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vatskrypt/DataMimic/internal/engine/sdv"
	"github.com/vatskrypt/DataMimic/internal/logging"
	"github.com/vatskrypt/DataMimic/internal/schema"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "datamimic.yaml"

// Config is the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Engine     EngineConfig     `yaml:"engine"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// EngineConfig holds external generation engine settings.
type EngineConfig struct {
	Python         string `yaml:"python"`          // interpreter (default: python3)
	Script         string `yaml:"script"`          // engine script path
	TimeoutSeconds int    `yaml:"timeout_seconds"` // process lifetime bound
	DefaultModel   string `yaml:"default_model"`   // "auto", "ctgan", "copula", ...
	Disabled       bool   `yaml:"disabled"`        // skip the external engine entirely
}

// Timeout returns the configured process lifetime bound.
func (e *EngineConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// GenerationConfig holds synthesis defaults.
type GenerationConfig struct {
	// DefaultRows is the row count used when a request leaves it unset.
	// Zero means "match the source table".
	DefaultRows int `yaml:"default_rows"`
	// SampleLimit bounds the analyzer's numeric type sniff per column.
	SampleLimit int `yaml:"sample_limit"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Load reads the configuration file. A missing file yields defaults so
// the CLI works without any setup; a present but malformed file is an
// error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Path == "" {
		c.Store.Path = "datamimic.db"
	}
	if c.Engine.Python == "" {
		c.Engine.Python = os.Getenv(sdv.PythonEnvVar)
	}
	if c.Engine.Python == "" {
		c.Engine.Python = sdv.DefaultPython
	}
	if c.Engine.Script == "" {
		c.Engine.Script = os.Getenv(sdv.ScriptEnvVar)
	}
	if c.Engine.Script == "" {
		c.Engine.Script = sdv.DefaultScript
	}
	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = int(sdv.DefaultTimeout.Seconds())
	}
	if c.Engine.DefaultModel == "" {
		c.Engine.DefaultModel = "auto"
	}
	if c.Generation.SampleLimit <= 0 {
		c.Generation.SampleLimit = schema.DefaultSampleSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if f := c.Logging.Format; f != "text" && f != "json" {
		return fmt.Errorf("invalid log format %q (valid: text, json)", f)
	}
	return nil
}

// ConfigureLogging applies the logging section to the global logger.
func (c *Config) ConfigureLogging() {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	logging.SetLevel(level)
	logging.SetFormat(c.Logging.Format)
}
