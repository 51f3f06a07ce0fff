// Package config resolves gantry settings from defaults, an optional YAML
// file, a .env file and GANTRY_* environment variables. Command-line flags
// are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joshharrison/gantry/internal/engine"
	"github.com/joshharrison/gantry/internal/snapshot"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "gantry.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GANTRY_"

// Config is the resolved settings for one invocation.
type Config struct {
	// StoreDir is the root of the file-backed timeline store. Ignored when
	// DatabaseURL is set.
	StoreDir    string `yaml:"store_dir"`
	DatabaseURL string `yaml:"database_url"`
	HistoryDir  string `yaml:"history_dir"`
	Addr        string `yaml:"addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Model      string `yaml:"model"`
	GanttWidth int    `yaml:"gantt_width"`

	Analytics engine.Options `yaml:"analytics"`

	// AnthropicAPIKey is only read from the environment.
	AnthropicAPIKey string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StoreDir:   "data",
		HistoryDir: snapshot.DefaultDir,
		Addr:       ":7171",
		LogLevel:   "info",
		LogFormat:  "text",
		GanttWidth: 60,
	}
}

// Load resolves settings. An explicit path must exist; with an empty path
// DefaultFile is used when present. envFile names a dotenv file whose values
// never override variables already set in the process environment.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"STORE_DIR":    &c.StoreDir,
		"DATABASE_URL": &c.DatabaseURL,
		"HISTORY_DIR":  &c.HistoryDir,
		"ADDR":         &c.Addr,
		"LOG_LEVEL":    &c.LogLevel,
		"LOG_FORMAT":   &c.LogFormat,
		"MODEL":        &c.Model,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"GANTT_WIDTH":        &c.GanttWidth,
		"OVERLOAD_THRESHOLD": &c.Analytics.OverloadThreshold,
		"TOP_PEOPLE":         &c.Analytics.TopPeople,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	if v, ok := lookup("ANTHROPIC_API_KEY"); ok {
		c.AnthropicAPIKey = v
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.GanttWidth < 0 {
		return fmt.Errorf("gantt_width must be non-negative")
	}
	if c.Analytics.OverloadThreshold < 0 {
		return fmt.Errorf("analytics.overload_threshold must be non-negative")
	}
	if c.Analytics.TopPeople < 0 {
		return fmt.Errorf("analytics.top_people must be non-negative")
	}
	if c.StoreDir == "" && c.DatabaseURL == "" {
		return fmt.Errorf("either store_dir or database_url is required")
	}
	return nil
}
