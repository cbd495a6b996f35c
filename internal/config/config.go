package config

import (
	"encoding/json"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"pubapi/internal/paths"
)

// CurrentVersion is the only config schema version accepted.
const CurrentVersion = 1

// EnvPrefix prefixes environment overrides, e.g. PUBAPI_DIFF_DENY.
const EnvPrefix = "PUBAPI"

// Config represents the complete pubapi configuration
type Config struct {
	Version int `json:"version" toml:"version" mapstructure:"version"`

	Render  RenderConfig  `json:"render" toml:"render" mapstructure:"render"`
	Diff    DiffConfig    `json:"diff" toml:"diff" mapstructure:"diff"`
	Storage StorageConfig `json:"storage" toml:"storage" mapstructure:"storage"`
	Logging LoggingConfig `json:"logging" toml:"logging" mapstructure:"logging"`
}

// RenderConfig controls how listings are built
type RenderConfig struct {
	WithBlanketImplementations bool `json:"withBlanketImplementations" toml:"withBlanketImplementations" mapstructure:"withBlanketImplementations"`
	// Workers bounds parallel rendering; 0 means one per CPU.
	Workers int `json:"workers" toml:"workers" mapstructure:"workers"`
}

// DiffConfig contains diff policy
type DiffConfig struct {
	// Deny lists change classes (removed, changed, added) that fail a diff.
	Deny []string `json:"deny" toml:"deny" mapstructure:"deny"`
	// DebugDump logs the sorted inputs of every diff at debug level.
	DebugDump bool `json:"debugDump" toml:"debugDump" mapstructure:"debugDump"`
}

// StorageConfig contains snapshot store settings
type StorageConfig struct {
	Enabled bool `json:"enabled" toml:"enabled" mapstructure:"enabled"`
	// Path is relative to the repository root unless absolute.
	Path string `json:"path" toml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" toml:"format" mapstructure:"format"`
	Level      string `json:"level" toml:"level" mapstructure:"level"`
	File       string `json:"file" toml:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" toml:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" toml:"maxBackups" mapstructure:"maxBackups"`
}

var (
	changeClasses = []string{"removed", "changed", "added"}
	logFormats    = []string{"human", "json"}
	logLevels     = []string{"debug", "info", "warn", "warning", "error"}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Render: RenderConfig{
			WithBlanketImplementations: false,
			Workers:                    0,
		},
		Diff: DiffConfig{
			Deny:      []string{},
			DebugDump: false,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    ".pubapi/snapshots.db",
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxBackups: 3,
		},
	}
}

// setDefaults registers every key so that env overrides apply even when no
// config file exists.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("render.withBlanketImplementations", d.Render.WithBlanketImplementations)
	v.SetDefault("render.workers", d.Render.Workers)
	v.SetDefault("diff.deny", d.Diff.Deny)
	v.SetDefault("diff.debugDump", d.Diff.DebugDump)
	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads configuration from .pubapi/config.json. A missing file
// yields the defaults; PUBAPI_* environment variables override both.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.GetRepoDir(repoRoot))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Diff.Deny == nil {
		cfg.Diff.Deny = []string{}
	}
	return &cfg, nil
}

// Save writes the configuration to .pubapi/config.json
func (c *Config) Save(repoRoot string) error {
	if _, err := paths.EnsureRepoDir(repoRoot); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.GetConfigPath(repoRoot), data, 0644)
}

// WriteJSON writes the configuration as indented JSON.
func (c *Config) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// WriteTOML writes the configuration as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Render.Workers < 0 {
		return &ConfigError{Field: "render.workers", Message: "must not be negative"}
	}
	for _, d := range c.Diff.Deny {
		if !slices.Contains(changeClasses, d) {
			return &ConfigError{Field: "diff.deny", Message: "unknown change class " + d + " (want removed, changed or added)"}
		}
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return &ConfigError{Field: "storage.path", Message: "required when storage is enabled"}
	}
	if c.Logging.Format != "" && !slices.Contains(logFormats, c.Logging.Format) {
		return &ConfigError{Field: "logging.format", Message: "unknown format " + c.Logging.Format}
	}
	if c.Logging.Level != "" && !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return &ConfigError{Field: "logging.level", Message: "unknown level " + c.Logging.Level}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
