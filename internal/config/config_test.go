package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Render.WithBlanketImplementations {
		t.Error("blanket implementations should be off by default")
	}
	if len(cfg.Diff.Deny) != 0 {
		t.Errorf("Deny = %v, want empty", cfg.Diff.Deny)
	}
	if !cfg.Storage.Enabled || cfg.Storage.Path != ".pubapi/snapshots.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Logging.Format != "human" || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Render.Workers = 3
	cfg.Diff.Deny = []string{"removed", "changed"}
	cfg.Logging.Level = "debug"

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".pubapi", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("LoadConfig() = %+v, want %+v", loaded, cfg)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".pubapi"), 0o755); err != nil {
		t.Fatal(err)
	}
	data := `{"version": 1, "diff": {"deny": ["removed"]}}`
	if err := os.WriteFile(filepath.Join(root, ".pubapi", "config.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !reflect.DeepEqual(cfg.Diff.Deny, []string{"removed"}) {
		t.Errorf("Deny = %v", cfg.Diff.Deny)
	}
	if cfg.Storage.Path != ".pubapi/snapshots.db" || cfg.Logging.Level != "info" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PUBAPI_RENDER_WORKERS", "7")
	t.Setenv("PUBAPI_LOGGING_LEVEL", "warn")
	t.Setenv("PUBAPI_DIFF_DEBUGDUMP", "true")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Render.Workers != 7 {
		t.Errorf("Workers = %d, want 7", cfg.Render.Workers)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
	if !cfg.Diff.DebugDump {
		t.Error("DebugDump should be set from env")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".pubapi"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".pubapi", "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(root); err == nil {
		t.Error("LoadConfig() with invalid JSON should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults", func(*Config) {}, ""},
		{"version 0", func(c *Config) { c.Version = 0 }, "version"},
		{"version 2", func(c *Config) { c.Version = 2 }, "version"},
		{"negative workers", func(c *Config) { c.Render.Workers = -1 }, "render.workers"},
		{"all classes denied", func(c *Config) { c.Diff.Deny = []string{"removed", "changed", "added"} }, ""},
		{"unknown class", func(c *Config) { c.Diff.Deny = []string{"breaking"} }, "diff.deny"},
		{"storage without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"storage disabled without path", func(c *Config) { c.Storage.Enabled = false; c.Storage.Path = "" }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log level case", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -2 }, "logging.maxBackups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cerr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cerr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "version", Message: "unsupported version 99"}
	want := "config error in field 'version': unsupported version 99"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWriteTOML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Diff.Deny = []string{"removed"}

	var buf bytes.Buffer
	if err := cfg.WriteTOML(&buf); err != nil {
		t.Fatalf("WriteTOML() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[render]", "[diff]", "[storage]", "[logging]", `deny = ["removed"]`} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteTOML() output missing %q:\n%s", want, out)
		}
	}

	var back Config
	if _, err := toml.Decode(out, &back); err != nil {
		t.Fatalf("toml.Decode() error = %v", err)
	}
	if !reflect.DeepEqual(&back, cfg) {
		t.Errorf("TOML round trip = %+v, want %+v", back, cfg)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := DefaultConfig().WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"withBlanketImplementations": false`) {
		t.Errorf("WriteJSON() = %s", buf.String())
	}
}
