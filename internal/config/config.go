package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"datafixer.ai/internal/datafix/labsfixes"
	"datafixer.ai/internal/datafix/remap"
)

type Config struct {
	// Mode is the pack mode. Only normal and expert select mode specific
	// multiblock remaps; anything else is accepted and gets the shared ones.
	Mode remap.Mode `yaml:"mode"`
	// SpecialMode marks worlds carried over from the upstream pack.
	// Unversioned worlds are then treated as DEFAULT_SPECIAL.
	SpecialMode  bool         `yaml:"special_mode"`
	Integrations Integrations `yaml:"integrations"`
	// LoadedMods lists the mods present in the running environment.
	LoadedMods []string `yaml:"loaded_mods"`

	Log   LogConfig   `yaml:"log"`
	Audit AuditConfig `yaml:"audit"`
	Index IndexConfig `yaml:"index"`

	// Workers bounds how many worlds are migrated at once.
	Workers int `yaml:"workers"`
}

type Integrations struct {
	ExtraUtils2 bool `yaml:"extra_utils2"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type IndexConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("fixer.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("fixer.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Mode: remap.ModeNormal,
		Log:  LogConfig{Level: "info"},
		Audit: AuditConfig{
			Enabled: true,
			Dir:     "audit",
		},
		Index: IndexConfig{
			Enabled: true,
			Path:    "index/fixer.sqlite",
		},
		Workers: 4,
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Mode = remap.Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))
	if c.Mode == "" {
		c.Mode = remap.ModeNormal
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	mods := make([]string, 0, len(c.LoadedMods))
	for _, m := range c.LoadedMods {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			mods = append(mods, m)
		}
	}
	slices.Sort(mods)
	c.LoadedMods = slices.Compact(mods)
	if c.Workers <= 0 {
		c.Workers = 1
	}
}

func (c Config) Validate() error {
	c.Normalize()
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug|info|warn|error, got %q", c.Log.Level)
	}
	if c.Audit.Enabled && strings.TrimSpace(c.Audit.Dir) == "" {
		return fmt.Errorf("audit.dir must not be empty when audit is enabled")
	}
	if c.Index.Enabled && strings.TrimSpace(c.Index.Path) == "" {
		return fmt.Errorf("index.path must not be empty when the index is enabled")
	}
	if c.Workers > 64 {
		return fmt.Errorf("workers must be <= 64")
	}
	return nil
}

func (c Config) ModLoaded(modID string) bool {
	return slices.Contains(c.LoadedMods, strings.ToLower(modID))
}

// FixOptions derives the fix set toggles from the environment.
func (c Config) FixOptions() labsfixes.Options {
	return labsfixes.Options{
		XU2Integration: c.Integrations.ExtraUtils2,
		EnderIOLoaded:  c.ModLoaded(labsfixes.EnderIOModID),
	}
}
