// Package config loads and saves the syskit configuration file.
// The file is YAML; flags on individual commands override anything set here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all syskit configuration.
type Config struct {
	// Mirror pairs watched by `syskit mirror` when no --pair flags are given.
	Mirror MirrorConfig `yaml:"mirror"`

	// Device node creation defaults.
	Devnode DevnodeConfig `yaml:"devnode"`

	// Kernel cleanup policy.
	Kernels KernelsConfig `yaml:"kernels"`

	// Conversion tool defaults (csv2db, posixday).
	Convert ConvertConfig `yaml:"convert"`

	// Logging defaults.
	Logging LoggingConfig `yaml:"logging"`
}

// MirrorConfig configures the watch-and-backup loops.
type MirrorConfig struct {
	Pairs      []SyncPair `yaml:"pairs"`
	DebounceMs int        `yaml:"debounce_ms"`
	Exclude    []string   `yaml:"exclude"` // glob patterns matched against base names
}

// SyncPair is one source tree mirrored into one destination tree.
type SyncPair struct {
	Source string `yaml:"source"`
	Dest   string `yaml:"dest"`
}

// DevnodeConfig configures GPU device node creation.
type DevnodeConfig struct {
	Driver string `yaml:"driver"` // name as registered in /proc/devices
	Count  int    `yaml:"count"`  // per-GPU nodes to create (minors 0..count-1)
}

// KernelsConfig configures old-kernel cleanup.
type KernelsConfig struct {
	Keep int `yaml:"keep"` // newest versions to retain besides the running one
}

// ConvertConfig configures the conversion commands.
type ConvertConfig struct {
	ChunkSize   int `yaml:"chunk_size"`    // CSV rows per transaction
	PosixDayMin int `yaml:"posix_day_min"` // rewrite range, inclusive
	PosixDayMax int `yaml:"posix_day_max"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Verbose bool   `yaml:"verbose"`
	File    string `yaml:"file"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Mirror: MirrorConfig{
			DebounceMs: 500,
			Exclude:    []string{"*.swp", "*.tmp", "*~"},
		},
		Devnode: DevnodeConfig{
			Driver: "nvidia",
			Count:  1,
		},
		Kernels: KernelsConfig{
			Keep: 2,
		},
		Convert: ConvertConfig{
			ChunkSize:   50000,
			PosixDayMin: 2460,
			PosixDayMax: 19800,
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "syskit", "config.yaml")
	}
	return filepath.Join(os.Getenv("HOME"), ".syskit.yaml")
}

// Load reads the config file at path. A missing file is not an error:
// defaults are returned so every command works without prior setup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Mirror.DebounceMs < 0 {
		return fmt.Errorf("mirror.debounce_ms must be >= 0, got %d", c.Mirror.DebounceMs)
	}
	for i, p := range c.Mirror.Pairs {
		if p.Source == "" || p.Dest == "" {
			return fmt.Errorf("mirror.pairs[%d]: source and dest are required", i)
		}
	}
	if c.Kernels.Keep < 1 {
		return fmt.Errorf("kernels.keep must be >= 1, got %d", c.Kernels.Keep)
	}
	if c.Convert.ChunkSize < 1 {
		return fmt.Errorf("convert.chunk_size must be >= 1, got %d", c.Convert.ChunkSize)
	}
	if c.Convert.PosixDayMin > c.Convert.PosixDayMax {
		return fmt.Errorf("convert.posix_day_min %d exceeds posix_day_max %d",
			c.Convert.PosixDayMin, c.Convert.PosixDayMax)
	}
	return nil
}
