package model

import (
	"runtime"
	"time"
)

// Config holds the complete run configuration
type Config struct {
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the raw source files
type InputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // Directory scanned for *.csv sources
}

// OutputConfig selects the record store
type OutputConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // csv, sqlite, postgres
	Path   string `yaml:"path" mapstructure:"path"`     // CSV file or SQLite database path
	DSN    string `yaml:"dsn,omitempty" mapstructure:"dsn"`
	Table  string `yaml:"table" mapstructure:"table"`
}

// ConcurrencyConfig bounds the worker pools
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls the decoded-source cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir: "data/raw",
		},
		Output: OutputConfig{
			Driver: "csv",
			Path:   "data/master_incidents.csv",
			Table:  "master_incidents",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".incidentmerge-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
