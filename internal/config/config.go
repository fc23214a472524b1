// Package config provides layered configuration for ipmgraph
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"ipmgraph/internal/domain"
)

// Environment overrides
const (
	EnvRoot      = "IPMGRAPH_ROOT"
	EnvProfile   = "IPMGRAPH_PROFILE"
	EnvStore     = "IPMGRAPH_STORE"
	EnvNamespace = "IPMGRAPH_NAMESPACE"
)

// DefaultRootPath is the package root used when nothing else is configured
const DefaultRootPath = "."

// RootPath returns the package root from IPMGRAPH_ROOT, falling back to
// DefaultRootPath
func RootPath() string {
	if env := os.Getenv(EnvRoot); env != "" {
		return env
	}
	return DefaultRootPath
}

// Config represents the complete ipmgraph configuration
type Config struct {
	// Profile is a built-in profile name or a profile document path
	Profile string `yaml:"profile"`
	// Namespace overrides the profile's base IRI for minted URIs
	Namespace string       `yaml:"namespace,omitempty"`
	Store     StoreConfig  `yaml:"store"`
	Scan      ScanConfig   `yaml:"scan"`
	Assign    AssignConfig `yaml:"assign"`
	Export    ExportConfig `yaml:"export"`
	Watch     WatchConfig  `yaml:"watch"`
}

// StoreConfig configures the SQLite store
type StoreConfig struct {
	// Path of the database; empty means the per-root default location
	Path string `yaml:"path,omitempty"`
}

// ScanConfig configures tree scanning
type ScanConfig struct {
	Algorithms []string `yaml:"algorithms"`
	Workers    int      `yaml:"workers"`
	Ignore     []string `yaml:"ignore,omitempty"`
	// HeaderSize is how many leading bytes format detection reads
	HeaderSize int `yaml:"header_size"`
}

// AssignConfig configures the type-assignment engine
type AssignConfig struct {
	// SearchLimit bounds candidate evaluations, 0 = unlimited
	SearchLimit int `yaml:"search_limit"`
}

// ExportConfig configures RDF export
type ExportConfig struct {
	Format   string `yaml:"format"`
	Compress bool   `yaml:"compress"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultSearchLimit bounds the type search unless configured otherwise
const DefaultSearchLimit = 1_000_000

// exportFormats mirrors the formats the rdf adapter writes
var exportFormats = []string{"ntriples", "turtle"}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Profile: "basic",
		Scan: ScanConfig{
			Algorithms: []string{string(domain.SHA1), string(domain.MD5)},
			Workers:    4,
			HeaderSize: 3072,
		},
		Assign: AssignConfig{
			SearchLimit: DefaultSearchLimit,
		},
		Export: ExportConfig{
			Format: "turtle",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Profile == "" {
		return fmt.Errorf("profile is required")
	}
	if _, err := c.Algorithms(); err != nil {
		return err
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be positive")
	}
	if c.Scan.HeaderSize < 0 {
		return fmt.Errorf("scan.header_size must not be negative")
	}
	if c.Assign.SearchLimit < 0 {
		return fmt.Errorf("assign.search_limit must not be negative")
	}
	if !slices.Contains(exportFormats, c.Export.Format) {
		return fmt.Errorf("export.format must be one of %v, got %q", exportFormats, c.Export.Format)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// Algorithms parses the configured checksum algorithm names
func (c *Config) Algorithms() ([]domain.ChecksumAlgorithm, error) {
	algs := make([]domain.ChecksumAlgorithm, 0, len(c.Scan.Algorithms))
	for _, name := range c.Scan.Algorithms {
		alg, err := domain.ParseAlgorithm(name)
		if err != nil {
			return nil, fmt.Errorf("scan.algorithms: %w", err)
		}
		algs = append(algs, alg)
	}
	return algs, nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Profile != "" {
		c.Profile = other.Profile
	}
	if other.Namespace != "" {
		c.Namespace = other.Namespace
	}
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}

	if len(other.Scan.Algorithms) > 0 {
		c.Scan.Algorithms = other.Scan.Algorithms
	}
	if other.Scan.Workers != 0 {
		c.Scan.Workers = other.Scan.Workers
	}
	if len(other.Scan.Ignore) > 0 {
		c.Scan.Ignore = append(c.Scan.Ignore, other.Scan.Ignore...)
	}
	if other.Scan.HeaderSize != 0 {
		c.Scan.HeaderSize = other.Scan.HeaderSize
	}

	if other.Assign.SearchLimit != 0 {
		c.Assign.SearchLimit = other.Assign.SearchLimit
	}

	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}
	if other.Export.Compress {
		c.Export.Compress = true
	}

	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

// ApplyEnv overrides settings from IPMGRAPH_* environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvProfile); v != "" {
		c.Profile = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvNamespace); v != "" {
		c.Namespace = v
	}
}
