package recurrence

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// Cache configuration
	CacheEnabled bool        `yaml:"cache_enabled"`
	CacheConfig  CacheConfig `yaml:"cache"`

	// Expansion limits
	MaxExpansionOccurrences int `yaml:"max_expansion_occurrences"` // Occurrences returned by one Expand call, 0 = unlimited
	MaxIterations           int `yaml:"max_iterations"`            // Delta applications per call, bounds walks toward far-off ranges
}

// DefaultEngineConfig provides sensible defaults for production use
var DefaultEngineConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig:  DefaultCacheConfig,

	MaxExpansionOccurrences: 1000,
	MaxIterations:           100_000,
}

// HighPerformanceConfig is optimized for high-traffic scenarios
var HighPerformanceConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             DefaultCacheConfig.TTL * 2,
		MaxEntries:      5000,
		CleanupInterval: DefaultCacheConfig.CleanupInterval * 2,
	},

	MaxExpansionOccurrences: 500,
	MaxIterations:           20_000,
}

// LowMemoryConfig is optimized for memory-constrained environments
var LowMemoryConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             DefaultCacheConfig.TTL / 3,
		MaxEntries:      100,
		CleanupInterval: DefaultCacheConfig.CleanupInterval / 2,
	},

	MaxExpansionOccurrences: 200,
	MaxIterations:           100_000,
}

// DisabledCacheConfig turns off caching entirely
var DisabledCacheConfig = EngineConfig{
	CacheEnabled: false,
	CacheConfig:  CacheConfig{}, // Not used

	MaxExpansionOccurrences: 1000,
	MaxIterations:           100_000,
}

// Normalize fills zero or negative fields with defaults.
func (c *EngineConfig) Normalize() {
	if c.MaxExpansionOccurrences < 0 {
		c.MaxExpansionOccurrences = 0
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultEngineConfig.MaxIterations
	}
	if !c.CacheEnabled {
		return
	}
	if c.CacheConfig.TTL <= 0 {
		c.CacheConfig.TTL = DefaultCacheConfig.TTL
	}
	if c.CacheConfig.MaxEntries <= 0 {
		c.CacheConfig.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if c.CacheConfig.CleanupInterval < 0 {
		c.CacheConfig.CleanupInterval = 0
	}
}

// LoadEngineConfig reads a YAML engine configuration. A missing file is
// created with DefaultEngineConfig, which is then returned.
func LoadEngineConfig(path string) (EngineConfig, error) {
	if path == "" {
		return EngineConfig{}, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultEngineConfig
			return cfg, cfg.Save(path)
		}
		return EngineConfig{}, err
	}

	cfg := DefaultEngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse engine config %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the configuration as YAML through a temp file and rename, so a
// reader never sees a partial file.
func (c EngineConfig) Save(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}

	c.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".recurrence-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration
func NewEngineWithConfig(config EngineConfig, opts ...Option) *Engine {
	config.Normalize()

	var cache *RecurrenceCache
	if config.CacheEnabled {
		cache = NewRecurrenceCache(config.CacheConfig)
	}

	e := &Engine{
		cache:  cache,
		config: config,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
