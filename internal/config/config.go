// Package config loads process-wide settings: network address, storage
// roots, and the capacity/TTL/pricing policy, all fixed at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL         = "http://127.0.0.1:8001"
	DefaultDataDir        = "hashroot"
	DefaultDBFileName     = "hashfs.sqlite3"
	DefaultCapacityGB     = 2
	DefaultMaxObjectBytes = 100_000_000
	DefaultTTLSeconds     = 24 * 60 * 60
	DefaultLogLevel       = "info"

	configFileName  = ".hashfs.toml"
	configDirEnvKey = "HASHFS_CONFIG_DIR"

	bytesPerGB = 1_000_000_000
)

// Pricing defines the announced service prices and the oracle policy.
type Pricing struct {
	Base       int64 `toml:"base"`
	PerMB      int64 `toml:"per_mb"`
	Fallback   int64 `toml:"fallback"`
	PutPerKB   int64 `toml:"put_per_kb"`
	PutPerHour int64 `toml:"put_per_hour"`
}

// Config defines runtime configuration for hashfs.
type Config struct {
	APIURL         string  `toml:"api_url"`
	DataDir        string  `toml:"data_dir"`
	DBPath         string  `toml:"db_path"`
	CapacityGB     int64   `toml:"capacity_gb"`
	MaxObjectBytes int64   `toml:"max_object_bytes"`
	TTLSeconds     int64   `toml:"ttl_seconds"`
	LogLevel       string  `toml:"log_level"`
	Pricing        Pricing `toml:"pricing"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		DataDir:        DefaultDataDir,
		DBPath:         DefaultDBFileName,
		CapacityGB:     DefaultCapacityGB,
		MaxObjectBytes: DefaultMaxObjectBytes,
		TTLSeconds:     DefaultTTLSeconds,
		LogLevel:       DefaultLogLevel,
		Pricing: Pricing{
			Base:       1,
			PerMB:      2,
			Fallback:   0,
			PutPerKB:   10,
			PutPerHour: 2,
		},
	}
}

// Load reads configuration from the first config file found, layered
// over defaults. Search order: $HASHFS_CONFIG_DIR, the working
// directory, then the home directory. A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	for _, path := range searchPaths() {
		found, err := loadFileIfExists(path, &cfg)
		if err != nil {
			return nil, err
		}
		if found {
			break
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the policy values for internal consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url is required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.CapacityGB <= 0 {
		return fmt.Errorf("capacity_gb must be > 0, got %d", c.CapacityGB)
	}
	if c.MaxObjectBytes <= 0 {
		return fmt.Errorf("max_object_bytes must be > 0, got %d", c.MaxObjectBytes)
	}
	if c.MaxObjectBytes > c.CapacityBytes() {
		return fmt.Errorf("max_object_bytes %d exceeds capacity %d", c.MaxObjectBytes, c.CapacityBytes())
	}
	if c.TTLSeconds <= 0 {
		return fmt.Errorf("ttl_seconds must be > 0, got %d", c.TTLSeconds)
	}
	return nil
}

// CapacityBytes is the configured budget in bytes (decimal gigabytes,
// matching the announced per-MB pricing arithmetic).
func (c *Config) CapacityBytes() int64 {
	return c.CapacityGB * bytesPerGB
}

// TTL is the configured object lifetime.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func searchPaths() []string {
	var paths []string
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		paths = append(paths, filepath.Join(dir, configFileName))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, configFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, configFileName))
	}
	return paths
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}
