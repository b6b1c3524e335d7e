package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Backend names accepted in [store].backend.
const (
	BackendFS     = "fs"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

const defaultPath = "~/.docstore/config.toml"

type Config struct {
	Store StoreConfig `toml:"store"`
	S3    S3Config    `toml:"s3"`
	Cache CacheConfig `toml:"cache"`
	Ops   OpsConfig   `toml:"ops"`
	Log   LogConfig   `toml:"log"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
	DataDir string `toml:"data_dir"`
}

type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PathStyle bool   `toml:"path_style"`
	PageSize  int32  `toml:"page_size"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	Metrics bool `toml:"metrics"`
}

type OpsConfig struct {
	// MaxConcurrency bounds fan-out operations; 0 means unlimited.
	MaxConcurrency int `toml:"max_concurrency"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendFS,
			DataDir: "~/.docstore",
		},
		S3: S3Config{
			Region:   "us-east-1",
			PageSize: 50,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a TOML config file over the defaults.
// With an empty path the default location is tried; a missing default
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		path = ExpandHome(defaultPath)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields the selected backend depends on.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFS, BackendBolt, BackendSQLite:
		if c.Store.DataDir == "" {
			return fmt.Errorf("store.data_dir is required for backend %q", c.Store.Backend)
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required for backend %q", c.Store.Backend)
		}
		if c.S3.PageSize <= 0 || c.S3.PageSize > 1000 {
			return fmt.Errorf("s3.page_size must be in 1..1000, got %d", c.S3.PageSize)
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			return fmt.Errorf("s3.access_key and s3.secret_key must be set together")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q (supported: fs, bolt, sqlite, s3, memory)", c.Store.Backend)
	}
	if c.Ops.MaxConcurrency < 0 {
		return fmt.Errorf("ops.max_concurrency must not be negative")
	}
	return nil
}

// ExpandHome resolves a leading ~/ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
