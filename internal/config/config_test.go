package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Store.Backend != BackendFS {
		t.Errorf("Backend: got %q, want fs", cfg.Store.Backend)
	}
	if cfg.Store.DataDir != "~/.docstore" {
		t.Errorf("DataDir: got %q, want ~/.docstore", cfg.Store.DataDir)
	}
	if cfg.S3.PageSize != 50 {
		t.Errorf("PageSize: got %d, want 50", cfg.S3.PageSize)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	toml := `
[store]
backend = "s3"
data_dir = "/tmp/docstore-test"

[s3]
bucket = "scoreboard-app"
region = "eu-north-1"
endpoint = "http://localhost:9000"
access_key = "minio"
secret_key = "minio123"
path_style = true
page_size = 100

[cache]
enabled = false
metrics = true

[ops]
max_concurrency = 8

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Backend != BackendS3 {
		t.Errorf("Backend: got %q", cfg.Store.Backend)
	}
	if cfg.S3.Bucket != "scoreboard-app" || cfg.S3.Region != "eu-north-1" {
		t.Errorf("S3: got %+v", cfg.S3)
	}
	if !cfg.S3.PathStyle || cfg.S3.PageSize != 100 {
		t.Errorf("S3 path_style/page_size: got %+v", cfg.S3)
	}
	if cfg.Cache.Enabled || !cfg.Cache.Metrics {
		t.Errorf("Cache: got %+v", cfg.Cache)
	}
	if cfg.Ops.MaxConcurrency != 8 {
		t.Errorf("MaxConcurrency: got %d", cfg.Ops.MaxConcurrency)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log: got %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"bolt\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != BackendBolt {
		t.Errorf("Backend: got %q", cfg.Store.Backend)
	}
	if cfg.Store.DataDir != "~/.docstore" || cfg.S3.PageSize != 50 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("{{invalid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "unknown store backend"},
		{"fs without dir", func(c *Config) { c.Store.DataDir = "" }, "data_dir"},
		{"s3 without bucket", func(c *Config) { c.Store.Backend = BackendS3 }, "s3.bucket"},
		{"s3 bad page size", func(c *Config) {
			c.Store.Backend = BackendS3
			c.S3.Bucket = "b"
			c.S3.PageSize = 0
		}, "page_size"},
		{"s3 half credentials", func(c *Config) {
			c.Store.Backend = BackendS3
			c.S3.Bucket = "b"
			c.S3.AccessKey = "k"
		}, "access_key"},
		{"negative concurrency", func(c *Config) { c.Ops.MaxConcurrency = -1 }, "max_concurrency"},
		{"memory needs nothing", func(c *Config) {
			c.Store.Backend = BackendMemory
			c.Store.DataDir = ""
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	got := ExpandHome("~/foo/bar")
	want := filepath.Join(home, "foo/bar")
	if got != want {
		t.Errorf("ExpandHome: got %q, want %q", got, want)
	}

	if got := ExpandHome("/absolute/path"); got != "/absolute/path" {
		t.Errorf("ExpandHome: got %q, want /absolute/path", got)
	}
}
