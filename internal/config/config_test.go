package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, DefaultDBName) {
		t.Fatalf("unexpected default db path %q", cfg.DBPath)
	}
	if cfg.LogLevel != "info" || !cfg.Notifications {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// A second load reads the file it just wrote.
	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.DBPath != cfg.DBPath {
		t.Fatalf("reload mismatch: %q vs %q", again.DBPath, cfg.DBPath)
	}
}

func TestLoadOrCreate_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)
	contents := "db_path = \"/tmp/elsewhere.db\"\nlog_level = \"debug\"\nlog_json = true\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/elsewhere.db" || cfg.LogLevel != "debug" || !cfg.LogJSON {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadOrCreate_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFileName)

	t.Setenv("TODO_DB_PATH", "/tmp/override.db")
	t.Setenv("TODO_LOG_LEVEL", "error")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Fatalf("env override ignored: %q", cfg.DBPath)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("env override ignored: %q", cfg.LogLevel)
	}
}
