package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "todo.db"
	DefaultAttachmentsDir = "attachments"
)

type Config struct {
	DBPath         string `toml:"db_path"`
	AttachmentsDir string `toml:"attachments_dir"`
	LogLevel       string `toml:"log_level"`
	LogJSON        bool   `toml:"log_json"`
	Notifications  bool   `toml:"notifications"`
}

// LoadOrCreate reads the config file at path, writing one with defaults if
// it does not exist yet. Environment variables override file values; a .env
// file in the working directory is honored.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		applyEnv(&cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	applyEnv(&cfg)
	return cfg, nil
}

// DefaultPath returns the config file location under the XDG config
// directory, falling back to ~/.config.
func DefaultPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "todo", DefaultConfigFileName), nil
}

func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("TODO_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODO_ATTACHMENTS_DIR"); v != "" {
		cfg.AttachmentsDir = v
	}
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:         filepath.Join(dir, DefaultDBName),
		AttachmentsDir: filepath.Join(dir, DefaultAttachmentsDir),
		LogLevel:       "info",
		LogJSON:        false,
		Notifications:  true,
	}
}
