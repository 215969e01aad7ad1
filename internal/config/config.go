// Package config loads kanboard settings from a YAML or TOML file, a .env
// file and KANBOARD_* environment variables, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/gmllt/kanboard/internal/storage"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "config.yml"

type Config struct {
	Storage storage.Config `yaml:"storage" toml:"storage"`
	Server  ServerConfig   `yaml:"server" toml:"server"`
	Log     LogConfig      `yaml:"log" toml:"log"`
	Board   BoardConfig    `yaml:"board" toml:"board"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" toml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	StaticDir    string        `yaml:"static_dir" toml:"static_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // console or json
	File   string `yaml:"file" toml:"file"`     // used by the terminal UI
}

type BoardConfig struct {
	IDFormat string `yaml:"id_format" toml:"id_format"` // time or uuid
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Storage: storage.Config{
			Backend: storage.BackendFile,
			Key:     storage.DefaultKey,
			Dir:     ".",
			SQLite:  storage.SQLiteConfig{Path: storage.DefaultKey + ".db"},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Board: BoardConfig{IDFormat: "time"},
	}
}

// Load reads path (YAML, or TOML when the extension is .toml), then
// applies .env and environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	if err := decodeFile(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		log.Debug().Str("path", path).Msg("No config file, using defaults")
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks for settings that cannot work.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return errors.New("server addr is required")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Board.IDFormat {
	case "time", "uuid":
	default:
		return fmt.Errorf("unknown id format %q", c.Board.IDFormat)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Storage.Backend, "KANBOARD_STORAGE_BACKEND")
	setString(&cfg.Storage.Key, "KANBOARD_STORAGE_KEY")
	setString(&cfg.Storage.Dir, "KANBOARD_STORAGE_DIR")
	setString(&cfg.Storage.SQLite.Path, "KANBOARD_SQLITE_PATH")
	setString(&cfg.Storage.Redis.Addr, "KANBOARD_REDIS_ADDR")
	setString(&cfg.Storage.Redis.Password, "KANBOARD_REDIS_PASSWORD")
	setString(&cfg.Storage.S3.Endpoint, "KANBOARD_S3_ENDPOINT")
	setString(&cfg.Storage.S3.Bucket, "KANBOARD_S3_BUCKET")
	setString(&cfg.Storage.S3.AccessKey, "KANBOARD_S3_ACCESS_KEY")
	setString(&cfg.Storage.S3.SecretKey, "KANBOARD_S3_SECRET_KEY")
	setString(&cfg.Server.Addr, "KANBOARD_SERVER_ADDR")
	setString(&cfg.Log.Level, "KANBOARD_LOG_LEVEL")
	setString(&cfg.Log.Format, "KANBOARD_LOG_FORMAT")

	if v, ok := os.LookupEnv("KANBOARD_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KANBOARD_REDIS_DB: %w", err)
		}
		cfg.Storage.Redis.DB = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}
