// Package config loads chat2html settings from built-in defaults, an optional
// YAML file and CHAT2HTML_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "CHAT2HTML"

// Default configuration values.
const (
	DefaultChatFile   = "_chat.txt"
	DefaultSelfMarker = ".:"
	DefaultSelfName   = "Me"
	DefaultConfigDir  = ".chat2html"
	DefaultConfigFile = "config.yaml"
	DefaultDBFile     = "archive.db"
)

// Config holds all application configuration.
type Config struct {
	Convert ConvertConfig `yaml:"convert" envconfig:"CONVERT"`
	Archive ArchiveConfig `yaml:"archive" envconfig:"ARCHIVE"`
	Log     LogConfig     `yaml:"log" envconfig:"LOG"`
	Watch   WatchConfig   `yaml:"watch" envconfig:"WATCH"`
}

// ConvertConfig controls how a transcript is read and where output goes.
type ConvertConfig struct {
	ChatFile   string `yaml:"chat_file" envconfig:"CHAT_FILE"`
	SelfMarker string `yaml:"self_marker" envconfig:"SELF_MARKER"`
	SelfName   string `yaml:"self_name" envconfig:"SELF_NAME"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
}

// ArchiveConfig controls the optional SQLite archive of converted chats.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	DBPath  string `yaml:"db_path" envconfig:"DB_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
	JSON  bool   `yaml:"json" envconfig:"JSON"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" envconfig:"DEBOUNCE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			ChatFile:   DefaultChatFile,
			SelfMarker: DefaultSelfMarker,
			SelfName:   DefaultSelfName,
			OutputDir:  ".",
		},
		Archive: ArchiveConfig{
			DBPath: filepath.Join("~", DefaultConfigDir, DefaultDBFile),
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// DefaultPath returns ~/.chat2html/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads configuration. An empty configPath falls back to the default
// location, which is allowed to be missing; an explicit path must exist.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	explicit := configPath != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			configPath = p
		}
	}

	if configPath != "" {
		data, err := os.ReadFile(ExpandPath(configPath))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// No default tags: envconfig would otherwise overwrite file values.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.Archive.DBPath = ExpandPath(cfg.Archive.DBPath)
	cfg.Convert.OutputDir = ExpandPath(cfg.Convert.OutputDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Convert.ChatFile) == "" {
		return fmt.Errorf("convert.chat_file is required")
	}
	if strings.ContainsAny(c.Convert.ChatFile, `/\`) {
		return fmt.Errorf("convert.chat_file must be a file name, got %q", c.Convert.ChatFile)
	}
	if c.Convert.SelfMarker == "" {
		return fmt.Errorf("convert.self_marker is required")
	}
	if c.Convert.SelfName == "" {
		return fmt.Errorf("convert.self_name is required")
	}
	if c.Convert.OutputDir == "" {
		return fmt.Errorf("convert.output_dir is required")
	}
	if c.Archive.Enabled && c.Archive.DBPath == "" {
		return fmt.Errorf("archive.db_path is required when the archive is enabled")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
