// Package config loads habittracker settings from flag defaults, an optional YAML file,
// HABITS_* environment variables and explicitly set flags, in increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "HABITS_"

// Config holds the settings for one run of the tracker.
type Config struct {
	DBPath    string `koanf:"db" validate:"required"`
	Addr      string `koanf:"addr" validate:"required,hostname_port"`
	BackupDir string `koanf:"backup-dir"`
	LogLevel  string `koanf:"log-level" validate:"oneof=debug info warn error"`

	// One-shot actions; the form is not served when either is set.
	Import string `koanf:"import"`
	Backup bool   `koanf:"backup" validate:"excluded_without=BackupDir"`
}

// Load parses args (without the program name) and the environment into a Config.
// It returns pflag.ErrHelp when -h/--help was requested.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("habittracker", pflag.ContinueOnError)
	configPath := fs.String("config", "", "Path to an optional YAML config file")
	fs.String("db", "monthly_habit_tracker.db", "Path to the SQLite database file")
	fs.String("addr", "127.0.0.1:8080", "Address to serve the tracker form on")
	fs.String("backup-dir", "", "Git repository directory that receives CSV snapshots")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("import", "", "Import records from a CSV export and exit")
	fs.Bool("backup", false, "Commit a CSV snapshot to --backup-dir and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if *configPath != "" {
		if err := k.Load(file.Provider(*configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", *configPath, err)
		}
	}

	// HABITS_BACKUP_DIR -> backup-dir
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Changed flags always win; untouched flags only fill in missing keys.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SlogLevel maps LogLevel onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
