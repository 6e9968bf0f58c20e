// Package config loads mkdb settings from a YAML file.
//
// Every field is optional; missing fields keep their Default value.
// Unknown fields are rejected so typos surface as errors instead of being
// silently ignored.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/successar/multikeydb/internal/store"
)

// Config holds the settings shared by every mkdb command.
type Config struct {
	// Database is the path of the SQLite file.
	Database string `yaml:"database"`

	// BusyTimeoutMS is how long SQLite waits on a locked database.
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`

	// JournalMode is the SQLite journal mode (WAL, DELETE, TRUNCATE,
	// PERSIST, MEMORY or OFF).
	JournalMode string `yaml:"journal_mode"`

	// Synchronous is the SQLite synchronous level (OFF, NORMAL, FULL or
	// EXTRA).
	Synchronous string `yaml:"synchronous"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Format is the CLI output format: text, json or yaml.
	Format string `yaml:"format"`
}

var (
	validJournalModes = []string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF"}
	validSynchronous  = []string{"OFF", "NORMAL", "FULL", "EXTRA"}
	validFormats      = []string{"text", "json", "yaml"}
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:      "mkdb.db",
		BusyTimeoutMS: 5000,
		JournalMode:   "WAL",
		Synchronous:   "NORMAL",
		LogLevel:      "info",
		Format:        "text",
	}
}

// Load reads the YAML file at path over Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Empty input
// yields Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field. JournalMode and Synchronous are compared
// case-insensitively and normalized to upper case.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.BusyTimeoutMS < 0 {
		return fmt.Errorf("busy_timeout_ms must be non-negative, got %d", c.BusyTimeoutMS)
	}

	mode, err := oneOf("journal_mode", c.JournalMode, validJournalModes)
	if err != nil {
		return err
	}
	c.JournalMode = mode

	sync, err := oneOf("synchronous", c.Synchronous, validSynchronous)
	if err != nil {
		return err
	}
	c.Synchronous = sync

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Format)
	}
	return nil
}

// StoreOptions returns the store options for c. logger may be nil.
func (c Config) StoreOptions(logger *slog.Logger) []store.Option {
	opts := []store.Option{
		store.WithBusyTimeout(c.BusyTimeoutMS),
		store.WithJournalMode(c.JournalMode),
		store.WithSynchronous(c.Synchronous),
	}
	if logger != nil {
		opts = append(opts, store.WithLogger(logger))
	}
	return opts
}

// Level returns the slog level for LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
}

func oneOf(field, v string, valid []string) (string, error) {
	up := strings.ToUpper(v)
	if !slices.Contains(valid, up) {
		return "", fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(valid, ", "), v)
	}
	return up, nil
}
