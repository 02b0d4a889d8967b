// Package config handles loading and resolving dex configuration.
// Resolution order (later layers win):
//  1. Built-in defaults
//  2. config.json in the current working directory
//  3. Environment variables DEX_BASE_URL, DEX_DB_PATH, DEX_LANGUAGE
//  4. CLI flags, applied by the caller after Load
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultConfigFile  = "config.json"
	DefaultFormat      = "table"
	DefaultBaseURL     = "https://pokeapi.co/api/v2/"
	DefaultTimeout     = time.Duration(0)
	DefaultConcurrency = 8
	DefaultRate        = 0.0
	DefaultPageSize    = 50
	DefaultBulkLimit   = 1500
	DefaultLanguage    = "es"
	EnvBaseURL         = "DEX_BASE_URL"
	EnvDBPath          = "DEX_DB_PATH"
	EnvLanguage        = "DEX_LANGUAGE"
)

// File is the on-disk representation of config.json.
type File struct {
	BaseURL       string  `json:"base_url"`
	DefaultFormat string  `json:"default_format"`
	Timeout       string  `json:"timeout"`
	Concurrency   int     `json:"concurrency"`
	Rate          float64 `json:"rate"`
	PageSize      int     `json:"page_size"`
	BulkLimit     int     `json:"bulk_limit"`
	Language      string  `json:"language"`
	DBPath        string  `json:"db_path"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	BaseURL     string
	Format      string
	Timeout     time.Duration // 0 leaves the transport default in place
	Concurrency int
	Rate        float64 // requests per second; 0 disables the limiter
	PageSize    int
	BulkLimit   int
	Language    string
	DBPath      string
	ConfigPath  string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from defaults, config.json and the
// environment. A config.json that exists but cannot be parsed is an error;
// a missing one is not.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		Format:      DefaultFormat,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		Rate:        DefaultRate,
		PageSize:    DefaultPageSize,
		BulkLimit:   DefaultBulkLimit,
		Language:    DefaultLanguage,
	}

	// Layer 1: config.json (lowest priority)
	f, path, err := loadFile()
	switch {
	case err == nil:
		applyFile(cfg, f, path)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// Layer 2: environment
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		cfg.Language = strings.ToLower(v)
	}

	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}

	// Set default DB path if still unset
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".dex", "dex.db")
		}
	}

	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %g", c.Rate)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", c.PageSize)
	}
	if c.BulkLimit < c.PageSize {
		return fmt.Errorf("bulk_limit (%d) must not be smaller than page_size (%d)", c.BulkLimit, c.PageSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// loadFile attempts to read config.json from the current working directory.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s: %w", path, os.ErrNotExist)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.PageSize > 0 {
		cfg.PageSize = f.PageSize
	}
	if f.BulkLimit > 0 {
		cfg.BulkLimit = f.BulkLimit
	}
	if f.Language != "" {
		cfg.Language = strings.ToLower(f.Language)
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
}

// Template returns a File populated with the defaults, suitable for
// writing an initial config.json via `dex config init`.
func Template() File {
	return File{
		BaseURL:       DefaultBaseURL,
		DefaultFormat: DefaultFormat,
		Timeout:       "0s",
		Concurrency:   DefaultConcurrency,
		Rate:          DefaultRate,
		PageSize:      DefaultPageSize,
		BulkLimit:     DefaultBulkLimit,
		Language:      DefaultLanguage,
	}
}

// Keys lists the config.json keys accepted by `dex config get|set`.
var Keys = []string{
	"base_url", "default_format", "timeout", "concurrency", "rate",
	"page_size", "bulk_limit", "language", "db_path",
}

// Get returns the string form of key from f.
func (f File) Get(key string) (string, error) {
	switch key {
	case "base_url":
		return f.BaseURL, nil
	case "default_format":
		return f.DefaultFormat, nil
	case "timeout":
		return f.Timeout, nil
	case "concurrency":
		return fmt.Sprint(f.Concurrency), nil
	case "rate":
		return fmt.Sprint(f.Rate), nil
	case "page_size":
		return fmt.Sprint(f.PageSize), nil
	case "bulk_limit":
		return fmt.Sprint(f.BulkLimit), nil
	case "language":
		return f.Language, nil
	case "db_path":
		return f.DBPath, nil
	}
	return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
}

// Set parses value and stores it under key.
func (f *File) Set(key, value string) error {
	var err error
	switch key {
	case "base_url":
		f.BaseURL = value
	case "default_format":
		f.DefaultFormat = value
	case "timeout":
		_, err = time.ParseDuration(value)
		f.Timeout = value
	case "concurrency":
		_, err = fmt.Sscan(value, &f.Concurrency)
	case "rate":
		_, err = fmt.Sscan(value, &f.Rate)
	case "page_size":
		_, err = fmt.Sscan(value, &f.PageSize)
	case "bulk_limit":
		_, err = fmt.Sscan(value, &f.BulkLimit)
	case "language":
		f.Language = strings.ToLower(value)
	case "db_path":
		f.DBPath = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

// ReadFile parses the config.json at path.
func ReadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
