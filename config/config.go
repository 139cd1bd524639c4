// Package config loads registry settings from the environment, .env files and
// HCL files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/centraunit/ioc"
	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvDefaultLifetime = "IOC_DEFAULT_LIFETIME"
	EnvStrict          = "IOC_STRICT"
	EnvLogLevel        = "IOC_LOG_LEVEL"
	EnvLogFormat       = "IOC_LOG_FORMAT"
	// EnvLifetimes holds comma separated "contract=lifetime" pairs.
	EnvLifetimes = "IOC_LIFETIMES"
)

// Config holds the settings used to build a registry.
type Config struct {
	DefaultLifetime string
	Strict          bool
	LogLevel        string // debug | info | warn | error
	LogFormat       string // text | json

	// Lifetimes maps a contract's type name ("app.Cache" or
	// "github.com/acme/app.Cache") to a lifetime name.
	Lifetimes map[string]string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		DefaultLifetime: "transient",
		LogLevel:        "info",
		LogFormat:       "text",
		Lifetimes:       make(map[string]string),
	}
}

// Load reads the given .env files (".env" when none are given) and builds a
// Config from the environment. Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg := Defaults()
	cfg.DefaultLifetime = env(EnvDefaultLifetime, cfg.DefaultLifetime)
	cfg.LogLevel = env(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = env(EnvLogFormat, cfg.LogFormat)

	if v := os.Getenv(EnvStrict); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvStrict, err)
		}
		cfg.Strict = strict
	}

	for _, pair := range strings.Split(os.Getenv(EnvLifetimes), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		contract, lifetime, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid %s entry %q: want contract=lifetime", EnvLifetimes, pair)
		}
		cfg.Lifetimes[strings.TrimSpace(contract)] = strings.TrimSpace(lifetime)
	}

	return cfg, cfg.Validate()
}

// Validate checks that every lifetime name is known.
func (c *Config) Validate() error {
	if _, err := ioc.ParseLifetime(c.DefaultLifetime); err != nil {
		return fmt.Errorf("default lifetime: %w", err)
	}
	for contract, name := range c.Lifetimes {
		if _, err := ioc.ParseLifetime(name); err != nil {
			return fmt.Errorf("lifetime for %s: %w", contract, err)
		}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Options converts the configuration into registry options. The logger writes to logOut.
func (c *Config) Options(logOut io.Writer) ([]ioc.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	def, _ := ioc.ParseLifetime(c.DefaultLifetime)
	opts := []ioc.Option{
		ioc.WithDefaultLifetime(def),
		ioc.WithLogger(c.Logger(logOut)),
	}
	if c.Strict {
		opts = append(opts, ioc.WithStrictDependencies())
	}

	contracts := make([]string, 0, len(c.Lifetimes))
	for contract := range c.Lifetimes {
		contracts = append(contracts, contract)
	}
	sort.Strings(contracts)
	for _, contract := range contracts {
		l, _ := ioc.ParseLifetime(c.Lifetimes[contract])
		opts = append(opts, ioc.WithLifetimeOverride(contract, l))
	}
	return opts, nil
}

// NewRegistry builds a registry from the configuration.
func (c *Config) NewRegistry(logOut io.Writer) (*ioc.Registry, error) {
	opts, err := c.Options(logOut)
	if err != nil {
		return nil, err
	}
	return ioc.New(opts...), nil
}

// Logger creates a slog.Logger for the configured level and format.
// It does not set the global logger.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// Non-fatal: .env may not exist in production
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
