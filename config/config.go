// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads, saves and validates the pactd daemon configuration.
// The on-disk format is a flat "key = value" file; environment variables
// prefixed with PACT_ override file values.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the daemon settings.
type Config struct {
	DataDir    string `env:"PACT_DATA_DIR"`
	ListenAddr string `env:"PACT_LISTEN_ADDR"`
	Network    string `env:"PACT_NETWORK"`
	LogLevel   string `env:"PACT_LOG_LEVEL"`
	LogFile    string `env:"PACT_LOG_FILE"`
	Env        string `env:"PACT_ENV"`

	Backend     string `env:"PACT_BACKEND"`
	RedisAddr   string `env:"PACT_REDIS_ADDR"`
	RedisDB     int    `env:"PACT_REDIS_DB"`
	DatabaseURL string `env:"PACT_DATABASE_URL"`

	// RedisPassword is read from the environment only and never saved.
	RedisPassword string `env:"PACT_REDIS_PASSWORD"`

	NATSURL     string `env:"PACT_NATS_URL"`
	NATSSubject string `env:"PACT_NATS_SUBJECT"`
	MetricsAddr string `env:"PACT_METRICS_ADDR"`

	// RateLimit is requests per second per caller; 0 disables limiting.
	RateLimit float64 `env:"PACT_RATE_LIMIT"`
	RateBurst int     `env:"PACT_RATE_BURST"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:     DefaultDataDir(),
		ListenAddr:  ":8080",
		Network:     "mainnet",
		LogLevel:    "info",
		LogFile:     "",
		Env:         "prod",
		Backend:     BackendBolt,
		NATSSubject: "evt.pact",
		MetricsAddr: ":9090",
		RateLimit:   20,
		RateBurst:   40,
	}
}

// DefaultDataDir returns ~/.pact, or ./.pact if the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pact"
	}
	return filepath.Join(home, ".pact")
}

// ConfigPath returns the configuration file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// BoltPath returns the bbolt ledger file inside the data directory.
func (c Config) BoltPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// Mainnet reports whether addresses render with the mainnet prefix.
func (c Config) Mainnet() bool {
	return c.Network == "mainnet"
}

// LoadConfig reads a configuration file. Keys not present keep their
// defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "listen":
		c.ListenAddr = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "env":
		c.Env = value
	case "backend":
		c.Backend = value
	case "redisaddr":
		c.RedisAddr = value
	case "redisdb":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: redisdb %q", ErrInvalidConfigValue, value)
		}
		c.RedisDB = n
	case "databaseurl":
		c.DatabaseURL = value
	case "natsurl":
		c.NATSURL = value
	case "natssubject":
		c.NATSSubject = value
	case "metricsaddr":
		c.MetricsAddr = value
	case "ratelimit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: ratelimit %q", ErrInvalidConfigValue, value)
		}
		c.RateLimit = f
	case "rateburst":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: rateburst %q", ErrInvalidConfigValue, value)
		}
		c.RateBurst = n
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Pact Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "listen = %s\n", cfg.ListenAddr)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	fmt.Fprintf(&b, "env = %s\n", cfg.Env)
	b.WriteString("\n# Storage\n")
	fmt.Fprintf(&b, "backend = %s\n", cfg.Backend)
	fmt.Fprintf(&b, "redisaddr = %s\n", cfg.RedisAddr)
	fmt.Fprintf(&b, "redisdb = %d\n", cfg.RedisDB)
	fmt.Fprintf(&b, "databaseurl = %s\n", cfg.DatabaseURL)
	b.WriteString("\n# Events and metrics\n")
	fmt.Fprintf(&b, "natsurl = %s\n", cfg.NATSURL)
	fmt.Fprintf(&b, "natssubject = %s\n", cfg.NATSSubject)
	fmt.Fprintf(&b, "metricsaddr = %s\n", cfg.MetricsAddr)
	b.WriteString("\n# Per-caller rate limit\n")
	fmt.Fprintf(&b, "ratelimit = %s\n", strconv.FormatFloat(cfg.RateLimit, 'f', -1, 64))
	fmt.Fprintf(&b, "rateburst = %d\n", cfg.RateBurst)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PACT_* environment variables onto cfg. Variables from
// the given dotenv files (".env" when none are named) are loaded first;
// missing dotenv files are skipped. Already-set process variables win.
func ApplyEnv(cfg *Config, dotenvFiles ...string) error {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfigValue, err)
	}
	return nil
}
