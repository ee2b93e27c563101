// SPDX-License-Identifier: MIT

// Package config resolves the client runtime configuration once at startup.
// Precedence: environment > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the API transport.
const (
	DefaultAPIBase = "/api"
	// DefaultTimeout is the request budget outside development mode.
	DefaultTimeout = 15 * time.Second
	// DevMinTimeout is the floor applied in development mode. Dev backends
	// (PHP built-in server / XAMPP) can be slow on cold start; a too-aggressive
	// timeout cascades into aborted requests and a "broken" app.
	DevMinTimeout = 60 * time.Second
)

// Config is the resolved runtime configuration. DevMode is decided exactly
// once here; everything downstream consumes it as a plain boolean.
type Config struct {
	APIBase     string        `yaml:"api_base"`
	Timeout     time.Duration `yaml:"timeout"`
	DevMode     bool          `yaml:"dev_mode"`
	Debug       bool          `yaml:"debug"`
	SessionFile string        `yaml:"session_file"`
	RedisAddr   string        `yaml:"redis_addr"`
	// RateLimit caps outgoing requests per second; zero disables throttling.
	RateLimit float64 `yaml:"rate_limit"`
	LogLevel  string  `yaml:"log_level"`
}

type fileConfig struct {
	APIBase     *string  `yaml:"api_base"`
	TimeoutMS   *int     `yaml:"timeout_ms"`
	DevMode     *bool    `yaml:"dev_mode"`
	Debug       *bool    `yaml:"debug"`
	SessionFile *string  `yaml:"session_file"`
	RedisAddr   *string  `yaml:"redis_addr"`
	RateLimit   *float64 `yaml:"rate_limit"`
	LogLevel    *string  `yaml:"log_level"`
}

// DefaultSessionFile returns the per-user session store path.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "xordon", "session.json")
}

// Load resolves the configuration from defaults, an optional YAML file and
// the environment, in that order.
func Load(path string) (Config, error) {
	cfg := Config{
		APIBase:     DefaultAPIBase,
		Timeout:     DefaultTimeout,
		SessionFile: DefaultSessionFile(),
		LogLevel:    "info",
	}

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		applyFile(&cfg, fc)
	}

	applyEnv(&cfg)

	// Development backends must not appear "broken" under the production budget.
	if cfg.DevMode && cfg.Timeout < DevMinTimeout {
		cfg.Timeout = DevMinTimeout
	}
	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.APIBase != nil {
		cfg.APIBase = *fc.APIBase
	}
	if fc.TimeoutMS != nil {
		cfg.Timeout = time.Duration(*fc.TimeoutMS) * time.Millisecond
	}
	if fc.DevMode != nil {
		cfg.DevMode = *fc.DevMode
	}
	if fc.Debug != nil {
		cfg.Debug = *fc.Debug
	}
	if fc.SessionFile != nil {
		cfg.SessionFile = *fc.SessionFile
	}
	if fc.RedisAddr != nil {
		cfg.RedisAddr = *fc.RedisAddr
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
}

func applyEnv(cfg *Config) {
	cfg.APIBase = ParseString("XORDON_API_BASE", cfg.APIBase)
	cfg.Timeout = time.Duration(ParseInt("XORDON_API_TIMEOUT_MS", int(cfg.Timeout/time.Millisecond))) * time.Millisecond
	cfg.DevMode = ParseBool("XORDON_DEV_MODE", cfg.DevMode)
	cfg.Debug = ParseBool("XORDON_DEBUG_API", cfg.Debug)
	cfg.SessionFile = ParseString("XORDON_SESSION_FILE", cfg.SessionFile)
	cfg.RedisAddr = ParseString("XORDON_REDIS_ADDR", cfg.RedisAddr)
	cfg.LogLevel = ParseString("XORDON_LOG_LEVEL", cfg.LogLevel)
}
