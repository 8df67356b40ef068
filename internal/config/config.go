// Package config loads and validates application configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Identity      IdentityConfig      `yaml:"identity"`
	Ksctl         KsctlConfig         `yaml:"ksctl"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	HandlerTimeout  time.Duration `yaml:"handler_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// IdentityConfig describes JWT and identity provider settings. When
// Enabled is false the tool endpoints are served unauthenticated, which
// suits local agent deployments where the server binds to loopback.
type IdentityConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Issuer       string        `yaml:"issuer"`
	Audience     string        `yaml:"audience"`
	JWKSURL      string        `yaml:"jwks_url"`
	JWKSCacheTTL time.Duration `yaml:"jwks_cache_ttl"`
	Algorithms   []string      `yaml:"algorithms"`
}

// KsctlConfig describes the CipherTrust Manager connection the ksctl
// binary is driven with. The password is read from the environment
// variable named by PasswordEnv, never from the YAML file itself.
type KsctlConfig struct {
	Binary      string        `yaml:"binary"`
	URL         string        `yaml:"url"`
	User        string        `yaml:"user"`
	PasswordEnv string        `yaml:"password_env"`
	NoSSLVerify bool          `yaml:"nosslverify"`
	Timeout     time.Duration `yaml:"timeout"`
	Domain      string        `yaml:"domain"`
	AuthDomain  string        `yaml:"auth_domain"`
}

// Password reads the configured password environment variable.
func (k KsctlConfig) Password() string {
	return os.Getenv(k.PasswordEnv)
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Exporter          string  `yaml:"exporter"`
	Endpoint          string  `yaml:"endpoint"`
	SamplingRate      float64 `yaml:"sampling_rate"`
	ForceSampleErrors bool    `yaml:"force_sample_errors"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			HandlerTimeout:  4 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Authorization", "Content-Type", "X-Correlation-Id"},
				MaxAge:         86400,
			},
		},
		Identity: IdentityConfig{
			JWKSCacheTTL: 1 * time.Hour,
			Algorithms:   []string{"RS256"},
		},
		Ksctl: KsctlConfig{
			Binary:      "ksctl",
			PasswordEnv: "KSBRIDGE_KSCTL_PASSWORD",
			Timeout:     3 * time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Ksctl.URL == "" {
		errs = append(errs, "ksctl.url is required")
	}
	if c.Ksctl.User == "" {
		errs = append(errs, "ksctl.user is required")
	}
	if c.Identity.Enabled {
		if c.Identity.Issuer == "" {
			errs = append(errs, "identity.issuer is required when identity is enabled")
		}
		if c.Identity.JWKSURL == "" {
			errs = append(errs, "identity.jwks_url is required when identity is enabled")
		}
		if c.Identity.Audience == "" {
			errs = append(errs, "identity.audience is required when identity is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads KSBRIDGE_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KSBRIDGE_SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("KSBRIDGE_KSCTL_URL"); v != "" {
		cfg.Ksctl.URL = v
	}
	if v := os.Getenv("KSBRIDGE_KSCTL_USER"); v != "" {
		cfg.Ksctl.User = v
	}
	if v := os.Getenv("KSBRIDGE_KSCTL_BINARY"); v != "" {
		cfg.Ksctl.Binary = v
	}
	if v := os.Getenv("KSBRIDGE_KSCTL_DOMAIN"); v != "" {
		cfg.Ksctl.Domain = v
	}
	if v := os.Getenv("KSBRIDGE_KSCTL_NOSSLVERIFY"); v == "true" {
		cfg.Ksctl.NoSSLVerify = true
	}
	if v := os.Getenv("KSBRIDGE_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}
