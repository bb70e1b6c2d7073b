// Package config loads service settings from YAML, .env files and the
// environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/database"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/ratelimit"
	"github.com/ZanzyTHEbar/frugal-ai-hub/internal/security"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig            `yaml:"server"`
	Registries RegistriesConfig        `yaml:"registries"`
	Database   database.Config         `yaml:"database"`
	Redis      RedisConfig             `yaml:"redis"`
	RateLimit  ratelimit.Config        `yaml:"rate_limit"`
	Security   security.SecurityConfig `yaml:"security"`
	Cache      CacheConfig             `yaml:"cache"`
	Breaker    BreakerConfig           `yaml:"circuit_breaker"`
}

// ServerConfig covers the HTTP listener
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	EnableProfiling bool          `yaml:"enable_profiling"`
}

// RegistriesConfig holds registry endpoints and credentials
type RegistriesConfig struct {
	GitHubToken      string        `yaml:"github_token"`
	GitHubAPIURL     string        `yaml:"github_api_url"`
	GitHubRawURL     string        `yaml:"github_raw_url"`
	HuggingFaceToken string        `yaml:"huggingface_token"`
	HuggingFaceURL   string        `yaml:"huggingface_url"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
}

// RedisConfig enables distributed rate limiting when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig sets result cache lifetimes
type CacheConfig struct {
	IngestTTL      time.Duration `yaml:"ingest_ttl"`
	LeaderboardTTL time.Duration `yaml:"leaderboard_ttl"`
}

// BreakerConfig tunes the per-registry circuit breakers
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
	SuccessThreshold int           `yaml:"success_threshold"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "release",
			LogLevel:        "info",
			ShutdownTimeout: 30 * time.Second,
		},
		Registries: RegistriesConfig{
			GitHubAPIURL:   "https://api.github.com",
			GitHubRawURL:   "https://raw.githubusercontent.com",
			HuggingFaceURL: "https://huggingface.co",
			RequestTimeout: 10 * time.Second,
		},
		Database:  database.DefaultConfig(),
		RateLimit: ratelimit.DefaultConfig(),
		Security:  security.DefaultSecurityConfig(),
		Cache: CacheConfig{
			IngestTTL:      10 * time.Minute,
			LeaderboardTTL: 5 * time.Minute,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			SuccessThreshold: 2,
		},
	}
}

// Load builds the configuration. .env files are read first so their values
// can feed both the YAML substitution and the overrides. An empty path skips
// the YAML file.
func Load(path string, envFiles ...string) (*Config, error) {
	LoadEnvFiles(envFiles)

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads variables from the given .env files. Missing files are
// skipped and already-set variables are never overwritten.
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		_ = godotenv.Load(envFile)
	}
}

func (c *Config) loadFile(path string) error {
	cleanPath := filepath.Clean(path)

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), c); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default}
func substituteEnvVars(content string) string {
	return envPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envPattern.FindStringSubmatch(match)
		if value := os.Getenv(sub[1]); value != "" {
			return value
		}
		return strings.TrimPrefix(sub[2], "-")
	})
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Mode, "GIN_MODE")
	setString(&c.Server.LogLevel, "LOG_LEVEL")
	setString(&c.Registries.GitHubToken, "GITHUB_TOKEN")
	setString(&c.Registries.HuggingFaceToken, "HF_TOKEN")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Security.AllowedOrigins = splitList(v)
	}

	for key, dst := range map[string]*int{
		"REDIS_DB":          &c.Redis.DB,
		"RATE_LIMIT_INGEST": &c.RateLimit.IngestPerMin,
		"RATE_LIMIT_WRITES": &c.RateLimit.WritePerMin,
	} {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}

	for key, dst := range map[string]*time.Duration{
		"REGISTRY_TIMEOUT": &c.Registries.RequestTimeout,
		"INGEST_CACHE_TTL": &c.Cache.IngestTTL,
	} {
		if err := setDuration(dst, key); err != nil {
			return err
		}
	}

	if v := os.Getenv("ENABLE_PROFILING"); v != "" {
		c.Server.EnableProfiling = v == "true"
	}
	return nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric: %q", c.Server.Port)
	}
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Registries.RequestTimeout <= 0 {
		return fmt.Errorf("registries.request_timeout must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a duration: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
