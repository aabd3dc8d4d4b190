package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath        = "CONFIG_PATH"
	EnvGoEnv             = "GO_ENV"
	EnvHTTPPort          = "WARTUNG_HTTP_PORT"
	EnvDBDriver          = "WARTUNG_DB_DRIVER"
	EnvDBDSN             = "WARTUNG_DB_DSN"
	EnvResetPasswordHash = "WARTUNG_RESET_PASSWORD_HASH"
	EnvVAPIDPublicKey    = "WARTUNG_VAPID_PUBLIC_KEY"
	EnvVAPIDPrivateKey   = "WARTUNG_VAPID_PRIVATE_KEY"

	DefaultPath = "./config/config.yaml"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Compressor CompressorConfig `yaml:"compressor"`
	Inspection InspectionConfig `yaml:"inspection"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`

	warnings []string
}

// Warnings lists the defaults that replaced invalid settings. They are
// reported once logging is configured.
func (cfg *Config) Warnings() []string {
	return cfg.warnings
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port               int           `yaml:"port"`
	RateLimitPerSec    float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst     int           `yaml:"rate_limit_burst"`
	ResetLimitPerMin   float64       `yaml:"reset_limit_per_min"`
	ResetLimitBurst    int           `yaml:"reset_limit_burst"`
	CacheTTLSeconds    int           `yaml:"cache_ttl_seconds"`
	CacheTTL           time.Duration `yaml:"-"`
	ShutdownTimeoutSec int           `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// CompressorConfig holds the compressor session settings.
type CompressorConfig struct {
	// ResetPasswordHash is an argon2id encoded hash, see `wartungd hash-password`.
	ResetPasswordHash string `yaml:"reset_password_hash"`
}

// InspectionConfig controls the inspection-due reminder scan.
type InspectionConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	LookaheadDays   int           `yaml:"lookahead_days"`
	BatchSize       int           `yaml:"batch_size"`
	Timezone        string        `yaml:"timezone"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// LogConfig holds the log file and rotation settings.
type LogConfig struct {
	Dir        string `yaml:"dir"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// LoadEnvFiles loads .env style files into the process environment. Missing
// files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// PathFromEnv returns the configuration path from CONFIG_PATH or the default.
func PathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath
}

// IsProduction reports whether GO_ENV is set to production.
func IsProduction() bool {
	return os.Getenv(EnvGoEnv) == "production"
}

// Load reads the configuration from the given path and applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults with
// environment overrides applied.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	cfg = &Config{}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a configuration with every default applied, suitable for
// tests and for running without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvHTTPPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvHTTPPort, v)
		}
		cfg.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBDriver)); v != "" {
		cfg.Database.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBDSN)); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvResetPasswordHash)); v != "" {
		cfg.Compressor.ResetPasswordHash = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVAPIDPublicKey)); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVAPIDPrivateKey)); v != "" {
		cfg.Push.PrivateKey = v
	}
	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.ResetLimitPerMin <= 0 {
		cfg.Server.ResetLimitPerMin = 6
	}
	if cfg.Server.ResetLimitBurst <= 0 {
		cfg.Server.ResetLimitBurst = 3
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 2
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cfg.Server.ShutdownTimeoutSec <= 0 {
		cfg.Server.ShutdownTimeoutSec = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "wartung.db"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Inspection.IntervalSeconds <= 0 {
		cfg.Inspection.IntervalSeconds = 3600
	}
	cfg.Inspection.Interval = time.Duration(cfg.Inspection.IntervalSeconds) * time.Second
	if cfg.Inspection.LookaheadDays < 0 {
		cfg.Inspection.LookaheadDays = 0
	}
	if cfg.Inspection.BatchSize <= 0 {
		cfg.Inspection.BatchSize = 100
	}
	if cfg.Inspection.Timezone == "" {
		cfg.Inspection.Timezone = "Europe/Berlin"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.warnings = append(cfg.warnings, "worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 10
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 5
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 28
	}
}
