package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type DatabaseConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     string
}

// DSN is the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// RedisConfig is left with an empty Host when redis is not wanted.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type Config struct {
	Port     string
	Storage  string
	Database DatabaseConfig
	Redis    RedisConfig

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	RateLimit       int
	RateLimitWindow time.Duration
	HabitCacheTTL   time.Duration
}

// Load reads the process environment, after merging the given .env files
// into it when they exist. Variables already set are never overridden.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, f, err)
			}
			log.Printf("[CONFIG] %s not found, using the environment only", f)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any variable source, which keeps tests off
// the process environment.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:    get("PORT", "8080"),
		Storage: get("STORAGE", StoragePostgres),
		Database: DatabaseConfig{
			User:     get("DB_USER", "kanso_user"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "kanso_db"),
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
		},
		Redis: RedisConfig{
			Host:     get("REDIS_HOST", ""),
			Port:     get("REDIS_PORT", "6379"),
			Password: get("REDIS_PASSWORD", ""),
		},
		JWTSecret: get("JWT_SECRET", ""),
		JWTIssuer: get("JWT_ISSUER", "kanso-grid"),
	}

	var err error
	if cfg.Redis.DB, err = atoi("REDIS_DB", get("REDIS_DB", "0")); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = atoi("RATE_LIMIT", get("RATE_LIMIT", "100")); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = duration("TOKEN_TTL", get("TOKEN_TTL", "24h")); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = duration("RATE_LIMIT_WINDOW", get("RATE_LIMIT_WINDOW", "1m")); err != nil {
		return nil, err
	}
	if cfg.HabitCacheTTL, err = duration("HABIT_CACHE_TTL", get("HABIT_CACHE_TTL", "30m")); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("%w: STORAGE must be %q or %q, got %q", ErrInvalidConfig, StorageMemory, StoragePostgres, c.Storage)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrInvalidConfig)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", ErrInvalidConfig)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: RATE_LIMIT must not be negative", ErrInvalidConfig)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be positive", ErrInvalidConfig)
	}
	return nil
}

func atoi(key, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, raw)
	}
	return n, nil
}

func duration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, key, raw)
	}
	return d, nil
}
