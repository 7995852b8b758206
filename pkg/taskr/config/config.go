package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds runtime settings decoded from the environment
type Config struct {
	Port string `env:"PORT,default=8080"`

	DBDriver string `env:"TASKR_DB_DRIVER,default=sqlite"`
	DBDSN    string `env:"TASKR_DB_DSN,default=taskr.db"`

	JWTSecret string        `env:"JWT_SECRET,default=taskr-dev-secret-change-in-production"`
	TokenTTL  time.Duration `env:"TASKR_TOKEN_TTL,default=24h"`

	CacheBackend    string `env:"TASKR_CACHE_BACKEND,default=memory"`
	CacheTTLSeconds int    `env:"TASKR_CACHE_TTL_SECONDS,default=3600"`
	CacheSize       int    `env:"TASKR_CACHE_SIZE,default=1024"`

	RedisAddr     string `env:"TASKR_REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"TASKR_REDIS_PASSWORD"`
	RedisDB       int    `env:"TASKR_REDIS_DB,default=0"`

	LogLevel  string `env:"TASKR_LOG_LEVEL,default=info"`
	LogFormat string `env:"TASKR_LOG_FORMAT,default=text"`

	RateLimitRPS   int `env:"TASKR_RATE_LIMIT_RPS,default=5"`
	RateLimitBurst int `env:"TASKR_RATE_LIMIT_BURST,default=10"`

	AdminEmail    string `env:"TASKR_ADMIN_EMAIL,default=admin@taskr.local"`
	AdminPassword string `env:"TASKR_ADMIN_PASSWORD,default=changeme"`
}

// Load reads an optional .env file and decodes the environment into a Config.
// A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that envdecode cannot
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("invalid TASKR_CACHE_BACKEND %q (want memory, redis or none)", c.CacheBackend)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("TASKR_CACHE_TTL_SECONDS must not be negative")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TASKR_TOKEN_TTL must be positive")
	}
	return nil
}

// CacheTTL returns the configured cache window. Zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// CacheEnabled reports whether results should be memoized at all
func (c *Config) CacheEnabled() bool {
	return c.CacheBackend != CacheNone && c.CacheTTLSeconds > 0
}
