package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

const (
	defaultAddress           = ":9090"
	defaultTimeout           = 30 * time.Second
	defaultDriver            = "mysql"
	defaultSQLitePath        = "placevote.db"
	defaultMaxConns          = 20
	defaultCacheDB           = 0
	defaultReconcileInterval = 10 * time.Minute
	defaultReconcileBatch    = 500
	defaultLeaderboardTTL    = 30 * time.Second
	defaultLeaderboardLimit  = 100
	defaultCastMaxAttempts   = 3
)

// Config holds all application configuration
type Config struct {
	ServerAddress  string
	ContextTimeout time.Duration

	DBDriver   string // mysql, postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	DBPath     string // sqlite file
	DBMaxConns int

	CacheHost string
	CachePort string
	CachePass string
	CacheDB   int

	JWTSecret string

	ReconcileInterval  time.Duration
	ReconcileBatchSize int
	LeaderboardTTL     time.Duration
	LeaderboardLimit   int
	CastMaxAttempts    int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, falling back to defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddress:      getEnv("SERVER_ADDRESS", defaultAddress),
		ContextTimeout:     getEnvAsDuration("CONTEXT_TIMEOUT", defaultTimeout),
		DBDriver:           getEnv("DATABASE_DRIVER", defaultDriver),
		DBHost:             getEnv("DATABASE_HOST", "localhost"),
		DBPort:             getEnv("DATABASE_PORT", "3306"),
		DBUser:             os.Getenv("DATABASE_USER"),
		DBPass:             os.Getenv("DATABASE_PASS"),
		DBName:             os.Getenv("DATABASE_NAME"),
		DBPath:             getEnv("DATABASE_PATH", defaultSQLitePath),
		DBMaxConns:         getEnvAsInt("DATABASE_MAX_CONNS", defaultMaxConns),
		CacheHost:          getEnv("CACHE_HOST", "localhost"),
		CachePort:          getEnv("CACHE_PORT", "6379"),
		CachePass:          os.Getenv("CACHE_PASS"),
		CacheDB:            getEnvAsInt("CACHE_DB", defaultCacheDB),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		ReconcileInterval:  getEnvAsDuration("RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileBatchSize: getEnvAsInt("RECONCILE_BATCH_SIZE", defaultReconcileBatch),
		LeaderboardTTL:     getEnvAsDuration("LEADERBOARD_CACHE_TTL", defaultLeaderboardTTL),
		LeaderboardLimit:   getEnvAsInt("LEADERBOARD_MAX_LIMIT", defaultLeaderboardLimit),
		CastMaxAttempts:    getEnvAsInt("CAST_MAX_ATTEMPTS", defaultCastMaxAttempts),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case "mysql", "postgres":
		if cfg.DBName == "" {
			return nil, errors.New("DATABASE_NAME is required")
		}
	case "sqlite":
	default:
		return nil, errors.New("DATABASE_DRIVER must be mysql, postgres or sqlite")
	}
	if cfg.CastMaxAttempts < 1 {
		cfg.CastMaxAttempts = 1
	}

	return cfg, nil
}

// CacheAddr is the host:port of redis.
func (c *Config) CacheAddr() string {
	return c.CacheHost + ":" + c.CachePort
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
