package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port          string
	Env           string
	StorageDriver string

	DatabaseURL    string
	DBMaxOpenConns int
	DBTxRetries    int
	DBLockTimeout  time.Duration
	// DBMigrate applies the embedded schema at startup.
	DBMigrate bool

	// RedisAddr empty disables the read-model cache and event streams.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret            string
	JWTTTL               time.Duration
	OperatorEmail        string
	OperatorPasswordHash string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENVIRONMENT", "development"),
		StorageDriver:        getEnv("STORAGE_DRIVER", DriverPostgres),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		OperatorEmail:        getEnv("OPERATOR_EMAIL", "operator@eaglebank.local"),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
	}

	var err error
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.DBTxRetries, err = getEnvInt("DB_TX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.DBLockTimeout, err = getEnvDuration("DB_LOCK_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBMigrate, err = getEnvBool("DB_MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = getEnvDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when STORAGE_DRIVER=%s", DriverPostgres)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StorageDriver)
	}
	if cfg.DBTxRetries < 0 {
		return nil, fmt.Errorf("DB_TX_RETRIES must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 5s: %w", key, err)
	}
	return d, nil
}
