package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	RedisAddr string
	MongoURI  string
	HTTPPort  string

	// SessionTTL bounds how long an abandoned session survives; it is
	// refreshed on every successful mutation.
	SessionTTL time.Duration

	// LockHold is the expiry on a held session lock; LockWait bounds how
	// long a request waits for contention before failing retryably.
	LockHold time.Duration
	LockWait time.Duration
}

func Load() *Config {
	return &Config{
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:   os.Getenv("MONGO_URI"), // empty disables the trait archive
		HTTPPort:   getEnv("PORT", "8080"),
		SessionTTL: getEnvSeconds("SESSION_TTL_SECONDS", 2*60*60),
		LockHold:   getEnvSeconds("LOCK_HOLD_SECONDS", 5),
		LockWait:   getEnvSeconds("LOCK_WAIT_SECONDS", 5),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultSeconds) * time.Second
}
