// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the server's runtime settings, read from the environment
// (godotenv autoloads a .env file in main).
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// StaticDir is the directory holding the built client bundle.
	StaticDir string
	// PingInterval is how often the write pump pings each connection.
	PingInterval time.Duration
	// PongTimeout is how long a ping waits for its pong before the
	// connection is treated as dead and cleaned up.
	PongTimeout time.Duration
	// RedisAddr enables the lobby event feed when non-empty.
	RedisAddr string
	// RedisDB selects the Redis database index for the event feed.
	RedisDB int
	// HistoryQueue is the Redis list name for the event feed.
	HistoryQueue string
	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Addr:         getEnv("ADDR", ":3000"),
		StaticDir:    getEnv("STATIC_DIR", "dist"),
		PingInterval: getEnvDuration("PING_INTERVAL", 25*time.Second),
		PongTimeout:  getEnvDuration("PONG_TIMEOUT", 60*time.Second),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		HistoryQueue: getEnv("HISTORY_QUEUE", "duelgrid_lobby_events"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return v
}
