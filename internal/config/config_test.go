// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 25*time.Second, cfg.PingInterval)
	assert.Equal(t, 60*time.Second, cfg.PongTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "duelgrid_lobby_events", cfg.HistoryQueue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("PING_INTERVAL", "10s")
	t.Setenv("PONG_TIMEOUT", "bogus")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.PingInterval)
	assert.Equal(t, 60*time.Second, cfg.PongTimeout, "unparseable values fall back to defaults")
	assert.Equal(t, 3, cfg.RedisDB)
}
