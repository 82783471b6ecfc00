// internal/history/history.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Lobby lifecycle event kinds pushed to the feed.
const (
	EventLobbyCreated = "lobby_created"
	EventGameStarted  = "game_started"
	EventLobbyDeleted = "lobby_deleted"
)

// Record is one lobby lifecycle event as consumed by an external service.
type Record struct {
	Code      string `json:"code"`
	Event     string `json:"event"`
	Actor     string `json:"actor,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher pushes lobby lifecycle records onto a Redis list, best effort.
// A nil Publisher is valid and drops everything, so the server runs fine
// without Redis configured.
type Publisher struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect initializes a Publisher against the Redis instance at addr and
// verifies connectivity with a ping.
func Connect(addr string, db int, queue string, log *logrus.Logger) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue, log: log}, nil
}

// Publish queues rec asynchronously. Failures are logged and never surfaced
// to clients.
func (p *Publisher) Publish(code, event, actor string) {
	if p == nil {
		return
	}
	rec := Record{
		Code:      code,
		Event:     event,
		Actor:     actor,
		Timestamp: time.Now().UnixMilli(),
	}
	go func() {
		data, err := json.Marshal(rec)
		if err != nil {
			p.log.Warnf("history: failed to marshal record: %v", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
			p.log.Warnf("history: failed to push %s for lobby %s: %v", event, code, err)
		}
	}()
}

// Close releases the Redis client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
