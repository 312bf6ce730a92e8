// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/models"
)

// DefaultQueueName is the Redis list carrying game action records to the
// historian. Overridable via HISTORIAN_QUEUE_NAME.
const DefaultQueueName = "wildstack_actions"

// Queue is the action-history pipe between the game server and the
// historian. A nil *Queue is valid and drops everything, so rooms work with
// no Redis deployed.
type Queue struct {
	rdb  *redis.Client
	name string
}

// Connect dials Redis using REDIS_ADDR (default "localhost:6379") and
// REDIS_DB (default 0) and verifies the connection.
func Connect(ctx context.Context) (*Queue, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   getEnvInt("REDIS_DB", 0),
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	logrus.WithField("addr", addr).Info("connected to redis")
	return &Queue{
		rdb:  rdb,
		name: getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
	}, nil
}

// Close releases the client.
func (q *Queue) Close() error {
	if q == nil || q.rdb == nil {
		return nil
	}
	return q.rdb.Close()
}

// PublishGameAction pushes one record onto the queue. Fire-and-forget from
// the game path: failures are logged, never surfaced to players.
func (q *Queue) PublishGameAction(ctx context.Context, record models.GameActionRecord) error {
	if q == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal game action record: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("rpush to %s: %w", q.name, err)
	}
	return nil
}

// PopGameAction blocks up to timeout for the next queued record. A miss
// (timeout with no record) returns ok=false and no error.
func (q *Queue) PopGameAction(ctx context.Context, timeout time.Duration) (models.GameActionRecord, bool, error) {
	var record models.GameActionRecord
	res, err := q.rdb.BLPop(ctx, timeout, q.name).Result()
	if err == redis.Nil {
		return record, false, nil
	}
	if err != nil {
		return record, false, fmt.Errorf("blpop from %s: %w", q.name, err)
	}
	// BLPop returns [key, value].
	if len(res) < 2 {
		return record, false, fmt.Errorf("blpop from %s: short reply", q.name)
	}
	if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
		return record, false, fmt.Errorf("unmarshal game action record: %w", err)
	}
	return record, true, nil
}

// getEnv reads an environment variable or returns a default.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as an integer, else a default.
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
