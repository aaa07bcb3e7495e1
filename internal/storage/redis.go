package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/questkit/quest-engine/pkg/mission"
)

// Sessions are transient: an interaction abandoned mid-dialogue expires
// instead of blocking the actor forever. Ledgers and player records do not
// expire.
const sessionTTL = time.Hour

// RedisStorage implements the Storage interface using Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// Client exposes the underlying connection for the pub/sub broadcaster.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// Session operations

func (r *RedisStorage) SaveSession(ctx context.Context, rec *SessionRecord) error {
	rec.UpdatedAt = time.Now()
	return r.set(ctx, "session:"+rec.ActorID, rec, sessionTTL)
}

func (r *RedisStorage) LoadSession(ctx context.Context, actorID string) (*SessionRecord, error) {
	var rec SessionRecord
	found, err := r.get(ctx, "session:"+actorID, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, actorID string) error {
	cmd := r.client.Del(ctx, "session:"+actorID)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete session", "actor_id", actorID, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ledger operations

func (r *RedisStorage) SaveLedger(ctx context.Context, actorID string, snap mission.Snapshot) error {
	return r.set(ctx, "ledger:"+actorID, snap, 0)
}

func (r *RedisStorage) LoadLedger(ctx context.Context, actorID string) (*mission.Snapshot, error) {
	var snap mission.Snapshot
	found, err := r.get(ctx, "ledger:"+actorID, &snap)
	if err != nil || !found {
		return nil, err
	}
	return &snap, nil
}

// Player operations

func (r *RedisStorage) SavePlayer(ctx context.Context, rec *PlayerRecord) error {
	rec.UpdatedAt = time.Now()
	return r.set(ctx, "player:"+rec.ActorID, rec, 0)
}

func (r *RedisStorage) LoadPlayer(ctx context.Context, actorID string) (*PlayerRecord, error) {
	var rec PlayerRecord
	found, err := r.get(ctx, "player:"+actorID, &rec)
	if err != nil || !found {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisStorage) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Error("Failed to marshal value", "key", key, "error", err)
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, string(data), ttl).Err(); err != nil {
		r.logger.Error("Failed to save value", "key", key, "error", err)
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// get unmarshals key into v, reporting whether the key existed.
func (r *RedisStorage) get(ctx context.Context, key string, v any) (bool, error) {
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return false, nil
		}
		r.logger.Error("Failed to load value", "key", key, "error", err)
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(cmd.Val()), v); err != nil {
		r.logger.Error("Failed to unmarshal value", "key", key, "error", err)
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}
