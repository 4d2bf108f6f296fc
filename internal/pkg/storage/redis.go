package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vodeneev/betlinkbot/internal/pkg/config"
	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

const redisKeyPrefix = "betlink:session:"

var _ SessionStore = (*RedisSessionStore)(nil)

// RedisSessionStore keeps each session as a JSON value under its own key, with
// no expiry.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(ctx context.Context, cfg *config.RedisConfig) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Redis session storage initialized", "addr", cfg.Addr, "db", cfg.DB)
	return &RedisSessionStore{client: client}, nil
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

func (r *RedisSessionStore) Get(ctx context.Context, userID string) models.Session {
	data, err := r.client.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewSession()
	}
	if err != nil {
		slog.Error("Failed to load session from Redis, using default", "user_id", userID, "error", err)
		return models.NewSession()
	}

	session, err := models.DecodeSession(data)
	if err != nil {
		slog.Error("Corrupt session in Redis, using default", "user_id", userID, "error", err)
		return models.NewSession()
	}
	return session
}

func (r *RedisSessionStore) Save(ctx context.Context, userID string, session models.Session) error {
	data, err := models.EncodeSession(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Reset(ctx context.Context, userID string) error {
	return r.Save(ctx, userID, models.NewSession())
}

func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
