package sessionstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/repositories"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sherlockchat:session:"

// DefaultTTL is how long an idle game session is kept.
const DefaultTTL = 7 * 24 * time.Hour

// RedisStore keeps game sessions as JSON documents in Redis. Every save renews the expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStore connects to the Redis server at addr. Accepts both host:port and redis:// URLs.
func NewRedisStore(addr string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr} //nolint:exhaustruct // defaults are fine
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger.With(slog.String("source", "RedisStore")),
	}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis")
	}
	return nil
}

func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return errors.Wrap(err, "close redis client")
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrap(repositories.ErrSessionNotFound, "get session", slog.String("session_id", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, "get session", slog.String("session_id", id))
	}
	var session models.Session
	if err = json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "unmarshal session", slog.String("session_id", id))
	}
	if session.DiscoveredClueIDs == nil {
		session.DiscoveredClueIDs = []string{}
	}
	if session.History == nil {
		session.History = []models.Turn{}
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "marshal session", slog.String("session_id", session.ID))
	}
	if err = s.client.Set(ctx, keyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "set session", slog.String("session_id", session.ID))
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Wrap(err, "delete session", slog.String("session_id", id))
	}
	return nil
}
