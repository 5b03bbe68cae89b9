package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scenario-admin/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "session:"

type redisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore keeps sessions in redis under session:{id}, with the cached
// scenario list under session:{id}:scenarios sharing the same expiry.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionStore"),
	}
}

func sessionKey(id string) string   { return keyPrefix + id }
func scenariosKey(id string) string { return keyPrefix + id + ":scenarios" }

func (s *redisStore) Create(ctx context.Context, token string, user models.User) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: expiryFor(token, now, s.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	ttl := time.Until(sess.ExpiresAt)
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		s.logger.Error("Failed to store session in redis", zap.String("userID", user.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Debug("Session created", zap.String("sessionID", sess.ID), zap.String("userID", user.ID), zap.Duration("ttl", ttl))
	return sess, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("Failed to read session from redis", zap.String("sessionID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn("Corrupted session payload, dropping", zap.String("sessionID", id), zap.Error(err))
		_ = s.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id), scenariosKey(id)).Err(); err != nil {
		s.logger.Error("Failed to delete session from redis", zap.String("sessionID", id), zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *redisStore) CachedScenarios(ctx context.Context, id string) ([]models.Scenario, bool, error) {
	data, err := s.client.Get(ctx, scenariosKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read scenario cache: %w", err)
	}

	var list []models.Scenario
	if err := json.Unmarshal(data, &list); err != nil {
		s.logger.Warn("Corrupted scenario cache, ignoring", zap.String("sessionID", id), zap.Error(err))
		return nil, false, nil
	}
	return list, true, nil
}

func (s *redisStore) CacheScenarios(ctx context.Context, id string, scenarios []models.Scenario) error {
	ttl, err := s.client.PTTL(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to read session ttl: %w", err)
	}
	// -2: key missing
	if ttl == -2 {
		return ErrSessionNotFound
	}
	if ttl < 0 {
		ttl = s.ttl
	}

	if scenarios == nil {
		scenarios = []models.Scenario{}
	}
	data, err := json.Marshal(scenarios)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario cache: %w", err)
	}
	if err := s.client.Set(ctx, scenariosKey(id), data, ttl).Err(); err != nil {
		s.logger.Error("Failed to store scenario cache", zap.String("sessionID", id), zap.Error(err))
		return fmt.Errorf("failed to store scenario cache: %w", err)
	}
	return nil
}
