package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bloghive/bloghive-api/internal/domain/repository"
)

func keyResetToken(t string) string { return "pwd:reset:token:" + t }

// TokenStore keeps reset tokens in Redis; the TTL is the expiry.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func (s *TokenStore) SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, keyResetToken(token), userID, ttl).Err()
}

func (s *TokenStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	key := keyResetToken(token)
	uid, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return "", err
	}
	return uid, nil
}

var _ repository.TokenStore = (*TokenStore)(nil)
