package redis

import (
	"context"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

const sessionPrefix = "bookswap:session:"

type sessionStore struct {
	client *goredis.Client
}

func NewSessionStore(client *goredis.Client) repository.SessionStore {
	return &sessionStore{client: client}
}

func (s *sessionStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionPrefix+tokenHash, userID, ttl).Err()
}

func (s *sessionStore) Exists(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionPrefix+tokenHash).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sessionStore) Delete(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, sessionPrefix+tokenHash).Err()
}
