package repository

import (
	"context"
	"time"
)

// ReleaseFunc gives a lock back. It is safe to call after the TTL expired.
type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	// Acquire returns domain.ErrLockNotAcquired when key is held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

type SessionStore interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	Delete(ctx context.Context, tokenHash string) error
}
