package repository

import (
	"context"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
)

type MatchRepository interface {
	// CreateMany inserts all matches of one generation run atomically.
	CreateMany(ctx context.Context, matches []*domain.Match) error
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	// Update overwrites the stored match if its version still equals
	// match.Version, then bumps the version.
	Update(ctx context.Context, match *domain.Match) error
	GetAllForUser(ctx context.Context, userID string) ([]*domain.Match, error)
	GetUserMatchesByReceiver(ctx context.Context, receiverID string) ([]*domain.Match, error)
	GetUserMatchesBySender(ctx context.Context, senderID string) ([]*domain.Match, error)
}
