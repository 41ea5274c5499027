package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
)

// SenderPoolQuery selects un-returned copies whose deadline falls before
// DeadlineBefore, or before the per-item override when one is given.
type SenderPoolQuery struct {
	BranchIDs               []string
	DeadlineBefore          time.Time
	DeadlineOverrides       map[string]time.Time
	IncludeOtherBranchItems bool
}

type InventoryRepository interface {
	GetSenderPool(ctx context.Context, q SenderPoolQuery) ([]domain.MatchableUser, error)
	GetActiveByBlid(ctx context.Context, blid string) ([]*domain.InventoryRecord, error)
	MarkReturned(ctx context.Context, id string, at time.Time) error
	// CreateFromOrder converts the hand-out lines of a placed order into
	// inventory records.
	CreateFromOrder(ctx context.Context, order *domain.Order) ([]*domain.InventoryRecord, error)
}
