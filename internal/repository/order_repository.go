package repository

import (
	"context"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
)

// ReceiverPoolQuery selects placed order lines that still wait for hand-out.
// AdditionalItems adds branch-wide wanted items to every receiver of that branch.
type ReceiverPoolQuery struct {
	BranchIDs       []string
	AdditionalItems map[string][]string
}

type OrderRepository interface {
	GetReceiverPool(ctx context.Context, q ReceiverPoolQuery) ([]domain.MatchableUser, error)
	// GetPendingLine returns the customer's oldest placed line for itemID
	// that has not been handed out yet.
	GetPendingLine(ctx context.Context, customerID, itemID string) (*domain.OrderLine, error)
	MarkLineHandedOut(ctx context.Context, lineID string) error
	// CreateExchangeOrder stores a placed order and its lines, filling in ids.
	CreateExchangeOrder(ctx context.Context, order *domain.Order) error
}
