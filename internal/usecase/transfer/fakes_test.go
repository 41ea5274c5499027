package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
)

type memMatchRepo struct {
	matches []*domain.Match
}

func (r *memMatchRepo) CreateMany(_ context.Context, matches []*domain.Match) error {
	r.matches = append(r.matches, matches...)
	return nil
}

func (r *memMatchRepo) GetByID(_ context.Context, id string) (*domain.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, domain.ErrMatchNotFound
}

func (r *memMatchRepo) Update(_ context.Context, match *domain.Match) error {
	match.Version++
	return nil
}

func (r *memMatchRepo) GetAllForUser(_ context.Context, userID string) ([]*domain.Match, error) {
	var out []*domain.Match
	for _, m := range r.matches {
		if m.HasUser(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMatchRepo) GetUserMatchesByReceiver(_ context.Context, receiverID string) ([]*domain.Match, error) {
	var out []*domain.Match
	for _, m := range r.matches {
		if m.Kind == domain.MatchKindUser && *m.ReceiverID == receiverID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMatchRepo) GetUserMatchesBySender(_ context.Context, senderID string) ([]*domain.Match, error) {
	var out []*domain.Match
	for _, m := range r.matches {
		if m.Kind == domain.MatchKindUser && *m.SenderID == senderID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memInventoryRepo struct {
	records []*domain.InventoryRecord
	seq     int
}

func (r *memInventoryRepo) GetSenderPool(context.Context, repository.SenderPoolQuery) ([]domain.MatchableUser, error) {
	return nil, nil
}

func (r *memInventoryRepo) GetActiveByBlid(_ context.Context, blid string) ([]*domain.InventoryRecord, error) {
	var out []*domain.InventoryRecord
	for _, rec := range r.records {
		if rec.Blid != nil && *rec.Blid == blid && rec.IsActive() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memInventoryRepo) MarkReturned(_ context.Context, id string, at time.Time) error {
	for _, rec := range r.records {
		if rec.ID == id && rec.IsActive() {
			rec.Returned = true
			rec.ReturnedAt = &at
			return nil
		}
	}
	return domain.ErrInventoryNotFound
}

func (r *memInventoryRepo) CreateFromOrder(_ context.Context, order *domain.Order) ([]*domain.InventoryRecord, error) {
	var created []*domain.InventoryRecord
	for i := range order.Lines {
		line := &order.Lines[i]
		if !line.HandsOutItem() {
			continue
		}
		r.seq++
		orderID := order.ID
		rec := &domain.InventoryRecord{
			ID:         fmt.Sprintf("new-inv%d", r.seq),
			CustomerID: order.CustomerID,
			ItemID:     line.ItemID,
			BranchID:   order.BranchID,
			OrderID:    &orderID,
			Blid:       line.Blid,
			Deadline:   *line.Deadline,
			HandedOut:  true,
		}
		line.HandedOut = true
		line.InventoryID = &rec.ID
		r.records = append(r.records, rec)
		created = append(created, rec)
	}
	return created, nil
}

type memOrderRepo struct {
	backlog   map[string][]*domain.OrderLine
	orders    []*domain.Order
	createErr error
}

func (r *memOrderRepo) GetReceiverPool(context.Context, repository.ReceiverPoolQuery) ([]domain.MatchableUser, error) {
	return nil, nil
}

func (r *memOrderRepo) GetPendingLine(_ context.Context, customerID, itemID string) (*domain.OrderLine, error) {
	for _, l := range r.backlog[customerID] {
		if l.ItemID == itemID && !l.HandedOut {
			return l, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *memOrderRepo) MarkLineHandedOut(_ context.Context, lineID string) error {
	for _, lines := range r.backlog {
		for _, l := range lines {
			if l.ID == lineID {
				l.HandedOut = true
				return nil
			}
		}
	}
	return domain.ErrOrderNotFound
}

func (r *memOrderRepo) CreateExchangeOrder(_ context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	order.ID = fmt.Sprintf("order%d", len(r.orders)+1)
	order.Placed = true
	for i := range order.Lines {
		order.Lines[i].ID = fmt.Sprintf("%s-line%d", order.ID, i+1)
		order.Lines[i].OrderID = order.ID
	}
	r.orders = append(r.orders, order)
	return nil
}

type memLocker struct {
	held map[string]bool
	// onAcquire runs once a key is taken, standing in for a racing writer.
	onAcquire func(key string)
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (repository.ReleaseFunc, error) {
	if l.held[key] {
		return nil, domain.ErrLockNotAcquired
	}
	l.held[key] = true
	if l.onAcquire != nil {
		l.onAcquire(key)
	}
	return func(context.Context) error {
		delete(l.held, key)
		return nil
	}, nil
}

type outcomes []string

func (o *outcomes) RecordTransfer(outcome string) {
	*o = append(*o, outcome)
}
