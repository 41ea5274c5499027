package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const inventoryColumns = `id, customer_id, item_id, branch_id, order_id, blid, deadline,
	handed_out, returned, returned_at, cancelled, created_at`

type inventoryRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db, now: time.Now}
}

type heldItemRow struct {
	CustomerID string    `db:"customer_id"`
	ItemID     string    `db:"item_id"`
	BranchID   string    `db:"branch_id"`
	Deadline   time.Time `db:"deadline"`
}

func (r *inventoryRepository) GetSenderPool(ctx context.Context, q repository.SenderPoolQuery) ([]domain.MatchableUser, error) {
	query := `
		SELECT customer_id, item_id, branch_id, deadline FROM customer_items
		WHERE handed_out AND NOT returned AND NOT cancelled
		  AND (branch_id = ANY($1) OR ($2 AND customer_id IN (
		        SELECT customer_id FROM customer_items
		        WHERE NOT returned AND NOT cancelled AND branch_id = ANY($1))))
		ORDER BY customer_id, created_at, item_id
	`
	var rows []heldItemRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(q.BranchIDs), q.IncludeOtherBranchItems); err != nil {
		return nil, fmt.Errorf("query sender pool: %w", err)
	}

	inBranch := make(map[string]struct{}, len(q.BranchIDs))
	for _, id := range q.BranchIDs {
		inBranch[id] = struct{}{}
	}

	due := func(row heldItemRow) bool {
		cutoff := q.DeadlineBefore
		if override, ok := q.DeadlineOverrides[row.ItemID]; ok {
			cutoff = override
		}
		return row.Deadline.Before(cutoff)
	}

	// A holder qualifies through a due item in one of the requested branches.
	eligible := make(map[string]bool)
	for _, row := range rows {
		if _, ok := inBranch[row.BranchID]; ok && due(row) {
			eligible[row.CustomerID] = true
		}
	}

	pool := newPoolBuilder()
	for _, row := range rows {
		if !eligible[row.CustomerID] || !due(row) {
			continue
		}
		if _, ok := inBranch[row.BranchID]; !ok && !q.IncludeOtherBranchItems {
			continue
		}
		pool.add(row.CustomerID, row.ItemID)
	}

	return pool.users(), nil
}

func (r *inventoryRepository) GetActiveByBlid(ctx context.Context, blid string) ([]*domain.InventoryRecord, error) {
	var records []*domain.InventoryRecord
	query := `
		SELECT ` + inventoryColumns + ` FROM customer_items
		WHERE blid = $1 AND NOT returned AND NOT cancelled
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &records, query, blid); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *inventoryRepository) MarkReturned(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE customer_items SET returned = true, returned_at = $1 WHERE id = $2 AND NOT returned`
	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

func (r *inventoryRepository) CreateFromOrder(ctx context.Context, order *domain.Order) ([]*domain.InventoryRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin inventory conversion: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO customer_items (id, customer_id, item_id, branch_id, order_id, blid, deadline, handed_out, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8)
	`
	markLine := `UPDATE order_items SET handed_out = true, inventory_id = $1 WHERE id = $2`

	now := r.now()
	var records []*domain.InventoryRecord
	for i := range order.Lines {
		line := &order.Lines[i]
		if !line.HandsOutItem() {
			continue
		}
		if line.Deadline == nil {
			return nil, fmt.Errorf("order line %s has no deadline", line.ID)
		}

		orderID := order.ID
		record := &domain.InventoryRecord{
			ID:         uuid.NewString(),
			CustomerID: order.CustomerID,
			ItemID:     line.ItemID,
			BranchID:   order.BranchID,
			OrderID:    &orderID,
			Blid:       line.Blid,
			Deadline:   *line.Deadline,
			HandedOut:  true,
			CreatedAt:  now,
		}
		if _, err := tx.ExecContext(ctx, insert,
			record.ID, record.CustomerID, record.ItemID, record.BranchID,
			record.OrderID, record.Blid, record.Deadline, record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert inventory for line %s: %w", line.ID, err)
		}
		if _, err := tx.ExecContext(ctx, markLine, record.ID, line.ID); err != nil {
			return nil, fmt.Errorf("mark line %s handed out: %w", line.ID, err)
		}

		line.HandedOut = true
		line.InventoryID = &record.ID
		records = append(records, record)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return records, nil
}
