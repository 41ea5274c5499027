package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Lines of these types put an item in a customer's hands once handed out.
var backlogLineTypes = []string{string(domain.OrderLineRent), string(domain.OrderLinePartlyPayment)}

type orderRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewOrderRepository(db *sqlx.DB) repository.OrderRepository {
	return &orderRepository{db: db, now: time.Now}
}

type wantedItemRow struct {
	CustomerID string `db:"customer_id"`
	BranchID   string `db:"branch_id"`
	ItemID     string `db:"item_id"`
}

func (r *orderRepository) GetReceiverPool(ctx context.Context, q repository.ReceiverPoolQuery) ([]domain.MatchableUser, error) {
	query := `
		SELECT o.customer_id, o.branch_id, oi.item_id
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.placed AND o.branch_id = ANY($1)
		  AND NOT oi.handed_out AND NOT oi.cancelled AND oi.type = ANY($2)
		ORDER BY o.customer_id, o.created_at, oi.item_id
	`
	var rows []wantedItemRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(q.BranchIDs), pq.Array(backlogLineTypes)); err != nil {
		return nil, fmt.Errorf("query receiver pool: %w", err)
	}

	pool := newPoolBuilder()
	for _, row := range rows {
		pool.add(row.CustomerID, row.ItemID)
	}
	for _, row := range rows {
		for _, item := range q.AdditionalItems[row.BranchID] {
			pool.add(row.CustomerID, item)
		}
	}

	return pool.users(), nil
}

func (r *orderRepository) GetPendingLine(ctx context.Context, customerID, itemID string) (*domain.OrderLine, error) {
	var line domain.OrderLine
	query := `
		SELECT oi.id, oi.order_id, oi.item_id, oi.type, oi.blid, oi.inventory_id, oi.deadline, oi.handed_out, oi.cancelled
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.placed AND o.customer_id = $1 AND oi.item_id = $2
		  AND NOT oi.handed_out AND NOT oi.cancelled AND oi.type = ANY($3)
		ORDER BY o.created_at
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &line, query, customerID, itemID, pq.Array(backlogLineTypes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (r *orderRepository) MarkLineHandedOut(ctx context.Context, lineID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE order_items SET handed_out = true WHERE id = $1`, lineID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) CreateExchangeOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now()
	}
	order.Placed = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, branch_id, placed, by_customer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.CustomerID, order.BranchID, order.Placed, order.ByCustomer, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	insertLine := `
		INSERT INTO order_items (id, order_id, item_id, type, blid, inventory_id, deadline, handed_out, cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.ID == "" {
			line.ID = uuid.NewString()
		}
		line.OrderID = order.ID
		if _, err := tx.ExecContext(ctx, insertLine,
			line.ID, line.OrderID, line.ItemID, string(line.Type), line.Blid,
			line.InventoryID, line.Deadline, line.HandedOut, line.Cancelled,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return tx.Commit()
}
