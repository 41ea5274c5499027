package domain

import "time"

// InventoryRecord is a physical copy held by a customer.
type InventoryRecord struct {
	ID         string     `json:"id" db:"id"`
	CustomerID string     `json:"customerId" db:"customer_id"`
	ItemID     string     `json:"itemId" db:"item_id"`
	BranchID   string     `json:"branchId" db:"branch_id"`
	OrderID    *string    `json:"orderId" db:"order_id"`
	Blid       *string    `json:"blid" db:"blid"`
	Deadline   time.Time  `json:"deadline" db:"deadline"`
	HandedOut  bool       `json:"handedOut" db:"handed_out"`
	Returned   bool       `json:"returned" db:"returned"`
	ReturnedAt *time.Time `json:"returnedAt" db:"returned_at"`
	Cancelled  bool       `json:"cancelled" db:"cancelled"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}

// IsActive reports whether the copy is still out with its holder.
func (r *InventoryRecord) IsActive() bool {
	return !r.Returned && !r.Cancelled
}
