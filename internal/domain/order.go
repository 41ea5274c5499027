package domain

import "time"

type OrderLineType string

const (
	OrderLineRent          OrderLineType = "rent"
	OrderLinePartlyPayment OrderLineType = "partly-payment"
	OrderLineMatchReceive  OrderLineType = "match-receive"
	OrderLineMatchDeliver  OrderLineType = "match-deliver"
)

type Order struct {
	ID         string      `json:"id" db:"id"`
	CustomerID string      `json:"customerId" db:"customer_id"`
	BranchID   string      `json:"branchId" db:"branch_id"`
	Placed     bool        `json:"placed" db:"placed"`
	ByCustomer bool        `json:"byCustomer" db:"by_customer"`
	Lines      []OrderLine `json:"lines" db:"-"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}

type OrderLine struct {
	ID          string        `json:"id" db:"id"`
	OrderID     string        `json:"orderId" db:"order_id"`
	ItemID      string        `json:"itemId" db:"item_id"`
	Type        OrderLineType `json:"type" db:"type"`
	Blid        *string       `json:"blid" db:"blid"`
	InventoryID *string       `json:"inventoryId" db:"inventory_id"`
	Deadline    *time.Time    `json:"deadline" db:"deadline"`
	HandedOut   bool          `json:"handedOut" db:"handed_out"`
	Cancelled   bool          `json:"cancelled" db:"cancelled"`
}

// HandsOutItem reports whether the line gives the customer a new copy.
func (l OrderLine) HandsOutItem() bool {
	switch l.Type {
	case OrderLineRent, OrderLinePartlyPayment, OrderLineMatchReceive:
		return !l.Cancelled
	}
	return false
}
