package domain

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseOrder is an inbound replenishment request to a supplier. The total
// is always recomputed server-side from the lines; client-submitted totals
// are never trusted. Receiving a purchase order does not touch the stock
// ledger automatically; an operator records a matching import transaction.
type PurchaseOrder struct {
	ID          uuid.UUID            `json:"id" db:"id"`
	SupplierID  uuid.UUID            `json:"supplier_id" db:"supplier_id"`
	Status      string               `json:"status" db:"status"`
	TotalAmount int64                `json:"total_amount" db:"total_amount"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
	Lines       []*PurchaseOrderLine `json:"lines" db:"-"`
}

// PurchaseOrderLine is one product entry within a purchase order.
type PurchaseOrderLine struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PurchaseOrderID uuid.UUID `json:"purchase_order_id" db:"purchase_order_id"`
	ProductID       uuid.UUID `json:"product_id" db:"product_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	UnitCost        int64     `json:"unit_cost" db:"unit_cost"`
}

// ComputeTotal returns the sum of quantity * unit cost over the given lines.
func ComputeTotal(lines []*PurchaseOrderLine) int64 {
	var total int64
	for _, line := range lines {
		total += int64(line.Quantity) * line.UnitCost
	}
	return total
}
