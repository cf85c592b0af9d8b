package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a stock ledger entry. Every stock change in the
// system, including order placement and cancellation, is recorded as one of
// these so the ledger is the single audit trail for inventory.
type TransactionType string

const (
	TransactionImport      TransactionType = "import"
	TransactionExport      TransactionType = "export"
	TransactionReturn      TransactionType = "return"
	TransactionAdjustment  TransactionType = "adjustment"
	TransactionOrder       TransactionType = "order"
	TransactionOrderCancel TransactionType = "order_cancel"
)

var allTransactionTypes = map[TransactionType]struct{}{
	TransactionImport:      {},
	TransactionExport:      {},
	TransactionReturn:      {},
	TransactionAdjustment:  {},
	TransactionOrder:       {},
	TransactionOrderCancel: {},
}

// ParseTransactionType normalizes a transaction type string.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := allTransactionTypes[t]; !ok {
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrValidation, s)
	}
	return t, nil
}

// Apply computes the stock level after a transaction of this type with the
// given quantity is applied to current. Adjustment is an absolute set, the
// rest are deltas.
func (t TransactionType) Apply(current, quantity int) int {
	switch t {
	case TransactionImport, TransactionReturn, TransactionOrderCancel:
		return current + quantity
	case TransactionExport, TransactionOrder:
		return current - quantity
	case TransactionAdjustment:
		return quantity
	}
	return current
}

// StockTransaction is an immutable ledger entry for one inventory-affecting
// event. PreviousStock snapshots the stock level before the entry was applied
// so that even absolute-set adjustments can be reversed exactly.
type StockTransaction struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ProductID     uuid.UUID       `json:"product_id" db:"product_id"`
	Type          TransactionType `json:"type" db:"type"`
	Quantity      int             `json:"quantity" db:"quantity"`
	PreviousStock int             `json:"previous_stock" db:"previous_stock"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty" db:"supplier_id"`
	Note          string          `json:"note,omitempty" db:"note"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Inventory tracks the on-hand quantity for one product. Stock is mutated
// only through stock transactions, never written directly.
type Inventory struct {
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	Stock      int       `json:"stock" db:"stock"`
	MinStock   int       `json:"min_stock" db:"min_stock"`
	LastUpdate time.Time `json:"last_update" db:"last_update"`
}

// LowStock reports whether the product is at or below its reorder threshold.
func (i *Inventory) LowStock() bool {
	return i.Stock <= i.MinStock
}
